package analysis

import (
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/metrics"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

const (
	RecommendationRobust     = "ROBUST"
	RecommendationAcceptable = "ACCEPTABLE"
	RecommendationCaution    = "CAUTION"
	RecommendationOverfit    = "OVERFIT"
	// RecommendationReject is given when the out-of-sample part loses money after a
	// profitable in-sample part, whatever the score.
	RecommendationReject = "REJECT"
)

const (
	maxWinRatePenalty   = 30.0
	maxPnLPenalty       = 40.0
	pnlPenaltyWeight    = 0.4
	unprofitablePenalty = 30.0
	maxOverfitScore     = 100.0
	overfitThreshold    = 40.0
)

// OutOfSample splits the ledger once at floor(n*ratio) and compares both halves.
func OutOfSample(trades []types.Trade, initialBalance float64, cfg OutOfSampleConfig) types.OOSResult {
	ratio := cfg.InSampleRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultInSampleRatio
	}

	split := splitIndex(len(trades), ratio)
	inSample := metrics.Calculate(trades[:split], initialBalance)
	outOfSample := metrics.Calculate(trades[split:], initialBalance)

	result := types.OOSResult{
		InSampleRatio: ratio,
		SplitIndex:    split,
		InSample:      inSample,
		OutOfSample:   outOfSample,
	}

	result.WinRateDegradation = inSample.WinRate - outOfSample.WinRate

	isPerTrade := perTrade(inSample)
	oosPerTrade := perTrade(outOfSample)

	score := min(maxWinRatePenalty, max(0, result.WinRateDegradation))

	if isPerTrade > 0 {
		result.PnLPerTradeDegPct = (isPerTrade - oosPerTrade) / isPerTrade * 100
		score += min(maxPnLPenalty, max(0, result.PnLPerTradeDegPct*pnlPenaltyWeight))
	}

	turnedUnprofitable := outOfSample.NetPnL < 0 && inSample.NetPnL > 0
	if turnedUnprofitable {
		score += unprofitablePenalty
	}

	result.OverfitScore = min(maxOverfitScore, score)
	result.IsOverfit = result.OverfitScore > overfitThreshold || turnedUnprofitable
	result.Recommendation = recommend(result.OverfitScore, turnedUnprofitable)

	return result
}

func perTrade(m types.BacktestMetrics) float64 {
	if m.TotalTrades == 0 {
		return 0
	}

	return m.NetPnL / float64(m.TotalTrades)
}

func recommend(score float64, turnedUnprofitable bool) string {
	switch {
	case turnedUnprofitable:
		return RecommendationReject
	case score <= 20:
		return RecommendationRobust
	case score <= 40:
		return RecommendationAcceptable
	case score <= 60:
		return RecommendationCaution
	default:
		return RecommendationOverfit
	}
}
