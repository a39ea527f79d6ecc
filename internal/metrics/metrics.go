// Package metrics aggregates a trade ledger into performance statistics.
package metrics

import (
	"math"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

// EmptyMetrics is the result for a ledger without trades.
func EmptyMetrics(initialBalance float64) types.BacktestMetrics {
	return types.BacktestMetrics{
		InitialBalance: initialBalance,
		FinalBalance:   initialBalance,
		EquityCurve:    []float64{},
	}
}

// Calculate computes the metrics of trades in ledger order. It works on any sub-sequence
// of a ledger and never produces NaN.
func Calculate(trades []types.Trade, initialBalance float64) types.BacktestMetrics {
	if len(trades) == 0 {
		return EmptyMetrics(initialBalance)
	}

	m := types.BacktestMetrics{
		TotalTrades:    len(trades),
		InitialBalance: initialBalance,
		EquityCurve:    make([]float64, 0, len(trades)),
	}

	var (
		winStreak  int
		lossStreak int
		barsHeld   int
	)

	equity := initialBalance
	peak := initialBalance

	for _, trade := range trades {
		pnl := trade.Result.PnL

		if trade.IsWin() {
			m.WinningCount++
			winStreak++
			lossStreak = 0
		} else {
			m.LosingCount++
			lossStreak++
			winStreak = 0
		}

		m.MaxConsecutiveWins = max(m.MaxConsecutiveWins, winStreak)
		m.MaxConsecutiveLosses = max(m.MaxConsecutiveLosses, lossStreak)

		if pnl > 0 {
			m.GrossProfit += pnl
			m.LargestWin = max(m.LargestWin, pnl)
		} else {
			m.GrossLoss += -pnl
			m.LargestLoss = min(m.LargestLoss, pnl)
		}

		if trade.Truncated {
			m.TruncatedTrades++
		}

		barsHeld += trade.Exit.BarsHeld

		equity += pnl
		m.EquityCurve = append(m.EquityCurve, equity)

		peak = max(peak, equity)

		// the percentage is taken against the peak of the largest drop; on ties the
		// latest drop wins
		if drawdown := peak - equity; drawdown > 0 && drawdown >= m.MaxDrawdown {
			m.MaxDrawdown = drawdown
			if peak > 0 {
				m.MaxDrawdownPct = drawdown / peak * 100
			}
		}
	}

	n := float64(len(trades))
	m.WinRate = float64(m.WinningCount) / n * 100
	m.NetPnL = m.GrossProfit - m.GrossLoss
	m.FinalBalance = equity
	m.AverageBarsHeld = float64(barsHeld) / n

	if initialBalance != 0 {
		m.ReturnPct = m.NetPnL / initialBalance * 100
	}

	if m.WinningCount > 0 {
		m.AverageWin = m.GrossProfit / float64(m.WinningCount)
	}

	if m.LosingCount > 0 {
		m.AverageLoss = m.GrossLoss / float64(m.LosingCount)
	}

	m.ProfitFactor = profitFactor(m.GrossProfit, m.GrossLoss)

	winRate := float64(m.WinningCount) / n
	lossRate := float64(m.LosingCount) / n
	m.Expectancy = winRate*m.AverageWin - lossRate*m.AverageLoss
	m.SQN = SQN(types.PnLs(trades))

	return m
}

func profitFactor(grossProfit, grossLoss float64) types.ProfitFactor {
	switch {
	case grossLoss > 0:
		return types.ProfitFactor(grossProfit / grossLoss)
	case grossProfit > 0:
		return types.ProfitFactor(math.Inf(1))
	default:
		return 0
	}
}

// SQN is the system quality number mean/stdDev*sqrt(n) using the sample standard
// deviation. It is 0 for fewer than two values or a zero deviation.
func SQN(pnls []float64) float64 {
	n := len(pnls)
	if n < 2 {
		return 0
	}

	mean, sd := MeanStdDev(pnls, true)
	if sd == 0 {
		return 0
	}

	return mean / sd * math.Sqrt(float64(n))
}

// MeanStdDev returns the mean and standard deviation of values. With sample set the
// deviation uses n-1 in the denominator.
func MeanStdDev(values []float64, sample bool) (float64, float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	mean := sum / float64(n)

	denominator := float64(n)
	if sample {
		denominator = float64(n - 1)
	}

	if denominator <= 0 {
		return mean, 0
	}

	squares := 0.0
	for _, v := range values {
		squares += (v - mean) * (v - mean)
	}

	return mean, math.Sqrt(squares / denominator)
}
