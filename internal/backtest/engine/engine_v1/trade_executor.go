package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/strategy"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// tradeNamespace seeds the name based trade IDs.
var tradeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("deriv-bot/backtest/trade"))

// TradeExecutor simulates a single trade from an entry signal over the bars that follow
// it. It holds no state between calls.
type TradeExecutor struct {
	config        BacktestEngineV1Config
	commissionFee commission_fee.CommissionFee
	exitChecker   optional.Option[strategy.ExitChecker]
	strategyName  string
}

func NewTradeExecutor(config BacktestEngineV1Config, commissionFee commission_fee.CommissionFee, s strategy.Strategy) *TradeExecutor {
	exitChecker := optional.None[strategy.ExitChecker]()
	if checker, ok := s.(strategy.ExitChecker); ok {
		exitChecker = optional.Some(checker)
	}

	return &TradeExecutor{
		config:        config,
		commissionFee: commissionFee,
		exitChecker:   exitChecker,
		strategyName:  s.Name(),
	}
}

// exitLevel is the outcome of checking one bar against the trade.
type exitLevel struct {
	price  float64
	reason types.ExitReason
}

// Execute fills signal and walks future, the bars after signalBar, until an exit
// condition fires. futureSnapshots[j] is the snapshot of future[j]. A trade still open
// at the last bar is closed at its close with END_OF_DATA and marked truncated.
// It returns None when there is nothing to simulate or nothing to stake.
func (e *TradeExecutor) Execute(
	signal types.EntrySignal,
	signalIndex int,
	signalBar types.Bar,
	future []types.Bar,
	futureSnapshots []types.IndicatorSnapshot,
	balance float64,
) optional.Option[types.Trade] {
	if len(future) == 0 {
		return optional.None[types.Trade]()
	}

	stake := e.stake(balance)
	if stake <= 0 {
		return optional.None[types.Trade]()
	}

	entry := types.TradeEntry{
		Signal:     signal,
		Price:      signal.Price,
		Time:       signalBar.Time,
		BarIndex:   signalIndex,
		Stake:      stake,
		TakeProfit: 0,
		StopLoss:   0,
		Indicators: nil,
	}

	if signal.EntryMode == types.EntryModeNextOpen {
		entry.Price = future[0].Open
		entry.Time = future[0].Time
		entry.BarIndex = signalIndex + 1
	} else if entry.Price <= 0 {
		entry.Price = signalBar.Close
	}

	sign := signal.Direction.Sign()
	entry.TakeProfit = entry.Price * (1 + sign*e.config.TakeProfitPct/100)
	entry.StopLoss = entry.Price * (1 - sign*e.config.StopLossPct/100)

	var (
		maxFavorable float64
		maxAdverse   float64
	)

	for j, bar := range future {
		index := signalIndex + 1 + j
		snapshot := snapshotAt(futureSnapshots, j)

		favorable, adverse := excursions(entry, bar)
		maxFavorable = max(maxFavorable, favorable)
		maxAdverse = max(maxAdverse, adverse)

		level := e.checkLevels(entry, bar)

		if level.IsNone() && e.exitChecker.IsSome() && e.exitChecker.Unwrap().CheckExit(entry, bar, snapshot) {
			level = optional.Some(exitLevel{price: bar.Close, reason: types.ExitReasonMiddleExit})
		}

		if level.IsNone() && e.config.MaxTradeBars > 0 && index-entry.BarIndex >= e.config.MaxTradeBars {
			level = optional.Some(exitLevel{price: bar.Close, reason: types.ExitReasonTimeout})
		}

		if level.IsSome() {
			return optional.Some(e.close(entry, signalIndex, index, bar, snapshot, level.Unwrap(), false, maxFavorable, maxAdverse))
		}
	}

	last := len(future) - 1
	level := exitLevel{price: future[last].Close, reason: types.ExitReasonEndOfData}

	return optional.Some(e.close(entry, signalIndex, signalIndex+1+last, future[last], snapshotAt(futureSnapshots, last), level, true, maxFavorable, maxAdverse))
}

// checkLevels tests the stop and the target on one bar. A bar touching both is a stop:
// the order of the touches inside the bar is unknown, so the worse outcome is assumed.
func (e *TradeExecutor) checkLevels(entry types.TradeEntry, bar types.Bar) optional.Option[exitLevel] {
	stop := exitLevel{price: entry.StopLoss, reason: types.ExitReasonStopLoss}
	target := exitLevel{price: entry.TakeProfit, reason: types.ExitReasonTakeProfit}

	if entry.Signal.Direction == types.DirectionPut {
		switch {
		case bar.Open >= entry.StopLoss:
			return optional.Some(exitLevel{price: bar.Open, reason: types.ExitReasonStopLoss})
		case bar.Open <= entry.TakeProfit:
			return optional.Some(target)
		case bar.High >= entry.StopLoss:
			return optional.Some(stop)
		case bar.Low <= entry.TakeProfit:
			return optional.Some(target)
		}

		return optional.None[exitLevel]()
	}

	switch {
	case bar.Open <= entry.StopLoss:
		return optional.Some(exitLevel{price: bar.Open, reason: types.ExitReasonStopLoss})
	case bar.Open >= entry.TakeProfit:
		return optional.Some(target)
	case bar.Low <= entry.StopLoss:
		return optional.Some(stop)
	case bar.High >= entry.TakeProfit:
		return optional.Some(target)
	}

	return optional.None[exitLevel]()
}

func (e *TradeExecutor) stake(balance float64) float64 {
	if e.config.StakeMode == StakeModePercentage {
		return round(balance*e.config.StakePercentage/100, e.config.DecimalPrecision)
	}

	return min(e.config.StakeAmount, balance)
}

func (e *TradeExecutor) close(
	entry types.TradeEntry,
	signalIndex int,
	index int,
	bar types.Bar,
	snapshot types.IndicatorSnapshot,
	level exitLevel,
	truncated bool,
	maxFavorable float64,
	maxAdverse float64,
) types.Trade {
	precision := int32(e.config.DecimalPrecision)

	move := decimal.NewFromFloat(level.price).Sub(decimal.NewFromFloat(entry.Price)).Div(decimal.NewFromFloat(entry.Price))
	gross := decimal.NewFromFloat(entry.Stake).
		Mul(decimal.NewFromFloat(e.config.Multiplier)).
		Mul(decimal.NewFromFloat(entry.Signal.Direction.Sign())).
		Mul(move)
	commission := decimal.NewFromFloat(e.commissionFee.Calculate(entry.Stake)).Round(precision)
	pnl := gross.Sub(commission).Round(precision)
	pnlPct := pnl.Div(decimal.NewFromFloat(entry.Stake)).Mul(decimal.NewFromInt(100)).Round(precision)

	outcome := types.OutcomeLoss
	if pnl.IsPositive() {
		outcome = types.OutcomeWin
	}

	duration := int64(bar.Time.Sub(entry.Time).Seconds())

	return types.Trade{
		ID:     e.tradeID(bar.Symbol, entry),
		Symbol: bar.Symbol,
		Entry:  entry,
		Exit: types.TradeExit{
			Price:           level.price,
			Time:            bar.Time,
			BarIndex:        index,
			Reason:          level.reason,
			DurationSeconds: duration,
			BarsHeld:        barsHeld(duration, e.timeframe(bar), index-signalIndex),
			Indicators:      snapshot,
		},
		Result: types.TradeResult{
			Outcome:         outcome,
			PnL:             pnl.InexactFloat64(),
			PnLPct:          pnlPct.InexactFloat64(),
			MaxFavorablePct: round(maxFavorable, 4),
			MaxAdversePct:   round(maxAdverse, 4),
			ExitReason:      level.reason,
			Commission:      commission.InexactFloat64(),
		},
		Truncated: truncated,
	}
}

func (e *TradeExecutor) timeframe(bar types.Bar) int64 {
	if e.config.TimeframeSeconds > 0 {
		return e.config.TimeframeSeconds
	}

	return bar.TimeframeSeconds
}

// tradeID is derived from the asset, strategy and entry so reruns produce the same IDs.
func (e *TradeExecutor) tradeID(symbol string, entry types.TradeEntry) string {
	asset := e.config.Asset
	if asset == "" {
		asset = symbol
	}

	name := fmt.Sprintf("%s|%s|%d|%d", asset, e.strategyName, entry.Time.UnixNano(), entry.BarIndex)

	return uuid.NewSHA1(tradeNamespace, []byte(name)).String()
}

// barsHeld is the number of bars a trade blocks, measured by time and by index.
func barsHeld(durationSeconds int64, timeframeSeconds int64, indexSpan int) int {
	held := indexSpan
	if timeframeSeconds > 0 {
		held = max(held, int(math.Ceil(float64(durationSeconds)/float64(timeframeSeconds))))
	}

	return max(held, 0)
}

// excursions returns the favorable and adverse move of bar relative to the entry, in percent.
func excursions(entry types.TradeEntry, bar types.Bar) (float64, float64) {
	up := (bar.High - entry.Price) / entry.Price * 100
	down := (entry.Price - bar.Low) / entry.Price * 100

	if entry.Signal.Direction == types.DirectionPut {
		return max(down, 0), max(up, 0)
	}

	return max(up, 0), max(down, 0)
}

func snapshotAt(snapshots []types.IndicatorSnapshot, j int) types.IndicatorSnapshot {
	if j < len(snapshots) {
		return snapshots[j]
	}

	return types.IndicatorSnapshot{}
}

func round(value float64, places int) float64 {
	return decimal.NewFromFloat(value).Round(int32(places)).InexactFloat64()
}
