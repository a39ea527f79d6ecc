package engine

import (
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/moznion/go-optional"
)

// EventCollector records what happened during a run and assembles the result.
// It only appends; decisions are taken by the loop.
type EventCollector struct {
	recordCandles bool
	candles       []types.CandleEvent
	signals       []types.SignalEvent
	trades        []types.Trade
}

func NewEventCollector(recordCandles bool) *EventCollector {
	return &EventCollector{
		recordCandles: recordCandles,
		candles:       make([]types.CandleEvent, 0),
		signals:       make([]types.SignalEvent, 0),
		trades:        make([]types.Trade, 0),
	}
}

func (c *EventCollector) OnCandle(index int, bar types.Bar, snapshot types.IndicatorSnapshot) {
	if !c.recordCandles {
		return
	}

	c.candles = append(c.candles, types.CandleEvent{
		Index:      index,
		Bar:        bar,
		Indicators: snapshot,
	})
}

// OnSignal records a signal. tradeID is empty for a signal that produced no trade.
func (c *EventCollector) OnSignal(index int, signal types.EntrySignal, tradeID string) {
	c.signals = append(c.signals, types.SignalEvent{
		Index:    index,
		Signal:   signal,
		Accepted: tradeID != "",
		TradeID:  tradeID,
	})
}

func (c *EventCollector) OnTradeComplete(trade types.Trade) {
	c.trades = append(c.trades, trade)
}

// Trades returns the ledger in the order trades completed.
func (c *EventCollector) Trades() []types.Trade {
	return c.trades
}

// ToBacktestResult assembles the recorded events with the computed statistics.
func (c *EventCollector) ToBacktestResult(
	metrics types.BacktestMetrics,
	monteCarlo optional.Option[types.MonteCarloResult],
	walkForward optional.Option[types.WalkForwardResult],
	outOfSample optional.Option[types.OOSResult],
) *types.BacktestResult {
	result := &types.BacktestResult{
		Trades:      c.trades,
		Metrics:     metrics,
		MonteCarlo:  monteCarlo.UnwrapAsPtr(),
		WalkForward: walkForward.UnwrapAsPtr(),
		OutOfSample: outOfSample.UnwrapAsPtr(),
		Candles:     nil,
		Signals:     c.signals,
	}

	if c.recordCandles {
		result.Candles = c.candles
	}

	return result
}
