package engine

import (
	"testing"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/logger"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type RunStateTestSuite struct {
	suite.Suite
}

func TestRunStateSuite(t *testing.T) {
	suite.Run(t, new(RunStateTestSuite))
}

func (suite *RunStateTestSuite) TestPhases() {
	state := NewRunState(1000, 2, logger.NewNopLogger())

	suite.Equal(PhaseScanning, state.Phase(0))
	suite.True(state.CanEnter(0))

	state.OpenTrade(3, 4)
	suite.Equal(1, state.OpenTrades())
	suite.False(state.CanEnter(5))

	state.CloseTrade(2.5)
	suite.Equal(0, state.OpenTrades())
	suite.Equal(1002.5, state.Balance())

	tests := []struct {
		index int
		phase Phase
	}{
		{index: 3, phase: PhaseInTrade},
		{index: 7, phase: PhaseInTrade},
		{index: 8, phase: PhaseCooldown},
		{index: 9, phase: PhaseCooldown},
		{index: 10, phase: PhaseScanning},
	}

	for _, tc := range tests {
		suite.Equal(tc.phase, state.Phase(tc.index), "index %d", tc.index)
		suite.Equal(tc.phase == PhaseScanning, state.CanEnter(tc.index), "index %d", tc.index)
	}
}

func (suite *RunStateTestSuite) TestNoCooldown() {
	state := NewRunState(1000, 0, logger.NewNopLogger())

	state.OpenTrade(0, 2)
	state.CloseTrade(-1)

	suite.Equal(PhaseInTrade, state.Phase(2))
	suite.Equal(PhaseScanning, state.Phase(3))
	suite.Equal(999.0, state.Balance())
}

func (suite *RunStateTestSuite) TestOpenTradeBlocksEntries() {
	state := NewRunState(1000, 0, logger.NewNopLogger())

	state.OpenTrade(0, 1)
	// an unclosed trade blocks entries even past its span
	suite.False(state.CanEnter(10))
}

type EventCollectorTestSuite struct {
	suite.Suite
}

func TestEventCollectorSuite(t *testing.T) {
	suite.Run(t, new(EventCollectorTestSuite))
}

func (suite *EventCollectorTestSuite) TestCollect() {
	collector := NewEventCollector(true)
	snapshot := types.IndicatorSnapshot{"rsi": types.NumberValue(25)}

	collector.OnCandle(0, bar(0, 100, 100.2, 99.8, 100), snapshot)
	collector.OnCandle(1, bar(1, 100, 100.2, 99.8, 100), types.IndicatorSnapshot{})
	collector.OnSignal(0, call(), "trade-1")
	collector.OnSignal(1, put(), "")
	collector.OnTradeComplete(types.Trade{ID: "trade-1"})

	metrics := types.BacktestMetrics{TotalTrades: 1}
	monteCarlo := types.MonteCarloResult{Simulations: 10}

	result := collector.ToBacktestResult(
		metrics,
		optional.Some(monteCarlo),
		optional.None[types.WalkForwardResult](),
		optional.None[types.OOSResult](),
	)

	suite.Len(result.Candles, 2)
	suite.Equal(snapshot, result.Candles[0].Indicators)
	suite.Require().Len(result.Signals, 2)
	suite.True(result.Signals[0].Accepted)
	suite.Equal("trade-1", result.Signals[0].TradeID)
	suite.False(result.Signals[1].Accepted)
	suite.Len(result.Trades, 1)
	suite.Equal(metrics, result.Metrics)
	suite.Require().NotNil(result.MonteCarlo)
	suite.Equal(10, result.MonteCarlo.Simulations)
	suite.Nil(result.WalkForward)
	suite.Nil(result.OutOfSample)
}

func (suite *EventCollectorTestSuite) TestWithoutCandles() {
	collector := NewEventCollector(false)
	collector.OnCandle(0, bar(0, 100, 100.2, 99.8, 100), types.IndicatorSnapshot{})

	result := collector.ToBacktestResult(
		types.BacktestMetrics{},
		optional.None[types.MonteCarloResult](),
		optional.None[types.WalkForwardResult](),
		optional.None[types.OOSResult](),
	)

	suite.Nil(result.Candles)
	suite.Empty(result.Trades)
	suite.Empty(collector.Trades())
}
