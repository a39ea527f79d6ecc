package strategy

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/cache"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/version"
	"github.com/horaciomoreno100/deriv-bot-sub007/mocks"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type StrategyTestSuite struct {
	suite.Suite
	state cache.Cache
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) SetupTest() {
	suite.state = cache.NewCacheV1()
}

func bar(close float64) types.Bar {
	return types.Bar{
		Symbol: "R_100",
		Time:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Open:   close,
		High:   close + 1,
		Low:    close - 1,
		Close:  close,
	}
}

func (suite *StrategyTestSuite) TestRSIReversalSignals() {
	s := NewRSIReversal()
	bars := []types.Bar{bar(100)}

	tests := []struct {
		name      string
		snapshot  types.IndicatorSnapshot
		direction types.Direction
		signal    bool
	}{
		{name: "warming up", snapshot: types.IndicatorSnapshot{"rsi": types.UnavailableValue()}},
		{name: "neutral", snapshot: types.IndicatorSnapshot{"rsi": types.NumberValue(50)}},
		{name: "oversold", snapshot: types.IndicatorSnapshot{"rsi": types.NumberValue(20)}, direction: types.DirectionCall, signal: true},
		{name: "overbought", snapshot: types.IndicatorSnapshot{"rsi": types.NumberValue(85)}, direction: types.DirectionPut, signal: true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			signal, err := s.CheckEntry(bars, tc.snapshot, 0, suite.state)
			suite.Require().NoError(err)
			suite.Equal(tc.signal, signal.IsSome())

			if tc.signal {
				suite.Equal(tc.direction, signal.Unwrap().Direction)
				suite.Equal(100.0, signal.Unwrap().Price)
				suite.Equal(types.EntryModeSignalPrice, signal.Unwrap().EntryMode)
				suite.InDelta(0.5, signal.Unwrap().Confidence, 0.5)
			}
		})
	}
}

func (suite *StrategyTestSuite) TestRSIReversalConfigure() {
	s := NewRSIReversal()
	configurable := s.(Configurable)

	suite.Require().NoError(configurable.Configure("period: 7\noversold: 25\n"))
	suite.Equal([]float64{7}, s.RequiredIndicators()[0].Params)

	params := configurable.Params().(RSIReversalParams)
	suite.Equal(25.0, params.Oversold)
	suite.Equal(70.0, params.Overbought)

	err := configurable.Configure("oversold: 80\n")
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
	// a rejected configuration leaves the previous one in place
	suite.Equal(25.0, configurable.Params().(RSIReversalParams).Oversold)

	err = configurable.Configure("period: [")
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))

	// each call starts from the defaults
	suite.Require().NoError(configurable.Configure("overbought: 75\n"))
	params = configurable.Params().(RSIReversalParams)
	suite.Equal(14, params.Period)
	suite.Equal(30.0, params.Oversold)
	suite.Equal(75.0, params.Overbought)

	suite.Require().NoError(configurable.Configure(""))
	suite.Equal(defaultRSIReversalParams(), configurable.Params())
}

func (suite *StrategyTestSuite) TestBollingerReversionOncePerExcursion() {
	s := NewBollingerReversion()
	snapshot := types.IndicatorSnapshot{
		"bb_upper":  types.NumberValue(110),
		"bb_middle": types.NumberValue(100),
		"bb_lower":  types.NumberValue(90),
	}

	first, err := s.CheckEntry([]types.Bar{bar(89)}, snapshot, 0, suite.state)
	suite.Require().NoError(err)
	suite.Require().True(first.IsSome())
	suite.Equal(types.DirectionCall, first.Unwrap().Direction)
	suite.Equal(types.EntryModeNextOpen, first.Unwrap().EntryMode)
	suite.Equal("1", first.Unwrap().Metadata["excursion"])

	// still below the band: same excursion
	second, err := s.CheckEntry([]types.Bar{bar(88)}, snapshot, 0, suite.state)
	suite.Require().NoError(err)
	suite.True(second.IsNone())

	// back inside, then out again
	inside, err := s.CheckEntry([]types.Bar{bar(100)}, snapshot, 0, suite.state)
	suite.Require().NoError(err)
	suite.True(inside.IsNone())

	third, err := s.CheckEntry([]types.Bar{bar(89.5)}, snapshot, 0, suite.state)
	suite.Require().NoError(err)
	suite.True(third.IsSome())
	suite.Equal("2", third.Unwrap().Metadata["excursion"])

	// the opposite band is a new excursion
	put, err := s.CheckEntry([]types.Bar{bar(111)}, snapshot, 0, suite.state)
	suite.Require().NoError(err)
	suite.Equal(types.DirectionPut, put.Unwrap().Direction)

	s.(Resetter).Reset()
	suite.state.Reset()

	again, err := s.CheckEntry([]types.Bar{bar(89)}, snapshot, 0, suite.state)
	suite.Require().NoError(err)
	suite.Equal("1", again.Unwrap().Metadata["excursion"])
}

func (suite *StrategyTestSuite) TestBollingerReversionStateKeys() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	state := mocks.NewMockCache(ctrl)
	s := NewBollingerReversion()
	snapshot := types.IndicatorSnapshot{
		"bb_upper":  types.NumberValue(110),
		"bb_middle": types.NumberValue(100),
		"bb_lower":  types.NumberValue(90),
	}

	gomock.InOrder(
		state.EXPECT().Get(excursionKey).Return(nil, false),
		state.EXPECT().Set(excursionKey, types.DirectionCall),
		state.EXPECT().Get(excursionKey).Return(types.DirectionCall, true),
		state.EXPECT().Delete(excursionKey),
	)

	signal, err := s.CheckEntry([]types.Bar{bar(89)}, snapshot, 0, state)
	suite.Require().NoError(err)
	suite.True(signal.IsSome())

	signal, err = s.CheckEntry([]types.Bar{bar(88)}, snapshot, 0, state)
	suite.Require().NoError(err)
	suite.True(signal.IsNone())

	signal, err = s.CheckEntry([]types.Bar{bar(100)}, snapshot, 0, state)
	suite.Require().NoError(err)
	suite.True(signal.IsNone())
}

func (suite *StrategyTestSuite) TestBollingerReversionWarmUp() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	// no state access while the bands are unavailable
	state := mocks.NewMockCache(ctrl)

	signal, err := NewBollingerReversion().CheckEntry([]types.Bar{bar(50)}, types.IndicatorSnapshot{
		"bb_upper": types.UnavailableValue(),
		"bb_lower": types.UnavailableValue(),
	}, 0, state)
	suite.Require().NoError(err)
	suite.True(signal.IsNone())
}

func (suite *StrategyTestSuite) TestBollingerReversionMiddleExit() {
	s := NewBollingerReversion()
	checker := s.(ExitChecker)
	snapshot := types.IndicatorSnapshot{"bb_middle": types.NumberValue(100)}

	long := types.TradeEntry{Signal: types.EntrySignal{Direction: types.DirectionCall}}
	short := types.TradeEntry{Signal: types.EntrySignal{Direction: types.DirectionPut}}

	suite.False(checker.CheckExit(long, bar(99), snapshot))
	suite.True(checker.CheckExit(long, bar(100), snapshot))
	suite.False(checker.CheckExit(short, bar(101), snapshot))
	suite.True(checker.CheckExit(short, bar(99), snapshot))
	suite.False(checker.CheckExit(long, bar(120), types.IndicatorSnapshot{}))

	suite.Require().NoError(s.(Configurable).Configure("middle_exit: false\n"))
	suite.False(checker.CheckExit(long, bar(120), snapshot))
}

func (suite *StrategyTestSuite) TestEngineVersionConstraints() {
	for _, name := range NewDefaultRegistry().List() {
		s, err := NewDefaultRegistry().Get(name)
		suite.Require().NoError(err)

		versioned, ok := s.(VersionedStrategy)
		suite.Require().True(ok)
		suite.NoError(version.CheckStrategyCompatibility(version.GetVersion(), versioned.EngineVersion()), name)
	}
}

func (suite *StrategyTestSuite) TestRegistry() {
	registry := NewDefaultRegistry()

	suite.Equal([]string{BollingerReversionName, RSIReversalName}, registry.List())

	first, err := registry.Get(RSIReversalName)
	suite.Require().NoError(err)
	second, err := registry.Get(RSIReversalName)
	suite.Require().NoError(err)
	suite.NotSame(first, second)

	_, err = registry.Get("martingale")
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyNotFound))

	err = registry.Register(NewRSIReversal)
	suite.Error(err)

	schema, err := registry.ParamsSchema(BollingerReversionName)
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &decoded))
	suite.Contains(schema, "std_dev")
}
