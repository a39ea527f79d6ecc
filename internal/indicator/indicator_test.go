package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func barsFromCloses(closes ...float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, c := range closes {
		bars[i] = types.Bar{
			Symbol:           "R_100",
			TimeframeSeconds: 60,
			Time:             start.Add(time.Duration(i) * time.Minute),
			Open:             c,
			High:             c + 1,
			Low:              c - 1,
			Close:            c,
		}
	}

	return bars
}

func wavyBars(n int) []types.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/5) + float64(i)*0.1
	}

	return barsFromCloses(closes...)
}

func (suite *IndicatorTestSuite) TestMA() {
	ma := NewMA()
	suite.Require().NoError(ma.Config(3))
	suite.Equal(3, ma.Lookback())

	values, err := ma.Calculate(barsFromCloses(1, 2, 3, 4, 5))
	suite.Require().NoError(err)
	suite.InDelta(4.0, values[""].Number().Unwrap(), 1e-9)

	_, err = ma.Calculate(barsFromCloses(1, 2))
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *IndicatorTestSuite) TestEMA() {
	ema := NewEMA()
	suite.Require().NoError(ema.Config(3.0))

	// seed (1+2+3)/3 = 2, alpha 0.5
	values, err := ema.Calculate(barsFromCloses(1, 2, 3, 4))
	suite.Require().NoError(err)
	suite.InDelta(3.0, values[""].Number().Unwrap(), 1e-9)
}

func (suite *IndicatorTestSuite) TestRSI() {
	tests := []struct {
		name     string
		closes   []float64
		expected float64
	}{
		{name: "only gains", closes: []float64{1, 2, 3, 4}, expected: 100},
		{name: "flat", closes: []float64{5, 5, 5, 5}, expected: 50},
		{name: "gains twice the losses", closes: []float64{10, 11, 10, 11}, expected: 100 - 100/3.0},
		{name: "only losses", closes: []float64{4, 3, 2, 1}, expected: 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			rsi := NewRSI()
			suite.Require().NoError(rsi.Config(3))

			values, err := rsi.Calculate(barsFromCloses(tc.closes...))
			suite.Require().NoError(err)
			suite.InDelta(tc.expected, values[""].Number().Unwrap(), 1e-9)
		})
	}

	rsi := NewRSI()
	_, err := rsi.Calculate(wavyBars(14))
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *IndicatorTestSuite) TestBollingerBands() {
	bb := NewBollingerBands()
	suite.Require().NoError(bb.Config(4, 2.0))

	values, err := bb.Calculate(barsFromCloses(1, 2, 3, 4))
	suite.Require().NoError(err)

	sd := math.Sqrt(1.25)
	suite.InDelta(2.5, values["_middle"].Number().Unwrap(), 1e-9)
	suite.InDelta(2.5+2*sd, values["_upper"].Number().Unwrap(), 1e-9)
	suite.InDelta(2.5-2*sd, values["_lower"].Number().Unwrap(), 1e-9)
	suite.InDelta(4*sd/2.5, values["_width"].Number().Unwrap(), 1e-9)

	suite.Error(bb.Config(4, -1.0))
}

func (suite *IndicatorTestSuite) TestATR() {
	atr := NewATR()
	suite.Require().NoError(atr.Config(2))

	// every bar has a range of 2 around a flat close
	values, err := atr.Calculate(barsFromCloses(10, 10, 10, 10))
	suite.Require().NoError(err)
	suite.InDelta(2.0, values[""].Number().Unwrap(), 1e-9)

	_, err = atr.Calculate(barsFromCloses(10, 10))
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *IndicatorTestSuite) TestMACD() {
	macd := NewMACD()
	suite.Require().NoError(macd.Config(3, 6, 3))

	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 100
	}

	values, err := macd.Calculate(barsFromCloses(flat...))
	suite.Require().NoError(err)
	suite.InDelta(0.0, values[""].Number().Unwrap(), 1e-9)
	suite.InDelta(0.0, values["_histogram"].Number().Unwrap(), 1e-9)
	suite.False(values["_bullish"].Bool().Unwrap())

	// an accelerating rally keeps the fast average pulling away
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = 100 + float64(i*i)
	}

	values, err = macd.Calculate(barsFromCloses(rising...))
	suite.Require().NoError(err)
	suite.Greater(values[""].Number().Unwrap(), 0.0)
	suite.True(values["_bullish"].Bool().Unwrap())

	_, err = macd.Calculate(barsFromCloses(flat[:7]...))
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *IndicatorTestSuite) TestConfigErrors() {
	tests := []struct {
		name      string
		indicator Indicator
		params    []any
		code      errors.ErrorCode
	}{
		{name: "zero period", indicator: NewRSI(), params: []any{0}, code: errors.ErrCodeInvalidPeriod},
		{name: "fractional period", indicator: NewMA(), params: []any{2.5}, code: errors.ErrCodeInvalidType},
		{name: "string period", indicator: NewEMA(), params: []any{"10"}, code: errors.ErrCodeInvalidType},
		{name: "fast not below slow", indicator: NewMACD(), params: []any{26, 12}, code: errors.ErrCodeInvalidPeriod},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			err := tc.indicator.Config(tc.params...)
			suite.Error(err)
			suite.True(errors.HasCode(err, tc.code))
		})
	}
}
