package types

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type TypesTestSuite struct {
	suite.Suite
}

func TestTypesSuite(t *testing.T) {
	suite.Run(t, new(TypesTestSuite))
}

func (suite *TypesTestSuite) TestBarIsValid() {
	base := Bar{Symbol: "R_100", TimeframeSeconds: 60, Time: time.Unix(60, 0), Open: 10, High: 12, Low: 9, Close: 11, Volume: 1}

	tests := []struct {
		name   string
		mutate func(b *Bar)
		valid  bool
	}{
		{name: "valid bar", mutate: func(_ *Bar) {}, valid: true},
		{name: "high below close", mutate: func(b *Bar) { b.High = 10.5 }, valid: false},
		{name: "low above open", mutate: func(b *Bar) { b.Low = 10.5 }, valid: false},
		{name: "nan close", mutate: func(b *Bar) { b.Close = math.NaN() }, valid: false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			bar := base
			tc.mutate(&bar)
			suite.Equal(tc.valid, bar.IsValid())
		})
	}

	suite.Equal(int64(60), base.Timestamp())
	suite.Equal(time.Minute, base.Timeframe())
}

func (suite *TypesTestSuite) TestIndicatorValue() {
	num := NumberValue(42.5)
	suite.True(num.IsAvailable())
	suite.Equal(42.5, num.Number().Unwrap())
	suite.True(num.Bool().IsNone())

	flag := BoolValue(true)
	suite.True(flag.Bool().Unwrap())
	suite.True(flag.Number().IsNone())

	missing := UnavailableValue()
	suite.False(missing.IsAvailable())

	data, err := json.Marshal(IndicatorSnapshot{"rsi": num, "macd_bullish": flag, "atr": missing})
	suite.Require().NoError(err)
	suite.JSONEq(`{"rsi":42.5,"macd_bullish":true,"atr":null}`, string(data))

	var decoded IndicatorSnapshot
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Equal(42.5, decoded.Number("rsi").Unwrap())
	suite.True(decoded.Bool("macd_bullish").Unwrap())
	suite.False(decoded.Get("atr").IsAvailable())
	suite.False(decoded.Get("unknown").IsAvailable())
	suite.Equal([]string{"atr", "macd_bullish", "rsi"}, decoded.Keys())
}

func (suite *TypesTestSuite) TestDirectionSign() {
	suite.Equal(1.0, DirectionCall.Sign())
	suite.Equal(-1.0, DirectionPut.Sign())
}

func (suite *TypesTestSuite) TestProfitFactorJSON() {
	metrics := BacktestMetrics{ProfitFactor: ProfitFactor(math.Inf(1))}

	data, err := json.Marshal(metrics)
	suite.Require().NoError(err)
	suite.Contains(string(data), `"profit_factor":"Infinity"`)

	var decoded BacktestMetrics
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.True(decoded.ProfitFactor.IsInfinite())
	suite.Equal(10.0, decoded.ProfitFactor.Capped(10))

	finite := ProfitFactor(1.5)
	data, err = json.Marshal(finite)
	suite.Require().NoError(err)
	suite.Equal("1.5", string(data))
	suite.Equal(1.5, finite.Capped(10))
}

func (suite *TypesTestSuite) TestPnLs() {
	trades := []Trade{
		{Result: TradeResult{PnL: 1.5, Outcome: OutcomeWin}},
		{Result: TradeResult{PnL: -1, Outcome: OutcomeLoss}},
	}

	suite.Equal([]float64{1.5, -1}, PnLs(trades))
	suite.True(trades[0].IsWin())
	suite.False(trades[1].IsWin())
}

func (suite *TypesTestSuite) TestWriteResultStats() {
	dir := suite.T().TempDir()
	path := filepath.Join(dir, "stats.yaml")

	result := &BacktestResult{
		ID:         "run-1",
		Strategy:   "rsi_reversal",
		Asset:      "R_100",
		FinishedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Metrics:    BacktestMetrics{TotalTrades: 3, NetPnL: 4.2, ProfitFactor: ProfitFactor(math.Inf(1))},
	}

	suite.Require().NoError(WriteResultStats(path, []ResultStats{result.Stats()}))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)

	var stats []ResultStats
	suite.Require().NoError(yaml.Unmarshal(data, &stats))
	suite.Require().Len(stats, 1)
	suite.Equal("run-1", stats[0].ID)
	suite.Equal(3, stats[0].Metrics.TotalTrades)
	suite.True(stats[0].Metrics.ProfitFactor.IsInfinite())
}
