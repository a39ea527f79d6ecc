package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/grid"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/mocks"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CLITestSuite struct {
	suite.Suite
	dir      string
	dataPath string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (suite *CLITestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.dataPath = filepath.Join(suite.dir, "R_100.csv")

	var csv strings.Builder

	csv.WriteString("time,symbol,open,high,low,close,volume\n")

	for _, bar := range mocks.GenerateBars("R_100", 300) {
		fmt.Fprintf(&csv, "%s,%s,%f,%f,%f,%f,%f\n",
			bar.Time.UTC().Format("2006-01-02 15:04:05"), bar.Symbol, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}

	suite.Require().NoError(os.WriteFile(suite.dataPath, []byte(csv.String()), 0644))
}

// run executes the app and returns what it printed to stdout.
func (suite *CLITestSuite) run(args ...string) (string, error) {
	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard

	err := app.Run(context.Background(), append([]string{"backtest"}, args...))

	return out.String(), err
}

func (suite *CLITestSuite) TestRun() {
	results := filepath.Join(suite.dir, "results")

	out, err := suite.run("run", "-s", "rsi_reversal", "-d", suite.dataPath, "-o", results)
	suite.Require().NoError(err)

	suite.Contains(out, "rsi_reversal on R_100")
	suite.Contains(out, "Net PnL")
	suite.FileExists(filepath.Join(results, "stats.yaml"))
}

func (suite *CLITestSuite) TestRunUnknownStrategy() {
	_, err := suite.run("run", "-s", "nope", "-d", suite.dataPath)
	suite.Equal(errors.ErrCodeStrategyNotFound, errors.GetCode(err))
}

func (suite *CLITestSuite) TestGrid() {
	gridPath := filepath.Join(suite.dir, "grid.yaml")
	suite.Require().NoError(os.WriteFile(gridPath, []byte("concurrency: 2\nparameters:\n  take_profit_pct: [0.5, 1]\n"), 0644))

	out, err := suite.run("grid", "-s", "rsi_reversal", "-d", suite.dataPath, "-g", gridPath)
	suite.Require().NoError(err)

	suite.Contains(out, "rsi_reversal grid over 300 bars")
	suite.Contains(out, "take_profit_pct=0.5")
	suite.Contains(out, "take_profit_pct=1")
	suite.Contains(out, "best: ")
}

func (suite *CLITestSuite) TestSchema() {
	out, err := suite.run("schema")
	suite.Require().NoError(err)
	suite.Contains(out, "take_profit_pct")

	out, err = suite.run("schema", "--strategy", "rsi_reversal")
	suite.Require().NoError(err)
	suite.Contains(out, "oversold")

	out, err = suite.run("schema", "--provider", "binance")
	suite.Require().NoError(err)
	suite.Contains(out, "interval")

	out, err = suite.run("schema", "--list")
	suite.Require().NoError(err)
	suite.Contains(out, "rsi_reversal")
	suite.Contains(out, "bollinger_reversion")
	suite.Contains(out, "polygon")

	_, err = suite.run("schema", "--strategy", "nope")
	suite.Equal(errors.ErrCodeStrategyNotFound, errors.GetCode(err))
}

func (suite *CLITestSuite) TestDownloadRejectsBadInput() {
	_, err := suite.run("download", "-p", "kraken", "-t", "BTCUSDT", "-s", "2024-01-01")
	suite.Equal(errors.ErrCodeInvalidProvider, errors.GetCode(err))

	_, err = suite.run("download", "-p", "binance", "-s", "2024-01-01")
	suite.Require().Error(err)
	suite.Contains(err.Error(), "Ticker")

	_, err = suite.run("download", "-p", "binance", "-t", "BTCUSDT", "-s", "2024-01-01", "-i", "7m")
	suite.Equal(errors.ErrCodeInvalidTimespan, errors.GetCode(err))
}

func (suite *CLITestSuite) TestTables() {
	result := &types.BacktestResult{
		Metrics: types.BacktestMetrics{TotalTrades: 4, WinRate: 75, NetPnL: 1.5, ProfitFactor: types.ProfitFactor(3)},
		OutOfSample: &types.OOSResult{
			Recommendation: "ROBUST",
			OverfitScore:   12,
		},
	}

	rendered := metricsTable(result)
	suite.Contains(rendered, "75.00%")
	suite.Contains(rendered, "3.00")
	suite.Contains(rendered, "ROBUST (score 12)")
	suite.NotContains(rendered, "Monte Carlo")

	rendered = gridTable([]grid.RunResult{
		{Point: grid.Point{Name: "take_profit_pct=1"}, Result: result},
		{Point: grid.Point{Name: "take_profit_pct=0"}, Err: errors.New(errors.ErrCodeInvalidTakeProfit, "bad take profit")},
	})
	suite.Contains(rendered, "take_profit_pct=1")
	suite.Contains(rendered, "bad take profit")

	suite.Equal("inf", formatProfitFactor(types.ProfitFactor(math.Inf(1))))
}
