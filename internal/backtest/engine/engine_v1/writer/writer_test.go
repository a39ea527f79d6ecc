package writer

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/logger"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type WriterTestSuite struct {
	suite.Suite
	logger *logger.Logger
	dir    string
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

func (suite *WriterTestSuite) SetupTest() {
	suite.logger = logger.NewNopLogger()
	suite.dir = suite.T().TempDir()
}

func testTrade(id string, index int, reason types.ExitReason, pnl float64) types.Trade {
	entryTime := time.Date(2025, 1, 1, 0, index, 0, 0, time.UTC)

	outcome := types.OutcomeLoss
	if pnl > 0 {
		outcome = types.OutcomeWin
	}

	return types.Trade{
		ID:     id,
		Symbol: "R_100",
		Entry: types.TradeEntry{
			Signal: types.EntrySignal{
				Direction: types.DirectionCall,
				Time:      entryTime,
				EntryMode: types.EntryModeSignalPrice,
				Reason:    "test",
			},
			Price:      100,
			Time:       entryTime,
			BarIndex:   index,
			Stake:      10,
			TakeProfit: 101,
			StopLoss:   99.5,
		},
		Exit: types.TradeExit{
			Price:           100 + pnl*10,
			Time:            entryTime.Add(2 * time.Minute),
			BarIndex:        index + 2,
			Reason:          reason,
			DurationSeconds: 120,
			BarsHeld:        2,
		},
		Result: types.TradeResult{
			Outcome:    outcome,
			PnL:        pnl,
			ExitReason: reason,
		},
		Truncated: reason == types.ExitReasonEndOfData,
	}
}

func (suite *WriterTestSuite) TestTradeStore() {
	store, err := NewTradeStore(suite.logger)
	suite.Require().NoError(err)
	defer store.Close()

	trades := []types.Trade{
		testTrade("a", 0, types.ExitReasonTakeProfit, 0.1),
		testTrade("b", 5, types.ExitReasonStopLoss, -0.05),
		testTrade("c", 10, types.ExitReasonTakeProfit, 0.1),
		testTrade("d", 15, types.ExitReasonEndOfData, 0.02),
	}

	suite.Require().NoError(store.Insert(trades))

	count, err := store.Count()
	suite.Require().NoError(err)
	suite.Equal(4, count)

	summaries, err := store.SummaryByExitReason()
	suite.Require().NoError(err)
	suite.Require().Len(summaries, 3)
	suite.Equal(types.ExitReasonEndOfData, summaries[0].Reason)
	suite.Equal(types.ExitReasonStopLoss, summaries[1].Reason)
	suite.Equal(types.ExitReasonTakeProfit, summaries[2].Reason)
	suite.Equal(2, summaries[2].Count)
	suite.InDelta(0.2, summaries[2].PnL, 1e-9)
}

func (suite *WriterTestSuite) TestTradeStoreDuplicateID() {
	store, err := NewTradeStore(suite.logger)
	suite.Require().NoError(err)
	defer store.Close()

	trades := []types.Trade{
		testTrade("a", 0, types.ExitReasonTakeProfit, 0.1),
		testTrade("a", 5, types.ExitReasonStopLoss, -0.05),
	}

	suite.Error(store.Insert(trades))

	// the transaction is rolled back as a whole
	count, err := store.Count()
	suite.Require().NoError(err)
	suite.Equal(0, count)
}

func (suite *WriterTestSuite) TestExportParquet() {
	store, err := NewTradeStore(suite.logger)
	suite.Require().NoError(err)
	defer store.Close()

	suite.Require().NoError(store.Insert([]types.Trade{
		testTrade("late", 20, types.ExitReasonTakeProfit, 0.1),
		testTrade("early", 1, types.ExitReasonStopLoss, -0.05),
	}))

	path := filepath.Join(suite.dir, "nested", TradesFileName)
	suite.Require().NoError(store.Export(path))
	suite.FileExists(path)

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf("SELECT trade_id, exit_reason FROM read_parquet('%s')", path))
	suite.Require().NoError(err)
	defer rows.Close()

	ids := make([]string, 0)

	for rows.Next() {
		var id, reason string
		suite.Require().NoError(rows.Scan(&id, &reason))
		ids = append(ids, id)
	}

	suite.Require().NoError(rows.Err())
	suite.Equal([]string{"early", "late"}, ids)
}

func (suite *WriterTestSuite) TestWrite() {
	result := &types.BacktestResult{
		ID:               "run-1",
		Strategy:         "rsi_reversal",
		Asset:            "R_100",
		TimeframeSeconds: 60,
		StartedAt:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		FinishedAt:       time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC),
		TotalBars:        100,
		Trades: []types.Trade{
			testTrade("a", 0, types.ExitReasonTakeProfit, 0.1),
			testTrade("b", 5, types.ExitReasonStopLoss, -0.05),
		},
		Metrics: types.BacktestMetrics{TotalTrades: 2, NetPnL: 0.05},
	}

	folder := filepath.Join(suite.dir, "rsi_reversal", "default", "R_100")

	stats, err := NewResultWriter(suite.logger).Write(folder, result, "/data/R_100.csv")
	suite.Require().NoError(err)

	suite.Equal("run-1", stats.ID)
	suite.Equal(2, stats.Metrics.TotalTrades)
	suite.Equal(filepath.Join(folder, TradesFileName), stats.TradesFilePath)
	suite.Equal(filepath.Join(folder, ResultFileName), stats.ResultFilePath)
	suite.Equal("/data/R_100.csv", stats.DataPath)
	suite.FileExists(stats.TradesFilePath)

	data, err := os.ReadFile(stats.ResultFilePath)
	suite.Require().NoError(err)

	var decoded types.BacktestResult
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Equal("run-1", decoded.ID)
	suite.Len(decoded.Trades, 2)

	data, err = os.ReadFile(filepath.Join(folder, StatsFileName))
	suite.Require().NoError(err)

	var written []types.ResultStats
	suite.Require().NoError(yaml.Unmarshal(data, &written))
	suite.Require().Len(written, 1)
	suite.Equal("rsi_reversal", written[0].Strategy)
	suite.Equal(0.05, written[0].Metrics.NetPnL)
}

func (suite *WriterTestSuite) TestWriteWithoutTrades() {
	result := &types.BacktestResult{ID: "empty", Strategy: "scripted"}

	stats, err := NewResultWriter(suite.logger).Write(suite.dir, result, "data.csv")
	suite.Require().NoError(err)
	suite.FileExists(stats.TradesFilePath)
	suite.FileExists(stats.ResultFilePath)
}
