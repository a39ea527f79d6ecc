// Package writer persists backtest results: stats.yaml with the summary, result.json with
// the full result and trades.parquet with the ledger.
package writer

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/logger"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"go.uber.org/zap"
)

const (
	StatsFileName  = "stats.yaml"
	ResultFileName = "result.json"
	TradesFileName = "trades.parquet"
)

type ResultWriter interface {
	// Write stores result in folder and returns the summary written to stats.yaml.
	Write(folder string, result *types.BacktestResult, dataPath string) (types.ResultStats, error)
}

type FileResultWriter struct {
	logger *logger.Logger
}

func NewResultWriter(logger *logger.Logger) ResultWriter {
	return &FileResultWriter{logger: logger}
}

// Write implements ResultWriter.
func (w *FileResultWriter) Write(folder string, result *types.BacktestResult, dataPath string) (types.ResultStats, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return types.ResultStats{}, errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "failed to create %s", folder)
	}

	tradesPath := filepath.Join(folder, TradesFileName)
	if err := w.writeTrades(tradesPath, result.Trades); err != nil {
		return types.ResultStats{}, err
	}

	resultPath := filepath.Join(folder, ResultFileName)
	if err := writeJSON(resultPath, result); err != nil {
		return types.ResultStats{}, err
	}

	stats := result.Stats()
	stats.TradesFilePath = tradesPath
	stats.ResultFilePath = resultPath
	stats.DataPath = dataPath

	if err := types.WriteResultStats(filepath.Join(folder, StatsFileName), []types.ResultStats{stats}); err != nil {
		return types.ResultStats{}, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write stats", err)
	}

	w.logger.Info("Backtest results written",
		zap.String("folder", folder),
		zap.Int("trades", len(result.Trades)),
	)

	return stats, nil
}

func (w *FileResultWriter) writeTrades(path string, trades []types.Trade) error {
	store, err := NewTradeStore(w.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Insert(trades); err != nil {
		return err
	}

	summaries, err := store.SummaryByExitReason()
	if err != nil {
		return err
	}

	for _, summary := range summaries {
		w.logger.Debug("Exit reason summary",
			zap.String("reason", string(summary.Reason)),
			zap.Int("count", summary.Count),
			zap.Float64("pnl", summary.PnL),
		)
	}

	return store.Export(path)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to marshal result", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "failed to write %s", path)
	}

	return nil
}
