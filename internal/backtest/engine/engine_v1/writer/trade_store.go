package writer

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/logger"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// TradeStore keeps a trade ledger in an in-memory DuckDB table so it can be queried
// and exported to parquet.
type TradeStore struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// ExitReasonSummary aggregates the trades that closed for one reason.
type ExitReasonSummary struct {
	Reason types.ExitReason
	Count  int
	PnL    float64
}

func NewTradeStore(logger *logger.Logger) (*TradeStore, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to open database", err)
	}

	store := &TradeStore{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

func (s *TradeStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			trade_id TEXT PRIMARY KEY,
			symbol TEXT,
			direction TEXT,
			entry_mode TEXT,
			signal_reason TEXT,
			confidence DOUBLE,
			entry_time TIMESTAMP,
			entry_index INTEGER,
			entry_price DOUBLE,
			stake DOUBLE,
			take_profit DOUBLE,
			stop_loss DOUBLE,
			exit_time TIMESTAMP,
			exit_index INTEGER,
			exit_price DOUBLE,
			exit_reason TEXT,
			duration_seconds BIGINT,
			bars_held INTEGER,
			outcome TEXT,
			pnl DOUBLE,
			pnl_pct DOUBLE,
			commission DOUBLE,
			max_favorable_pct DOUBLE,
			max_adverse_pct DOUBLE,
			truncated BOOLEAN
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create trades table", err)
	}

	return nil
}

// Insert adds the trades in a single transaction.
func (s *TradeStore) Insert(trades []types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to begin transaction", err)
	}

	for _, trade := range trades {
		_, err := s.sq.
			Insert("trades").
			Columns(
				"trade_id", "symbol", "direction", "entry_mode", "signal_reason", "confidence",
				"entry_time", "entry_index", "entry_price", "stake", "take_profit", "stop_loss",
				"exit_time", "exit_index", "exit_price", "exit_reason", "duration_seconds", "bars_held",
				"outcome", "pnl", "pnl_pct", "commission", "max_favorable_pct", "max_adverse_pct", "truncated",
			).
			Values(
				trade.ID, trade.Symbol, string(trade.Entry.Signal.Direction), string(trade.Entry.Signal.EntryMode),
				trade.Entry.Signal.Reason, trade.Entry.Signal.Confidence,
				trade.Entry.Time, trade.Entry.BarIndex, trade.Entry.Price, trade.Entry.Stake,
				trade.Entry.TakeProfit, trade.Entry.StopLoss,
				trade.Exit.Time, trade.Exit.BarIndex, trade.Exit.Price, string(trade.Exit.Reason),
				trade.Exit.DurationSeconds, trade.Exit.BarsHeld,
				string(trade.Result.Outcome), trade.Result.PnL, trade.Result.PnLPct, trade.Result.Commission,
				trade.Result.MaxFavorablePct, trade.Result.MaxAdversePct, trade.Truncated,
			).
			RunWith(tx).
			Exec()
		if err != nil {
			tx.Rollback()

			return errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "failed to insert trade %s", trade.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to commit trades", err)
	}

	return nil
}

// Count returns the number of stored trades.
func (s *TradeStore) Count() (int, error) {
	var count int

	err := s.sq.Select("COUNT(*)").From("trades").RunWith(s.db).QueryRow().Scan(&count)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count trades", err)
	}

	return count, nil
}

// SummaryByExitReason groups the ledger by exit reason, ordered by reason.
func (s *TradeStore) SummaryByExitReason() ([]ExitReasonSummary, error) {
	rows, err := s.sq.
		Select("exit_reason", "COUNT(*)", "COALESCE(SUM(pnl), 0)").
		From("trades").
		GroupBy("exit_reason").
		OrderBy("exit_reason").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to summarize trades", err)
	}
	defer rows.Close()

	summaries := make([]ExitReasonSummary, 0)

	for rows.Next() {
		var (
			reason  string
			summary ExitReasonSummary
		)

		if err := rows.Scan(&reason, &summary.Count, &summary.PnL); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan summary", err)
		}

		summary.Reason = types.ExitReason(reason)
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}

// Export writes the table to a parquet file at path.
func (s *TradeStore) Export(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create directory", err)
	}

	// Using raw SQL as Squirrel doesn't support COPY
	quoted := strings.ReplaceAll(path, "'", "''")
	if _, err := s.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM trades ORDER BY entry_index) TO '%s' (FORMAT PARQUET)`, quoted)); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to export trades to parquet", err)
	}

	s.logger.Debug("Exported trades to parquet", zap.String("path", path))

	return nil
}

func (s *TradeStore) Close() error {
	return s.db.Close()
}
