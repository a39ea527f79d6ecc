package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/logger"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
)

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource creates a new DuckDB data source instance with the specified database path.
// The path parameter specifies the DuckDB database file location, usually ":memory:".
// This is distinct from Initialize() which loads bars into the database.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements DataSource. Parquet files are read with read_parquet and
// everything else with read_csv_auto. The source needs time, open, high, low and close
// columns. symbol and volume are optional; time may be a timestamp or epoch seconds.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	reader := "read_csv_auto"
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		reader = "read_parquet"
	}

	quoted := strings.ReplaceAll(path, "'", "''")

	// Using raw SQL as Squirrel doesn't support CREATE VIEW
	statements := []string{
		`DROP VIEW IF EXISTS market_data;`,
		`DROP VIEW IF EXISTS raw_market_data;`,
		fmt.Sprintf(`CREATE VIEW raw_market_data AS SELECT * FROM %s('%s');`, reader, quoted),
	}

	for _, statement := range statements {
		if _, err := d.db.Exec(statement); err != nil {
			return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to load %s", path)
		}
	}

	columns, err := d.columns()
	if err != nil {
		return err
	}

	for _, required := range []string{"time", "open", "high", "low", "close"} {
		if _, ok := columns[required]; !ok {
			return errors.Newf(errors.ErrCodeInvalidMarketData, "%s has no %s column", path, required)
		}
	}

	timeExpr := "CAST(time AS TIMESTAMP)"
	if dataType := columns["time"]; strings.Contains(dataType, "INT") || dataType == "DOUBLE" {
		timeExpr = "epoch_ms(CAST(time * 1000 AS BIGINT))"
	}

	symbolExpr := "CAST(symbol AS VARCHAR)"
	if _, ok := columns["symbol"]; !ok {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		symbolExpr = fmt.Sprintf("'%s'", strings.ReplaceAll(stem, "'", "''"))
	}

	volumeExpr := "COALESCE(CAST(volume AS DOUBLE), 0)"
	if _, ok := columns["volume"]; !ok {
		volumeExpr = "CAST(0 AS DOUBLE)"
	}

	view := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT %s AS time, %s AS symbol,
			CAST(open AS DOUBLE) AS open, CAST(high AS DOUBLE) AS high,
			CAST(low AS DOUBLE) AS low, CAST(close AS DOUBLE) AS close,
			%s AS volume
		FROM raw_market_data;
	`, timeExpr, symbolExpr, volumeExpr)

	if _, err := d.db.Exec(view); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidMarketData, err, "failed to normalize %s", path)
	}

	return nil
}

// columns returns the lower-cased column names of the raw view mapped to their types.
func (d *DuckDBDataSource) columns() (map[string]string, error) {
	rows, err := d.db.Query(`DESCRIBE SELECT * FROM raw_market_data;`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to describe market data", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to describe market data", err)
	}

	columns := make(map[string]string)

	for rows.Next() {
		// column_name, column_type, then nullability and key details we ignore
		values := make([]sql.NullString, len(names))
		targets := make([]any, len(names))

		for i := range values {
			targets[i] = &values[i]
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column", err)
		}

		columns[strings.ToLower(values[0].String)] = strings.ToUpper(values[1].String)
	}

	return columns, rows.Err()
}

func (d *DuckDBDataSource) withRange(builder squirrel.SelectBuilder, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return builder
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := d.withRange(d.sq.Select("COUNT(*)").From("market_data"), start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		d.logger.Debug("Reading all bars from DuckDB")

		query, args, err := d.withRange(
			d.sq.Select("time", "symbol", "open", "high", "low", "close", "volume").From("market_data"),
			start, end,
		).OrderBy("time ASC").ToSql()
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var bar types.Bar

			err := rows.Scan(&bar.Time, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
			if err != nil {
				yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err))

				return
			}

			bar.Time = bar.Time.UTC()

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating bars", err))
		}
	}
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}
