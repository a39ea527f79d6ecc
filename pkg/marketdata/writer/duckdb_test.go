package writer

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/logger"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	dir    string
	logger *logger.Logger
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.logger = logger.NewNopLogger()
}

func testBar(minute int, price float64) types.Bar {
	return types.Bar{
		Symbol:           "BTCUSDT",
		TimeframeSeconds: 60,
		Time:             time.Date(2024, 1, 1, 0, minute, 0, 0, time.UTC),
		Open:             price,
		High:             price + 1,
		Low:              price - 1,
		Close:            price + 0.5,
		Volume:           3,
	}
}

func (suite *DuckDBWriterTestSuite) query(sqlQuery string) *sql.Rows {
	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { db.Close() })

	rows, err := db.Query(sqlQuery)
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { rows.Close() })

	return rows
}

func (suite *DuckDBWriterTestSuite) TestWriteParquet() {
	path := filepath.Join(suite.dir, "nested", "bars.parquet")
	w := NewDuckDBWriter(path, suite.logger)
	suite.Equal(path, w.GetOutputPath())

	suite.Require().NoError(w.Initialize())
	defer w.Close()

	suite.Require().NoError(w.Write(testBar(2, 102)))
	suite.Require().NoError(w.Write(testBar(0, 100)))
	suite.Require().NoError(w.Write(testBar(1, 101)))

	output, err := w.Finalize()
	suite.Require().NoError(err)
	suite.Equal(path, output)

	rows := suite.query(fmt.Sprintf("SELECT time, symbol, timeframe_seconds, open FROM read_parquet('%s')", path))

	opens := make([]float64, 0)

	for rows.Next() {
		var (
			barTime   time.Time
			symbol    string
			timeframe int64
			open      float64
		)

		suite.Require().NoError(rows.Scan(&barTime, &symbol, &timeframe, &open))
		suite.Equal("BTCUSDT", symbol)
		suite.Equal(int64(60), timeframe)

		opens = append(opens, open)
	}

	suite.Require().NoError(rows.Err())
	suite.Equal([]float64{100, 101, 102}, opens)
}

func (suite *DuckDBWriterTestSuite) TestWriteCSV() {
	path := filepath.Join(suite.dir, "bars.csv")
	w := NewDuckDBWriter(path, suite.logger)

	suite.Require().NoError(w.Initialize())
	defer w.Close()

	suite.Require().NoError(w.Write(testBar(0, 100)))

	_, err := w.Finalize()
	suite.Require().NoError(err)

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)
	suite.Contains(string(data), "time,symbol,timeframe_seconds,open,high,low,close,volume")
	suite.Contains(string(data), "BTCUSDT")
}

func (suite *DuckDBWriterTestSuite) TestNotInitialized() {
	w := NewDuckDBWriter(filepath.Join(suite.dir, "bars.parquet"), suite.logger)

	err := w.Write(testBar(0, 100))
	suite.Equal(errors.ErrCodeMarketDataWriteFailed, errors.GetCode(err))

	_, err = w.Finalize()
	suite.Equal(errors.ErrCodeMarketDataWriteFailed, errors.GetCode(err))

	suite.NoError(w.Close())
}

func (suite *DuckDBWriterTestSuite) TestCloseWithoutFinalize() {
	path := filepath.Join(suite.dir, "bars.parquet")
	w := NewDuckDBWriter(path, suite.logger)

	suite.Require().NoError(w.Initialize())
	suite.Require().NoError(w.Write(testBar(0, 100)))
	suite.NoError(w.Close())

	// staged bars are discarded
	suite.NoFileExists(path)
	suite.NoError(w.Close())
}
