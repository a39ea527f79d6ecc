package datasource

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/logger"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type DataSourceTestSuite struct {
	suite.Suite
	logger *logger.Logger
	dir    string
}

func TestDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DataSourceTestSuite))
}

func (suite *DataSourceTestSuite) SetupTest() {
	suite.logger = logger.NewNopLogger()
	suite.dir = suite.T().TempDir()
}

func (suite *DataSourceTestSuite) writeFile(name, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func testBars(n int) []types.Bar {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, n)

	for i := range bars {
		price := 100 + float64(i)
		bars[i] = types.Bar{
			Symbol: "R_100",
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price + 0.5,
		}
	}

	return bars
}

func (suite *DataSourceTestSuite) TestDuckDBReadsCSV() {
	path := suite.writeFile("R_100.csv", `time,symbol,open,high,low,close,volume
2025-03-01 00:00:00,R_100,100,101,99,100.5,10
2025-03-01 00:01:00,R_100,101,102,100,101.5,11
2025-03-01 00:02:00,R_100,102,103,101,102.5,12
`)

	ds, err := NewDataSource(":memory:", suite.logger)
	suite.Require().NoError(err)
	defer ds.Close()

	suite.Require().NoError(ds.Initialize(path))

	count, err := ds.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(3, count)

	start := optional.Some(time.Date(2025, 3, 1, 0, 1, 0, 0, time.UTC))

	count, err = ds.Count(start, optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(2, count)

	bars := make([]types.Bar, 0)
	for bar, err := range ds.ReadAll(start, optional.None[time.Time]()) {
		suite.Require().NoError(err)
		bars = append(bars, bar)
	}

	suite.Require().Len(bars, 2)
	suite.Equal("R_100", bars[0].Symbol)
	suite.Equal(101.0, bars[0].Open)
	suite.Equal(102.5, bars[1].Close)
	suite.Equal(12.0, bars[1].Volume)
	suite.Equal(time.Date(2025, 3, 1, 0, 2, 0, 0, time.UTC), bars[1].Time)
}

func (suite *DataSourceTestSuite) TestDuckDBEpochWithoutSymbolOrVolume() {
	path := suite.writeFile("frxEURUSD.csv", `time,open,high,low,close
1740787200,1.05,1.06,1.04,1.055
1740787260,1.055,1.07,1.05,1.06
`)

	ds, err := NewDataSource(":memory:", suite.logger)
	suite.Require().NoError(err)
	defer ds.Close()

	suite.Require().NoError(ds.Initialize(path))

	bars, err := LoadBars(ds, optional.None[time.Time](), optional.None[time.Time](), 0)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)
	suite.Equal("frxEURUSD", bars[0].Symbol)
	suite.Equal(0.0, bars[0].Volume)
	suite.Equal(int64(1740787200), bars[0].Timestamp())
	suite.Equal(int64(60), bars[1].TimeframeSeconds)
}

func (suite *DataSourceTestSuite) TestDuckDBMissingColumn() {
	path := suite.writeFile("broken.csv", "time,open,high,low\n2025-03-01 00:00:00,1,2,0.5\n")

	ds, err := NewDataSource(":memory:", suite.logger)
	suite.Require().NoError(err)
	defer ds.Close()

	err = ds.Initialize(path)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidMarketData))
}

func (suite *DataSourceTestSuite) TestInMemoryRange() {
	bars := testBars(10)
	ds := NewInMemoryDataSource(bars)

	start := optional.Some(bars[2].Time)
	end := optional.Some(bars[5].Time)

	count, err := ds.Count(start, end)
	suite.Require().NoError(err)
	suite.Equal(4, count)

	loaded, err := LoadBars(ds, start, end, 60)
	suite.Require().NoError(err)
	suite.Len(loaded, 4)
	suite.Equal(bars[2].Time, loaded[0].Time)
	suite.Equal(int64(60), loaded[0].TimeframeSeconds)
}

func (suite *DataSourceTestSuite) TestValidateBars() {
	tests := []struct {
		name   string
		mutate func(bars []types.Bar)
		code   errors.ErrorCode
	}{
		{
			name:   "nan close",
			mutate: func(bars []types.Bar) { bars[3].Close = math.NaN() },
			code:   errors.ErrCodeInvalidMarketData,
		},
		{
			name:   "infinite high",
			mutate: func(bars []types.Bar) { bars[1].High = math.Inf(1) },
			code:   errors.ErrCodeInvalidMarketData,
		},
		{
			name:   "high below open",
			mutate: func(bars []types.Bar) { bars[2].High = bars[2].Open - 0.1 },
			code:   errors.ErrCodeInvalidMarketData,
		},
		{
			name:   "duplicate timestamp",
			mutate: func(bars []types.Bar) { bars[4].Time = bars[3].Time },
			code:   errors.ErrCodeNonMonotonicTimestamp,
		},
		{
			name:   "time going backwards",
			mutate: func(bars []types.Bar) { bars[4].Time = bars[0].Time },
			code:   errors.ErrCodeNonMonotonicTimestamp,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			bars := testBars(6)
			tc.mutate(bars)

			_, err := LoadBars(NewInMemoryDataSource(bars), optional.None[time.Time](), optional.None[time.Time](), 60)
			suite.Error(err)
			suite.True(errors.HasCode(err, tc.code))
			suite.True(errors.IsDataError(err))
		})
	}

	suite.NoError(ValidateBars(testBars(6)))
	suite.NoError(ValidateBars(nil))
}

func (suite *DataSourceTestSuite) TestInferTimeframe() {
	bars := testBars(4)
	// a gap in the data does not change the timeframe
	bars[3].Time = bars[3].Time.Add(10 * time.Minute)

	suite.Equal(int64(60), InferTimeframe(bars))
	suite.Equal(int64(0), InferTimeframe(bars[:1]))
}
