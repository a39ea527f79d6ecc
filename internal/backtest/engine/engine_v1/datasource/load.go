package datasource

import (
	"math"
	"time"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/moznion/go-optional"
)

// LoadBars reads every bar in range and validates the series. It rejects non-finite or
// non-positive prices, OHLC violations and timestamps that do not strictly increase.
// When timeframeSeconds is 0 the timeframe is inferred as the smallest gap between bars.
func LoadBars(ds DataSource, start optional.Option[time.Time], end optional.Option[time.Time], timeframeSeconds int64) ([]types.Bar, error) {
	bars := make([]types.Bar, 0)

	for bar, err := range ds.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	if err := ValidateBars(bars); err != nil {
		return nil, err
	}

	if timeframeSeconds <= 0 {
		timeframeSeconds = InferTimeframe(bars)
	}

	for i := range bars {
		bars[i].TimeframeSeconds = timeframeSeconds
	}

	return bars, nil
}

// ValidateBars checks prices and ordering of a bar series.
func ValidateBars(bars []types.Bar) error {
	for i, bar := range bars {
		for _, price := range []float64{bar.Open, bar.High, bar.Low, bar.Close, bar.Volume} {
			if math.IsNaN(price) || math.IsInf(price, 0) {
				return errors.Newf(errors.ErrCodeInvalidMarketData, "bar %d at %s has a non-finite value", i, bar.Time)
			}
		}

		if bar.Low <= 0 {
			return errors.Newf(errors.ErrCodeInvalidMarketData, "bar %d at %s has a non-positive price", i, bar.Time)
		}

		if !bar.IsValid() {
			return errors.Newf(errors.ErrCodeInvalidMarketData,
				"bar %d at %s violates low <= open/close <= high", i, bar.Time)
		}

		if i > 0 && !bar.Time.After(bars[i-1].Time) {
			return errors.Newf(errors.ErrCodeNonMonotonicTimestamp,
				"bar %d at %s is not after %s", i, bar.Time, bars[i-1].Time)
		}
	}

	return nil
}

// InferTimeframe returns the smallest gap between consecutive bars in seconds, 0 for
// fewer than two bars.
func InferTimeframe(bars []types.Bar) int64 {
	var timeframe int64

	for i := 1; i < len(bars); i++ {
		gap := bars[i].Timestamp() - bars[i-1].Timestamp()
		if gap > 0 && (timeframe == 0 || gap < timeframe) {
			timeframe = gap
		}
	}

	return timeframe
}
