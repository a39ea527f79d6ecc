package provider

import (
	"context"
	"time"

	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/marketdata/writer"
	"github.com/polygon-io/client-go/rest/models"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// OnDownloadProgress reports how far a download has come. current and total
// share a unit chosen by the provider, so only their ratio is meaningful.
type OnDownloadProgress = func(current float64, total float64, message string)

type Provider interface {
	// ConfigWriter sets the writer the downloaded bars are staged into.
	ConfigWriter(writer writer.MarketDataWriter)
	// Download fetches bars for ticker in [startDate, endDate] and returns the
	// path of the exported file. Cancelling ctx aborts between pages.
	// example:
	// Download(ctx, "BTCUSDT", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, models.Minute, onProgress)
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error)
}

// NewMarketDataProvider creates a provider for the given type. apiKey is
// required by polygon and ignored by binance.
func NewMarketDataProvider(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		return NewPolygonClient(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

// TimeframeSeconds returns the bar length for a timespan and multiplier.
// Months have no fixed length and return 0, leaving the timeframe to be
// inferred from the bar spacing.
func TimeframeSeconds(timespan models.Timespan, multiplier int) int64 {
	var unit int64

	switch timespan {
	case models.Second:
		unit = 1
	case models.Minute:
		unit = 60
	case models.Hour:
		unit = 3600
	case models.Day:
		unit = 86400
	case models.Week:
		unit = 7 * 86400
	default:
		return 0
	}

	return unit * int64(multiplier)
}

func reportProgress(onProgress OnDownloadProgress, current float64, total float64, message string) {
	if onProgress == nil {
		return
	}

	onProgress(current, total, message)
}
