package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/marketdata/writer"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
)

// polygonPageLimit is the largest page size the aggregates endpoint accepts.
const polygonPageLimit = 50000

// PolygonAggsIterator is the subset of the polygon iterator the client uses.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient abstracts the polygon REST client.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	writer    writer.MarketDataWriter
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon provider requires an API key")
	}

	return NewPolygonClientWithAPI(&polygonClientWrapper{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a client backed by the given API implementation.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		writer:    nil,
	}
}

func (c *PolygonClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not configured")
	}

	if err = c.writer.Initialize(); err != nil {
		return "", err
	}

	defer c.writer.Close()

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(polygonPageLimit)

	timeframe := TimeframeSeconds(timespan, multiplier)
	total := float64(endDate.Sub(startDate).Milliseconds())
	message := fmt.Sprintf("Downloading %s aggregates from Polygon", ticker)
	iter := c.apiClient.ListAggs(ctx, params)

	for iter.Next() {
		agg := iter.Item()
		barTime := time.Time(agg.Timestamp).UTC()

		bar := types.Bar{
			Symbol:           ticker,
			TimeframeSeconds: timeframe,
			Time:             barTime,
			Open:             agg.Open,
			High:             agg.High,
			Low:              agg.Low,
			Close:            agg.Close,
			Volume:           agg.Volume,
		}

		if err := c.writer.Write(bar); err != nil {
			return "", err
		}

		reportProgress(onProgress, float64(barTime.Sub(startDate).Milliseconds()), total, message)
	}

	if err := iter.Err(); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to list aggregates for %s", ticker)
	}

	reportProgress(onProgress, total, total, message)

	return c.writer.Finalize()
}
