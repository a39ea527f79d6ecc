package marketdata

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/logger"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/marketdata/provider"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/marketdata/writer"
	"github.com/polygon-io/client-go/rest/models"
	"go.uber.org/zap"
)

type ProviderType = provider.ProviderType

const (
	ProviderPolygon = provider.ProviderPolygon
	ProviderBinance = provider.ProviderBinance
)

// OutputFormat selects the file format of downloaded bars.
type OutputFormat string

const (
	FormatParquet OutputFormat = "parquet"
	FormatCSV     OutputFormat = "csv"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  ProviderType `validate:"required,oneof=polygon binance"`
	Format        OutputFormat `validate:"omitempty,oneof=parquet csv"`
	DataPath      string       `validate:"required"`
	PolygonApiKey string       `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker     string          `validate:"required"`
	StartDate  time.Time       `validate:"required"`
	EndDate    time.Time       `validate:"required,gtfield=StartDate"`
	Multiplier int             `validate:"required,min=1"`
	Timespan   models.Timespan `validate:"required"`
}

// Client downloads bars from a provider into files the backtest engine reads.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
	logger     *logger.Logger
}

// NewClient creates a client for the configured provider.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress, logger *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, config.PolygonApiKey)
	if err != nil {
		return nil, err
	}

	return newClient(config, marketProvider, validate, onProgress, logger), nil
}

// NewClientWithProvider creates a client around an existing provider.
func NewClientWithProvider(config ClientConfig, marketProvider provider.Provider, onProgress provider.OnDownloadProgress, logger *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	return newClient(config, marketProvider, validate, onProgress, logger), nil
}

func newClient(config ClientConfig, marketProvider provider.Provider, validate *validator.Validate, onProgress provider.OnDownloadProgress, logger *logger.Logger) *Client {
	if config.Format == "" {
		config.Format = FormatParquet
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
		logger:     logger,
	}
}

// Download fetches the requested bars and returns the path of the written file.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	outputPath := c.OutputPath(params)
	c.provider.ConfigWriter(writer.NewDuckDBWriter(outputPath, c.logger))

	c.logger.Info("Downloading market data",
		zap.String("provider", string(c.config.ProviderType)),
		zap.String("ticker", params.Ticker),
		zap.Time("start", params.StartDate),
		zap.Time("end", params.EndDate),
		zap.String("output", outputPath),
	)

	path, err := c.provider.Download(
		ctx,
		params.Ticker,
		params.StartDate,
		params.EndDate,
		params.Multiplier,
		params.Timespan,
		c.onProgress,
	)
	if err != nil {
		return "", err
	}

	return path, nil
}

// OutputPath builds TICKER_START_END_MULTIPLIER_TIMESPAN.<format> under the data path.
func (c *Client) OutputPath(params DownloadParams) string {
	fileName := fmt.Sprintf("%s_%s_%s_%d_%s.%s",
		params.Ticker,
		params.StartDate.Format("2006-01-02"),
		params.EndDate.Format("2006-01-02"),
		params.Multiplier,
		params.Timespan,
		c.config.Format,
	)

	return filepath.Join(c.config.DataPath, fileName)
}
