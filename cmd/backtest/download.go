package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download historical bars from a market data provider",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider (%s or %s)", marketdata.ProviderBinance, marketdata.ProviderPolygon),
				Value:   string(marketdata.ProviderBinance),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "JSON download configuration, replaces the ticker, range and interval flags",
			},
			&cli.StringFlag{
				Name:    "ticker",
				Aliases: []string{"t"},
				Usage:   "Symbol to download, e.g. BTCUSDT or SPY",
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02", time.RFC3339},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to now",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02", time.RFC3339},
				},
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Bar interval, e.g. 1m, 5m, 1h or 1d",
				Value:   string(marketdata.TimespanOneMinute),
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format, parquet or csv",
				Value: string(marketdata.FormatParquet),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Output directory",
				Value:   "data",
			},
		},
		Action: downloadAction,
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	providerName := cmd.String("provider")

	config, err := downloadConfig(cmd, providerName)
	if err != nil {
		return err
	}

	params, err := config.ToDownloadParams()
	if err != nil {
		return err
	}

	onProgress := marketdata.NewProgressReporter(cmd.Root().ErrWriter, fmt.Sprintf("Downloading %s", params.Ticker))

	client, err := marketdata.NewClient(config.ToClientConfig(cmd.String("data")), onProgress, log)
	if err != nil {
		return err
	}

	path, err := client.Download(ctx, params)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, TitleStyle.Render("Downloaded "+params.Ticker))
	fmt.Fprintln(cmd.Root().Writer, HelpStyle.Render(path))

	return nil
}

// downloadConfig reads the JSON configuration file, or builds the same
// configuration from flags. The polygon key comes from POLYGON_API_KEY.
func downloadConfig(cmd *cli.Command, providerName string) (marketdata.DownloadConfig, error) {
	if path := cmd.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		return marketdata.ParseDownloadConfig(providerName, string(data))
	}

	interval, err := marketdata.ParseTimespan(cmd.String("interval"))
	if err != nil {
		return nil, err
	}

	base := marketdata.BaseDownloadConfig{
		Ticker:    cmd.String("ticker"),
		StartDate: cmd.Timestamp("start").UTC().Format(time.RFC3339),
		EndDate:   cmd.Timestamp("end").UTC().Format(time.RFC3339),
		Interval:  string(interval),
		Format:    cmd.String("format"),
	}

	var config marketdata.DownloadConfig

	switch marketdata.ProviderType(providerName) {
	case marketdata.ProviderPolygon:
		config = &marketdata.PolygonDownloadConfig{BaseDownloadConfig: base, ApiKey: os.Getenv("POLYGON_API_KEY")}
	case marketdata.ProviderBinance:
		config = &marketdata.BinanceDownloadConfig{BaseDownloadConfig: base}
	default:
		_, err := marketdata.GetProviderInfo(providerName)

		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
