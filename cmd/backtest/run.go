package main

import (
	"context"
	"fmt"

	engine "github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine"
	enginev1 "github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/datasource"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run strategies against every configuration and data file",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "strategy",
				Aliases:  []string{"s"},
				Usage:    "Registered strategy name, repeatable",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Bar files, csv or parquet, glob patterns allowed",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Run configuration files, glob patterns allowed. One run per file",
			},
			&cli.StringFlag{
				Name:  "engine-config",
				Usage: "YAML layered over the engine and strategy defaults for every run",
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"o"},
				Usage:   "Output folder",
				Value:   "results",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	engineConfig, err := readOptionalFile(cmd.String("engine-config"))
	if err != nil {
		return err
	}

	backtester := enginev1.NewBacktestEngineV1WithLogger(log)
	if err := backtester.Initialize(engineConfig); err != nil {
		return err
	}

	for _, name := range cmd.StringSlice("strategy") {
		if err := backtester.LoadStrategyByName(name); err != nil {
			return err
		}
	}

	if configPath := cmd.String("config"); configPath != "" {
		if err := backtester.SetConfigPath(configPath); err != nil {
			return err
		}
	}

	if err := backtester.SetDataPath(cmd.String("data")); err != nil {
		return err
	}

	if err := backtester.SetResultsFolder(cmd.String("results")); err != nil {
		return err
	}

	ds, err := datasource.NewDataSource(":memory:", log)
	if err != nil {
		return err
	}
	defer ds.Close()

	if err := backtester.SetDataSource(ds); err != nil {
		return err
	}

	out := cmd.Root().Writer
	errOut := cmd.Root().ErrWriter

	var bar *progressbar.ProgressBar

	onRunStart := engine.OnRunStartCallback(func(_ string, _ int, configName string, _ int, dataFilePath string, totalDataPoints int) error {
		bar = progressbar.NewOptions(totalDataPoints,
			progressbar.OptionSetWriter(errOut),
			progressbar.OptionSetDescription(fmt.Sprintf("%s %s", configName, dataFilePath)),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		return nil
	})

	onProcessData := engine.OnProcessDataCallback(func(current int, _ int) error {
		if bar != nil {
			return bar.Set(current)
		}

		return nil
	})

	onRunEnd := engine.OnRunEndCallback(func(_ int, _ string, _ int, _ string, resultFolderPath string, result *types.BacktestResult) {
		if bar != nil {
			_ = bar.Finish()
		}

		fmt.Fprintln(out, TitleStyle.Render(fmt.Sprintf("%s on %s", result.Strategy, result.Asset)))
		fmt.Fprintln(out, metricsTable(result))
		fmt.Fprintln(out, HelpStyle.Render("results: "+resultFolderPath))
	})

	return backtester.Run(ctx, engine.LifecycleCallbacks{
		OnRunStart:    &onRunStart,
		OnProcessData: &onProcessData,
		OnRunEnd:      &onRunEnd,
	})
}
