package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/datasource"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/grid"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/strategy"
	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

func gridCommand() *cli.Command {
	return &cli.Command{
		Name:  "grid",
		Usage: "Backtest one strategy over every combination of a parameter grid",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "strategy",
				Aliases:  []string{"s"},
				Usage:    "Registered strategy name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Bar file, csv or parquet",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "grid",
				Aliases:  []string{"g"},
				Usage:    "YAML file with parameters and concurrency",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "engine-config",
				Usage: "YAML every grid point is layered over",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Parallel runs, overrides the grid file",
			},
		},
		Action: gridAction,
	}
}

func gridAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	registry := strategy.NewDefaultRegistry()
	name := cmd.String("strategy")

	if _, err := registry.Get(name); err != nil {
		return err
	}

	gridData, err := os.ReadFile(cmd.String("grid"))
	if err != nil {
		return fmt.Errorf("failed to read grid: %w", err)
	}

	gridConfig, err := grid.ParseConfig(gridData)
	if err != nil {
		return err
	}

	if concurrency := int(cmd.Int("concurrency")); concurrency > 0 {
		gridConfig.Concurrency = concurrency
	}

	points, err := grid.Expand(gridConfig.Parameters)
	if err != nil {
		return err
	}

	engineConfig, err := readOptionalFile(cmd.String("engine-config"))
	if err != nil {
		return err
	}

	ds, err := datasource.NewDataSource(":memory:", log)
	if err != nil {
		return err
	}
	defer ds.Close()

	if err := ds.Initialize(cmd.String("data")); err != nil {
		return err
	}

	bars, err := datasource.LoadBars(ds, optional.None[time.Time](), optional.None[time.Time](), 0)
	if err != nil {
		return err
	}

	newStrategy := func() strategy.Strategy {
		// the name was checked above
		s, _ := registry.Get(name)

		return s
	}

	bar := progressbar.NewOptions(len(points),
		progressbar.OptionSetWriter(cmd.Root().ErrWriter),
		progressbar.OptionSetDescription(fmt.Sprintf("%s grid", name)),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	runner := grid.NewRunner(newStrategy, engineConfig, gridConfig.Concurrency, log)

	results, err := runner.Run(ctx, bars, points, func(done int, _ int) {
		_ = bar.Set(done)
	})
	if err != nil {
		return err
	}

	_ = bar.Finish()

	out := cmd.Root().Writer
	fmt.Fprintln(out, TitleStyle.Render(fmt.Sprintf("%s grid over %d bars", name, len(bars))))
	fmt.Fprintln(out, gridTable(results))

	if best, ok := grid.Best(results); ok {
		fmt.Fprintln(out, HelpStyle.Render("best: "+best.Point.Name))
	}

	return nil
}
