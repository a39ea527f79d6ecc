package main

import (
	"context"
	"fmt"

	enginev1 "github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/strategy"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print a JSON schema: the engine configuration by default",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "Print the parameter schema of a registered strategy",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Print the download configuration schema of a market data provider",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "List registered strategies and providers",
			},
		},
		Action: schemaAction,
	}
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer
	registry := strategy.NewDefaultRegistry()

	if cmd.Bool("list") {
		fmt.Fprintln(out, TitleStyle.Render("strategies"))

		for _, name := range registry.List() {
			fmt.Fprintln(out, "  "+name)
		}

		fmt.Fprintln(out, TitleStyle.Render("providers"))

		for _, name := range marketdata.GetSupportedProviders() {
			info, err := marketdata.GetProviderInfo(name)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "  %s  %s\n", name, HelpStyle.Render(info.Description))
		}

		return nil
	}

	var (
		schema string
		err    error
	)

	switch {
	case cmd.String("strategy") != "":
		schema, err = registry.ParamsSchema(cmd.String("strategy"))
	case cmd.String("provider") != "":
		schema, err = marketdata.GetDownloadConfigSchema(cmd.String("provider"))
	default:
		config := enginev1.DefaultConfig()
		schema, err = config.GenerateSchemaJSON()
	}

	if err != nil {
		return err
	}

	fmt.Fprintln(out, schema)

	return nil
}
