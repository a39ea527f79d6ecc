package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/grid"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true)

	HelpStyle = lipgloss.NewStyle().Faint(true)

	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})
}

func formatProfitFactor(pf types.ProfitFactor) string {
	if pf.IsInfinite() {
		return "inf"
	}

	return fmt.Sprintf("%.2f", float64(pf))
}

// metricsTable renders the headline metrics of a run, plus a line per analyzer
// that ran.
func metricsTable(result *types.BacktestResult) string {
	m := result.Metrics

	t := newTable().
		Headers("Metric", "Value").
		Row("Trades", fmt.Sprintf("%d (%d truncated)", m.TotalTrades, m.TruncatedTrades)).
		Row("Win rate", fmt.Sprintf("%.2f%%", m.WinRate)).
		Row("Net PnL", fmt.Sprintf("%.2f", m.NetPnL)).
		Row("Profit factor", formatProfitFactor(m.ProfitFactor)).
		Row("Max drawdown", fmt.Sprintf("%.2f (%.2f%%)", m.MaxDrawdown, m.MaxDrawdownPct)).
		Row("Expectancy", fmt.Sprintf("%.4f", m.Expectancy)).
		Row("Final balance", fmt.Sprintf("%.2f", m.FinalBalance))

	if result.MonteCarlo != nil {
		t.Row("Monte Carlo P(profit)", fmt.Sprintf("%.1f%%", result.MonteCarlo.ProfitProbability))
		t.Row("Monte Carlo risk of ruin", fmt.Sprintf("%.1f%%", result.MonteCarlo.RiskOfRuin))
	}

	if result.WalkForward != nil {
		t.Row("Walk-forward robustness", fmt.Sprintf("%.2f", result.WalkForward.RobustnessRatio))
	}

	if result.OutOfSample != nil {
		t.Row("Out-of-sample", fmt.Sprintf("%s (score %.0f)", result.OutOfSample.Recommendation, result.OutOfSample.OverfitScore))
	}

	return t.Render()
}

// gridTable renders one row per grid point in point order.
func gridTable(results []grid.RunResult) string {
	t := newTable().Headers("Point", "Trades", "Win rate", "Net PnL", "Profit factor", "Max DD")

	for _, result := range results {
		if result.Err != nil {
			t.Row(result.Point.Name, "-", "-", "-", "-", result.Err.Error())

			continue
		}

		m := result.Result.Metrics
		t.Row(
			result.Point.Name,
			fmt.Sprintf("%d", m.TotalTrades),
			fmt.Sprintf("%.2f%%", m.WinRate),
			fmt.Sprintf("%.2f", m.NetPnL),
			formatProfitFactor(m.ProfitFactor),
			fmt.Sprintf("%.2f", m.MaxDrawdown),
		)
	}

	return t.Render()
}
