// Package analysis holds the robustness analyzers run over a completed trade ledger.
// They resample trade PnL values and never re-simulate prices, which assumes trade
// outcomes are independent and exchangeable.
package analysis

import (
	"math/rand/v2"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/metrics"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

// seedStream derives the second PCG word from the seed.
const seedStream = 0x9e3779b97f4a7c15

type simulation struct {
	netPnL         float64
	maxDrawdown    float64
	maxDrawdownPct float64
	finalEquity    float64
	bankrupt       bool
}

// MonteCarlo replays shuffled orderings of the trade PnLs. A path stops as soon as its
// equity reaches zero or below.
func MonteCarlo(trades []types.Trade, initialBalance float64, cfg MonteCarloConfig) types.MonteCarloResult {
	simulations := cfg.Simulations
	if simulations <= 0 {
		simulations = DefaultSimulations
	}

	seed := cfg.Seed.TakeOr(rand.Uint64())
	rng := rand.New(rand.NewPCG(seed, seed^seedStream))

	original := metrics.Calculate(trades, initialBalance)
	result := types.MonteCarloResult{
		Simulations:      simulations,
		Seed:             seed,
		TradesPerRun:     len(trades),
		OriginalNetPnL:   original.NetPnL,
		OriginalDrawdown: original.MaxDrawdown,
	}

	pnls := types.PnLs(trades)
	shuffled := make([]float64, len(pnls))

	netPnLs := make([]float64, simulations)
	drawdowns := make([]float64, simulations)
	drawdownPcts := make([]float64, simulations)
	finals := make([]float64, simulations)

	bankruptcies := 0
	profitable := 0

	for i := 0; i < simulations; i++ {
		copy(shuffled, pnls)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		sim := replay(shuffled, initialBalance)

		netPnLs[i] = sim.netPnL
		drawdowns[i] = sim.maxDrawdown
		drawdownPcts[i] = sim.maxDrawdownPct
		finals[i] = sim.finalEquity

		if sim.bankrupt {
			bankruptcies++
		}

		if sim.finalEquity > initialBalance {
			profitable++
		}
	}

	result.NetPnL = Summarize(netPnLs)
	result.MaxDrawdown = Summarize(drawdowns)
	result.MaxDrawdownPct = Summarize(drawdownPcts)
	result.FinalEquity = Summarize(finals)
	result.RiskOfRuin = float64(bankruptcies) / float64(simulations) * 100
	result.ProfitProbability = float64(profitable) / float64(simulations) * 100

	// netPnLs is sorted by Summarize
	result.Confidence95 = types.ConfidenceInterval{
		Level: 95,
		Lower: Percentile(netPnLs, 2.5),
		Upper: Percentile(netPnLs, 97.5),
	}

	return result
}

func replay(pnls []float64, initialBalance float64) simulation {
	equity := initialBalance
	peak := initialBalance
	sim := simulation{}

	for _, pnl := range pnls {
		equity += pnl
		peak = max(peak, equity)

		if drawdown := peak - equity; drawdown > 0 && drawdown >= sim.maxDrawdown {
			sim.maxDrawdown = drawdown
			if peak > 0 {
				sim.maxDrawdownPct = drawdown / peak * 100
			}
		}

		if equity <= 0 {
			sim.bankrupt = true

			break
		}
	}

	sim.finalEquity = equity
	sim.netPnL = equity - initialBalance

	return sim
}
