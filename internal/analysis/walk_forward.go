package analysis

import (
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/metrics"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

// WalkForward cuts the ledger into contiguous windows [w*n/W, (w+1)*n/W) and splits each
// chronologically into a train and a test part. Windows with an empty side are skipped.
func WalkForward(trades []types.Trade, initialBalance float64, cfg WalkForwardConfig) types.WalkForwardResult {
	windows := cfg.Windows
	if windows <= 0 {
		windows = DefaultWindows
	}

	trainRatio := cfg.TrainRatio
	if trainRatio <= 0 || trainRatio >= 1 {
		trainRatio = DefaultTrainRatio
	}

	n := len(trades)
	result := types.WalkForwardResult{
		Windows: make([]types.WalkForwardWindow, 0, windows),
	}

	var (
		trainWinRate, testWinRate float64
		trainPF, testPF           float64
		profitableTests           int
	)

	for w := 0; w < windows; w++ {
		start := w * n / windows
		end := (w + 1) * n / windows
		window := trades[start:end]
		split := splitIndex(len(window), trainRatio)

		train := window[:split]
		test := window[split:]

		entry := types.WalkForwardWindow{
			Index:      w,
			StartTrade: start,
			EndTrade:   end,
			TrainCount: len(train),
			TestCount:  len(test),
		}

		if len(train) == 0 || len(test) == 0 {
			entry.Skipped = true
			result.Windows = append(result.Windows, entry)

			continue
		}

		entry.Train = metrics.Calculate(train, initialBalance)
		entry.Test = metrics.Calculate(test, initialBalance)
		result.Windows = append(result.Windows, entry)

		result.ValidWindows++
		trainWinRate += entry.Train.WinRate
		testWinRate += entry.Test.WinRate
		trainPF += entry.Train.ProfitFactor.Capped(ProfitFactorCap)
		testPF += entry.Test.ProfitFactor.Capped(ProfitFactorCap)
		result.TotalTrainPnL += entry.Train.NetPnL
		result.TotalTestPnL += entry.Test.NetPnL

		if entry.Test.NetPnL > 0 {
			profitableTests++
		}
	}

	if result.ValidWindows == 0 {
		return result
	}

	valid := float64(result.ValidWindows)
	result.AvgTrainWinRate = trainWinRate / valid
	result.AvgTestWinRate = testWinRate / valid
	result.AvgTrainProfitFactor = trainPF / valid
	result.AvgTestProfitFactor = testPF / valid
	result.WinRateDegradation = result.AvgTrainWinRate - result.AvgTestWinRate
	result.ConsistencyScore = float64(profitableTests) / valid * 100

	if result.TotalTrainPnL > 0 {
		result.PnLDegradation = (result.TotalTrainPnL - result.TotalTestPnL) / result.TotalTrainPnL * 100
		result.RobustnessRatio = result.TotalTestPnL / result.TotalTrainPnL
	}

	return result
}
