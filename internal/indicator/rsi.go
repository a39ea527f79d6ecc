package indicator

import (
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

// RSI represents the Relative Strength Index indicator with Wilder smoothing.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period: 14, // Default period
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	period, err := periodParam(params, 0, "period", r.period)
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

func (r *RSI) Lookback() int {
	return r.period*warmupFactor + 1
}

func (r *RSI) Outputs() []string {
	return []string{""}
}

// Calculate returns the RSI of the last bar, in [0, 100].
func (r *RSI) Calculate(history []types.Bar) (Values, error) {
	if len(history) < r.period+1 {
		return nil, insufficient(r.Name(), r.period+1, history)
	}

	avgGain := 0.0
	avgLoss := 0.0

	for i := 1; i < len(history); i++ {
		change := history[i].Close - history[i-1].Close
		gain := max(change, 0)
		loss := max(-change, 0)

		if i <= r.period {
			avgGain += gain / float64(r.period)
			avgLoss += loss / float64(r.period)

			continue
		}

		// Wilder's smoothing
		avgGain = (avgGain*float64(r.period-1) + gain) / float64(r.period)
		avgLoss = (avgLoss*float64(r.period-1) + loss) / float64(r.period)
	}

	var rsi float64

	switch {
	case avgLoss == 0 && avgGain == 0:
		rsi = 50
	case avgLoss == 0:
		rsi = 100
	default:
		rs := avgGain / avgLoss
		rsi = 100 - (100 / (1 + rs))
	}

	return Values{"": types.NumberValue(rsi)}, nil
}
