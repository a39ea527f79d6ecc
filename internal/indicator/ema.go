package indicator

import (
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

// EMA is an exponential moving average of closes seeded with a simple average.
type EMA struct {
	period int
}

func NewEMA() Indicator {
	return &EMA{
		period: 20, // Default period
	}
}

func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config expects: period (int).
func (e *EMA) Config(params ...any) error {
	period, err := periodParam(params, 0, "period", e.period)
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

func (e *EMA) Lookback() int {
	return e.period * warmupFactor
}

func (e *EMA) Outputs() []string {
	return []string{""}
}

func (e *EMA) Calculate(history []types.Bar) (Values, error) {
	if len(history) < e.period {
		return nil, insufficient(e.Name(), e.period, history)
	}

	series := emaSeries(closes(history), e.period)

	return Values{"": types.NumberValue(series[len(series)-1])}, nil
}
