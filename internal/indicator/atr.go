package indicator

import (
	"math"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

// ATR is the Average True Range with Wilder smoothing.
type ATR struct {
	period int
}

func NewATR() Indicator {
	return &ATR{
		period: 14,
	}
}

func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Config expects: period (int).
func (a *ATR) Config(params ...any) error {
	period, err := periodParam(params, 0, "period", a.period)
	if err != nil {
		return err
	}

	a.period = period

	return nil
}

func (a *ATR) Lookback() int {
	return a.period*warmupFactor + 1
}

func (a *ATR) Outputs() []string {
	return []string{""}
}

func (a *ATR) Calculate(history []types.Bar) (Values, error) {
	// the first true range needs a previous close
	if len(history) < a.period+1 {
		return nil, insufficient(a.Name(), a.period+1, history)
	}

	atr := 0.0

	for i := 1; i < len(history); i++ {
		tr := trueRange(history[i], history[i-1].Close)

		if i <= a.period {
			atr += tr / float64(a.period)

			continue
		}

		atr = (atr*float64(a.period-1) + tr) / float64(a.period)
	}

	return Values{"": types.NumberValue(atr)}, nil
}

func trueRange(bar types.Bar, prevClose float64) float64 {
	return math.Max(bar.High-bar.Low, math.Max(math.Abs(bar.High-prevClose), math.Abs(bar.Low-prevClose)))
}
