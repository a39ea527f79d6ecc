package indicator

import (
	"math"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
)

// BollingerBands is a simple moving average with bands at a multiple of the
// population standard deviation.
type BollingerBands struct {
	period int
	stdDev float64
}

func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,
		stdDev: 2.0,
	}
}

func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config expects: period (int), stdDev multiplier (float64, optional).
func (bb *BollingerBands) Config(params ...any) error {
	period, err := periodParam(params, 0, "period", bb.period)
	if err != nil {
		return err
	}

	stdDev, err := floatParam(params, 1, "stdDev")
	if err != nil {
		return err
	}

	multiplier := stdDev.TakeOr(bb.stdDev)
	if multiplier <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "stdDev must be positive, got %v", multiplier)
	}

	bb.period = period
	bb.stdDev = multiplier

	return nil
}

func (bb *BollingerBands) Lookback() int {
	return bb.period
}

func (bb *BollingerBands) Outputs() []string {
	return []string{"_upper", "_middle", "_lower", "_width"}
}

// Calculate returns the upper, middle and lower bands and the band width relative to the middle.
func (bb *BollingerBands) Calculate(history []types.Bar) (Values, error) {
	if len(history) < bb.period {
		return nil, insufficient(bb.Name(), bb.period, history)
	}

	window := history[len(history)-bb.period:]

	sum := 0.0
	for _, bar := range window {
		sum += bar.Close
	}

	middle := sum / float64(bb.period)

	variance := 0.0
	for _, bar := range window {
		variance += (bar.Close - middle) * (bar.Close - middle)
	}

	sd := math.Sqrt(variance / float64(bb.period))
	upper := middle + bb.stdDev*sd
	lower := middle - bb.stdDev*sd

	width := 0.0
	if middle != 0 {
		width = (upper - lower) / middle
	}

	return Values{
		"_upper":  types.NumberValue(upper),
		"_middle": types.NumberValue(middle),
		"_lower":  types.NumberValue(lower),
		"_width":  types.NumberValue(width),
	}, nil
}
