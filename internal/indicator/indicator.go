package indicator

import (
	"math"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/moznion/go-optional"
)

// warmupFactor scales the period of recursive indicators (EMA, RSI, ATR, MACD) into the
// number of trailing bars they read, so the smoothing has converged by the last bar.
const warmupFactor = 4

// Values maps an output suffix to its value. The empty suffix is the primary output and
// is stored under the requirement key itself.
type Values map[string]types.IndicatorValue

// Indicator interface defines methods that any technical indicator must implement.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config applies positional parameters. Numbers may be passed as int or float64.
	Config(params ...any) error
	// Lookback is the number of trailing bars, including the current one, Calculate reads.
	Lookback() int
	// Outputs lists the suffixes Calculate produces.
	Outputs() []string
	// Calculate computes the values at the last bar of history. It returns an
	// InsufficientDataError while the indicator is warming up.
	Calculate(history []types.Bar) (Values, error)
}

// intParam reads an integer parameter at position i. Integral float64 values are accepted
// because requirement params are decoded from YAML as floats.
func intParam(params []any, i int, name string) (optional.Option[int], error) {
	if i >= len(params) {
		return optional.None[int](), nil
	}

	switch v := params[i].(type) {
	case int:
		return optional.Some(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, errors.Newf(errors.ErrCodeInvalidType, "%s must be an integer, got %v", name, v)
		}

		return optional.Some(int(v)), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int", name)
	}
}

// floatParam reads a numeric parameter at position i.
func floatParam(params []any, i int, name string) (optional.Option[float64], error) {
	if i >= len(params) {
		return optional.None[float64](), nil
	}

	switch v := params[i].(type) {
	case int:
		return optional.Some(float64(v)), nil
	case float64:
		return optional.Some(v), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected float64", name)
	}
}

// periodParam reads a positive period at position i, falling back to current.
func periodParam(params []any, i int, name string, current int) (int, error) {
	p, err := intParam(params, i, name)
	if err != nil {
		return 0, err
	}

	period := p.TakeOr(current)
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, period)
	}

	return period, nil
}

func closes(bars []types.Bar) []float64 {
	values := make([]float64, len(bars))
	for i, b := range bars {
		values[i] = b.Close
	}

	return values
}

func insufficient(name types.IndicatorType, required int, history []types.Bar) error {
	symbol := ""
	if len(history) > 0 {
		symbol = history[len(history)-1].Symbol
	}

	return errors.NewInsufficientDataErrorf(required, len(history), symbol,
		"%s needs %d bars, got %d", name, required, len(history))
}

// emaSeries returns the exponential moving average of values seeded with the simple
// average of the first period values. The result has len(values)-period+1 entries.
func emaSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}

	out := make([]float64, 0, len(values)-period+1)
	out = append(out, seed/float64(period))

	alpha := 2.0 / float64(period+1)
	for _, v := range values[period:] {
		prev := out[len(out)-1]
		out = append(out, alpha*v+(1-alpha)*prev)
	}

	return out
}
