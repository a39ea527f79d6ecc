package indicator

import (
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
)

// MACD is the difference of a fast and a slow EMA with a signal EMA on top.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12,
		slowPeriod:   26,
		signalPeriod: 9,
	}
}

func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config expects: fastPeriod (int), slowPeriod (int), signalPeriod (int). Missing
// trailing parameters keep their current value.
func (m *MACD) Config(params ...any) error {
	fast, err := periodParam(params, 0, "fastPeriod", m.fastPeriod)
	if err != nil {
		return err
	}

	slow, err := periodParam(params, 1, "slowPeriod", m.slowPeriod)
	if err != nil {
		return err
	}

	signal, err := periodParam(params, 2, "signalPeriod", m.signalPeriod)
	if err != nil {
		return err
	}

	if fast >= slow {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod (%d) must be smaller than slowPeriod (%d)", fast, slow)
	}

	m.fastPeriod = fast
	m.slowPeriod = slow
	m.signalPeriod = signal

	return nil
}

func (m *MACD) Lookback() int {
	return (m.slowPeriod + m.signalPeriod) * warmupFactor
}

func (m *MACD) Outputs() []string {
	return []string{"", "_signal", "_histogram", "_bullish"}
}

// Calculate returns the MACD line, its signal line, the histogram and whether the
// MACD line is above the signal line.
func (m *MACD) Calculate(history []types.Bar) (Values, error) {
	required := m.slowPeriod + m.signalPeriod - 1
	if len(history) < required {
		return nil, insufficient(m.Name(), required, history)
	}

	values := closes(history)
	fast := emaSeries(values, m.fastPeriod)
	slow := emaSeries(values, m.slowPeriod)

	// align the fast series with the slow one, both end at the last bar
	offset := len(fast) - len(slow)
	line := make([]float64, len(slow))

	for i := range slow {
		line[i] = fast[i+offset] - slow[i]
	}

	signal := emaSeries(line, m.signalPeriod)
	macd := line[len(line)-1]
	sig := signal[len(signal)-1]

	return Values{
		"":           types.NumberValue(macd),
		"_signal":    types.NumberValue(sig),
		"_histogram": types.NumberValue(macd - sig),
		"_bullish":   types.BoolValue(macd > sig),
	}, nil
}
