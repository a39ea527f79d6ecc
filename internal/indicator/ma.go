package indicator

import (
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

// MA is a simple moving average of closes.
type MA struct {
	period int
}

func NewMA() Indicator {
	return &MA{
		period: 20,
	}
}

func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config expects: period (int).
func (m *MA) Config(params ...any) error {
	period, err := periodParam(params, 0, "period", m.period)
	if err != nil {
		return err
	}

	m.period = period

	return nil
}

func (m *MA) Lookback() int {
	return m.period
}

func (m *MA) Outputs() []string {
	return []string{""}
}

func (m *MA) Calculate(history []types.Bar) (Values, error) {
	if len(history) < m.period {
		return nil, insufficient(m.Name(), m.period, history)
	}

	sum := 0.0
	for _, bar := range history[len(history)-m.period:] {
		sum += bar.Close
	}

	return Values{"": types.NumberValue(sum / float64(m.period))}, nil
}
