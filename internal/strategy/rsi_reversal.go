package strategy

import (
	"fmt"
	"strconv"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/cache"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/moznion/go-optional"
)

const RSIReversalName = "rsi_reversal"

type RSIReversalParams struct {
	Period     int             `yaml:"period" json:"period" jsonschema:"title=Period,minimum=2,default=14" validate:"gte=2"`
	Oversold   float64         `yaml:"oversold" json:"oversold" jsonschema:"title=Oversold,exclusiveMinimum=0,exclusiveMaximum=100,default=30" validate:"gt=0,lt=100"`
	Overbought float64         `yaml:"overbought" json:"overbought" jsonschema:"title=Overbought,exclusiveMinimum=0,exclusiveMaximum=100,default=70" validate:"gt=0,lt=100,gtfield=Oversold"`
	EntryMode  types.EntryMode `yaml:"entry_mode" json:"entry_mode" jsonschema:"title=Entry mode,enum=signal_price,enum=next_open,default=signal_price" validate:"oneof=signal_price next_open"`
}

// RSIReversal buys when the RSI is oversold and sells when it is overbought.
type RSIReversal struct {
	params RSIReversalParams
}

func defaultRSIReversalParams() RSIReversalParams {
	return RSIReversalParams{
		Period:     14,
		Oversold:   30,
		Overbought: 70,
		EntryMode:  types.EntryModeSignalPrice,
	}
}

func NewRSIReversal() Strategy {
	return &RSIReversal{
		params: defaultRSIReversalParams(),
	}
}

func (s *RSIReversal) Name() string {
	return RSIReversalName
}

func (s *RSIReversal) RequiredIndicators() []types.IndicatorRequirement {
	return []types.IndicatorRequirement{
		{Type: types.IndicatorTypeRSI, Key: "rsi", Params: []float64{float64(s.params.Period)}},
	}
}

func (s *RSIReversal) CheckEntry(bars []types.Bar, snapshot types.IndicatorSnapshot, index int, _ cache.Cache) (optional.Option[types.EntrySignal], error) {
	rsi := snapshot.Number("rsi")
	if rsi.IsNone() {
		return optional.None[types.EntrySignal](), nil
	}

	value := rsi.Unwrap()
	bar := bars[index]

	var (
		direction  types.Direction
		reason     string
		confidence float64
	)

	switch {
	case value <= s.params.Oversold:
		direction = types.DirectionCall
		reason = fmt.Sprintf("RSI oversold (value=%.2f)", value)
		confidence = 0.5 + (s.params.Oversold-value)/s.params.Oversold/2
	case value >= s.params.Overbought:
		direction = types.DirectionPut
		reason = fmt.Sprintf("RSI overbought (value=%.2f)", value)
		confidence = 0.5 + (value-s.params.Overbought)/(100-s.params.Overbought)/2
	default:
		return optional.None[types.EntrySignal](), nil
	}

	return optional.Some(types.EntrySignal{
		Direction:  direction,
		Time:       bar.Time,
		Price:      bar.Close,
		EntryMode:  s.params.EntryMode,
		Confidence: min(1, max(0, confidence)),
		Reason:     reason,
		Metadata: map[string]string{
			"rsi": strconv.FormatFloat(value, 'f', 4, 64),
		},
	}), nil
}

func (s *RSIReversal) DefaultConfig() string {
	return `take_profit_pct: 0.6
stop_loss_pct: 0.3
cooldown_bars: 2
`
}

func (s *RSIReversal) EngineVersion() string {
	return "~1.0"
}

// Configure decodes params over the defaults, so an empty string restores them.
func (s *RSIReversal) Configure(params string) error {
	next := defaultRSIReversalParams()
	if err := decodeParams(params, &next); err != nil {
		return err
	}

	s.params = next

	return nil
}

func (s *RSIReversal) Params() any {
	return s.params
}
