package strategy

import (
	"fmt"
	"strconv"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/cache"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/moznion/go-optional"
)

const (
	BollingerReversionName = "bollinger_reversion"

	// excursionKey holds the direction already traded in the current band excursion
	excursionKey = "bollinger_reversion.excursion"
)

type BollingerReversionParams struct {
	Period     int             `yaml:"period" json:"period" jsonschema:"title=Period,minimum=2,default=20" validate:"gte=2"`
	StdDev     float64         `yaml:"std_dev" json:"std_dev" jsonschema:"title=Standard deviations,exclusiveMinimum=0,default=2" validate:"gt=0"`
	MiddleExit bool            `yaml:"middle_exit" json:"middle_exit" jsonschema:"title=Exit at middle band,default=true"`
	EntryMode  types.EntryMode `yaml:"entry_mode" json:"entry_mode" jsonschema:"title=Entry mode,enum=signal_price,enum=next_open,default=next_open" validate:"oneof=signal_price next_open"`
}

// BollingerReversion fades closes outside the Bollinger Bands and optionally exits once
// price is back at the middle band. It signals once per excursion outside a band.
type BollingerReversion struct {
	params BollingerReversionParams
	// excursions counts band excursions seen in the current run
	excursions int
}

func defaultBollingerReversionParams() BollingerReversionParams {
	return BollingerReversionParams{
		Period:     20,
		StdDev:     2,
		MiddleExit: true,
		EntryMode:  types.EntryModeNextOpen,
	}
}

func NewBollingerReversion() Strategy {
	return &BollingerReversion{
		params:     defaultBollingerReversionParams(),
		excursions: 0,
	}
}

func (s *BollingerReversion) Name() string {
	return BollingerReversionName
}

func (s *BollingerReversion) RequiredIndicators() []types.IndicatorRequirement {
	return []types.IndicatorRequirement{
		{Type: types.IndicatorTypeBollingerBands, Key: "bb", Params: []float64{float64(s.params.Period), s.params.StdDev}},
	}
}

func (s *BollingerReversion) CheckEntry(bars []types.Bar, snapshot types.IndicatorSnapshot, index int, state cache.Cache) (optional.Option[types.EntrySignal], error) {
	upper := snapshot.Number("bb_upper")
	lower := snapshot.Number("bb_lower")

	if upper.IsNone() || lower.IsNone() {
		return optional.None[types.EntrySignal](), nil
	}

	bar := bars[index]

	var (
		direction types.Direction
		band      float64
	)

	switch {
	case bar.Close <= lower.Unwrap():
		direction = types.DirectionCall
		band = lower.Unwrap()
	case bar.Close >= upper.Unwrap():
		direction = types.DirectionPut
		band = upper.Unwrap()
	default:
		// back inside the bands, the next excursion may trade again
		state.Delete(excursionKey)

		return optional.None[types.EntrySignal](), nil
	}

	if cache.GetAs[types.Direction](state, excursionKey).TakeOr("") == direction {
		return optional.None[types.EntrySignal](), nil
	}

	state.Set(excursionKey, direction)
	s.excursions++

	width := upper.Unwrap() - lower.Unwrap()
	confidence := 0.5
	if width > 0 {
		distance := bar.Close - band
		if distance < 0 {
			distance = -distance
		}

		confidence = min(1, 0.5+distance/width)
	}

	return optional.Some(types.EntrySignal{
		Direction:  direction,
		Time:       bar.Time,
		Price:      bar.Close,
		EntryMode:  s.params.EntryMode,
		Confidence: confidence,
		Reason:     fmt.Sprintf("close %.5f outside band %.5f", bar.Close, band),
		Metadata: map[string]string{
			"band":      strconv.FormatFloat(band, 'f', 5, 64),
			"excursion": strconv.Itoa(s.excursions),
		},
	}), nil
}

// CheckExit closes the trade once the close is back at the middle band.
func (s *BollingerReversion) CheckExit(entry types.TradeEntry, bar types.Bar, snapshot types.IndicatorSnapshot) bool {
	if !s.params.MiddleExit {
		return false
	}

	middle := snapshot.Number("bb_middle")
	if middle.IsNone() {
		return false
	}

	if entry.Signal.Direction == types.DirectionPut {
		return bar.Close <= middle.Unwrap()
	}

	return bar.Close >= middle.Unwrap()
}

func (s *BollingerReversion) Reset() {
	s.excursions = 0
}

func (s *BollingerReversion) DefaultConfig() string {
	return `take_profit_pct: 1.0
stop_loss_pct: 0.5
cooldown_bars: 1
max_trade_bars: 30
`
}

func (s *BollingerReversion) EngineVersion() string {
	return ">= 1.0.0, < 2.0.0"
}

func (s *BollingerReversion) Configure(params string) error {
	next := defaultBollingerReversionParams()
	if err := decodeParams(params, &next); err != nil {
		return err
	}

	s.params = next

	return nil
}

func (s *BollingerReversion) Params() any {
	return s.params
}
