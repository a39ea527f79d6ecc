package types

import (
	"encoding/json"
	"sort"

	"github.com/moznion/go-optional"
)

type IndicatorType string

const (
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeATR            IndicatorType = "atr"
	IndicatorTypeMA             IndicatorType = "ma"
)

// IndicatorValueKind tags the variant held by an IndicatorValue.
type IndicatorValueKind string

const (
	IndicatorValueUnavailable IndicatorValueKind = "unavailable"
	IndicatorValueNumber      IndicatorValueKind = "number"
	IndicatorValueBool        IndicatorValueKind = "bool"
)

// IndicatorValue is a tagged numeric/boolean value. The zero value is unavailable,
// which is what an indicator reports while it is still warming up.
type IndicatorValue struct {
	Kind    IndicatorValueKind
	number  float64
	boolean bool
}

// NumberValue creates a numeric indicator value.
func NumberValue(v float64) IndicatorValue {
	return IndicatorValue{Kind: IndicatorValueNumber, number: v}
}

// BoolValue creates a boolean indicator value.
func BoolValue(v bool) IndicatorValue {
	return IndicatorValue{Kind: IndicatorValueBool, boolean: v}
}

// UnavailableValue creates an indicator value without data.
func UnavailableValue() IndicatorValue {
	return IndicatorValue{Kind: IndicatorValueUnavailable}
}

// IsAvailable returns false for the unavailable variant.
func (v IndicatorValue) IsAvailable() bool {
	return v.Kind == IndicatorValueNumber || v.Kind == IndicatorValueBool
}

// Number returns the numeric payload, or None when the value is not a number.
func (v IndicatorValue) Number() optional.Option[float64] {
	if v.Kind != IndicatorValueNumber {
		return optional.None[float64]()
	}

	return optional.Some(v.number)
}

// Bool returns the boolean payload, or None when the value is not a bool.
func (v IndicatorValue) Bool() optional.Option[bool] {
	if v.Kind != IndicatorValueBool {
		return optional.None[bool]()
	}

	return optional.Some(v.boolean)
}

// MarshalJSON encodes numbers and bools as JSON scalars and the unavailable variant as null.
func (v IndicatorValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case IndicatorValueNumber:
		return json.Marshal(v.number)
	case IndicatorValueBool:
		return json.Marshal(v.boolean)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *IndicatorValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch typed := raw.(type) {
	case float64:
		*v = NumberValue(typed)
	case bool:
		*v = BoolValue(typed)
	default:
		*v = UnavailableValue()
	}

	return nil
}

// IndicatorSnapshot holds every indicator value known at one bar index.
type IndicatorSnapshot map[string]IndicatorValue

// Get returns the raw value for name. Missing keys are reported as unavailable.
func (s IndicatorSnapshot) Get(name string) IndicatorValue {
	v, ok := s[name]
	if !ok {
		return UnavailableValue()
	}

	return v
}

// Number returns the numeric value for name or None.
func (s IndicatorSnapshot) Number(name string) optional.Option[float64] {
	return s.Get(name).Number()
}

// Bool returns the boolean value for name or None.
func (s IndicatorSnapshot) Bool(name string) optional.Option[bool] {
	return s.Get(name).Bool()
}

// Keys returns the snapshot keys in sorted order.
func (s IndicatorSnapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// IndicatorRequirement asks the indicator cache to compute one indicator.
type IndicatorRequirement struct {
	// Type selects the indicator from the registry.
	Type IndicatorType `yaml:"type" json:"type" jsonschema:"title=Type,enum=rsi,enum=macd,enum=bollinger_bands,enum=ema,enum=atr,enum=ma" validate:"required"`
	// Key is the snapshot key prefix. Defaults to Type.
	Key string `yaml:"key,omitempty" json:"key,omitempty" jsonschema:"title=Key,description=Snapshot key prefix (defaults to the indicator type)"`
	// Params are positional parameters passed to the indicator's Config.
	Params []float64 `yaml:"params,omitempty" json:"params,omitempty" jsonschema:"title=Params,description=Positional indicator parameters such as the period"`
}

// SnapshotKey returns the key prefix used in snapshots.
func (r IndicatorRequirement) SnapshotKey() string {
	if r.Key != "" {
		return r.Key
	}

	return string(r.Type)
}
