// Package strategy defines the contract between the backtest engine and a trading
// strategy, and ships the reference strategies.
package strategy

import (
	"github.com/go-playground/validator/v10"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/cache"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"
)

// Strategy produces entry signals. bars ends at index, so the strategy only sees the
// past, and snapshot holds the indicators known at index. state is owned by the run and
// reset before it starts.
type Strategy interface {
	Name() string
	RequiredIndicators() []types.IndicatorRequirement
	CheckEntry(bars []types.Bar, snapshot types.IndicatorSnapshot, index int, state cache.Cache) (optional.Option[types.EntrySignal], error)
}

// DefaultConfigProvider supplies engine configuration defaults as YAML. They sit between
// the engine defaults and the caller's overrides.
type DefaultConfigProvider interface {
	DefaultConfig() string
}

// Resetter is implemented by strategies holding internal state between bars.
type Resetter interface {
	Reset()
}

// ExitChecker lets a strategy close a trade early. It is evaluated at the close of every
// bar after the entry, after the take-profit and stop-loss checks.
type ExitChecker interface {
	CheckExit(entry types.TradeEntry, bar types.Bar, snapshot types.IndicatorSnapshot) bool
}

// VersionedStrategy declares the engine versions a strategy works with as a semver
// constraint.
type VersionedStrategy interface {
	EngineVersion() string
}

// Configurable strategies accept their own parameters as YAML. Configure starts from
// the strategy defaults every time; the engine calls it before each run, with an empty
// string when the run has no parameters.
type Configurable interface {
	Configure(params string) error
	// Params returns the current parameters, used for schemas and result snapshots.
	Params() any
}

var validate = validator.New()

// decodeParams decodes YAML over target and validates the result.
func decodeParams(params string, target any) error {
	if params != "" {
		if err := yaml.Unmarshal([]byte(params), target); err != nil {
			return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse strategy params", err)
		}
	}

	if err := validate.Struct(target); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy params", err)
	}

	return nil
}
