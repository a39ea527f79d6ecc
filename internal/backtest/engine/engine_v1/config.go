package engine

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/analysis"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/strategy"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/utils"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"
)

type StakeMode string

const (
	StakeModeFixed      StakeMode = "fixed"
	StakeModePercentage StakeMode = "percentage"
)

// BacktestEngineV1Config is the configuration of one backtest run.
type BacktestEngineV1Config struct {
	// Asset overrides the symbol reported by the bars.
	Asset string `yaml:"asset" json:"asset" jsonschema:"title=Asset,description=Symbol of the traded asset"`
	// TimeframeSeconds is the bar period. 0 infers it from the bars.
	TimeframeSeconds int64 `yaml:"timeframe_seconds" json:"timeframe_seconds" jsonschema:"title=Timeframe (seconds),minimum=0" validate:"gte=0"`
	// InitialBalance is the starting equity in account currency.
	InitialBalance float64   `yaml:"initial_balance" json:"initial_balance" jsonschema:"title=Initial balance,exclusiveMinimum=0,default=1000" validate:"gt=0"`
	StakeMode      StakeMode `yaml:"stake_mode" json:"stake_mode" jsonschema:"title=Stake mode,enum=fixed,enum=percentage,default=fixed" validate:"oneof=fixed percentage"`
	// StakeAmount is the stake of every trade in fixed mode.
	StakeAmount float64 `yaml:"stake_amount" json:"stake_amount" jsonschema:"title=Stake amount,exclusiveMinimum=0,default=10" validate:"gt=0"`
	// StakePercentage is the share of the current balance staked in percentage mode.
	StakePercentage float64 `yaml:"stake_percentage" json:"stake_percentage" jsonschema:"title=Stake percentage,exclusiveMinimum=0,maximum=100,default=1" validate:"gt=0,lte=100"`
	TakeProfitPct   float64 `yaml:"take_profit_pct" json:"take_profit_pct" jsonschema:"title=Take profit (%),exclusiveMinimum=0,default=1" validate:"gt=0"`
	StopLossPct     float64 `yaml:"stop_loss_pct" json:"stop_loss_pct" jsonschema:"title=Stop loss (%),exclusiveMinimum=0,default=0.5" validate:"gt=0"`
	// CooldownBars blocks new entries for this many bars after an exit.
	CooldownBars int     `yaml:"cooldown_bars" json:"cooldown_bars" jsonschema:"title=Cooldown bars,minimum=0,default=0" validate:"gte=0"`
	Multiplier   float64 `yaml:"multiplier" json:"multiplier" jsonschema:"title=Multiplier,exclusiveMinimum=0,default=1" validate:"gt=0"`
	// MaxTradeBars closes a trade with TIMEOUT after this many bars. 0 disables it.
	MaxTradeBars  int     `yaml:"max_trade_bars" json:"max_trade_bars" jsonschema:"title=Maximum bars in trade,minimum=0,default=0" validate:"gte=0"`
	CommissionPct float64 `yaml:"commission_pct" json:"commission_pct" jsonschema:"title=Commission (% of stake),minimum=0,default=0" validate:"gte=0,lt=100"`
	// DecimalPrecision is the number of decimals PnL is rounded to.
	DecimalPrecision int `yaml:"decimal_precision" json:"decimal_precision" jsonschema:"title=Decimal precision,minimum=0,maximum=10,default=2" validate:"gte=0,lte=10"`
	// Indicators are computed in addition to the strategy's own requirements.
	Indicators []types.IndicatorRequirement `yaml:"indicators,omitempty" json:"indicators,omitempty" jsonschema:"title=Indicators" validate:"dive"`
	StartTime  optional.Option[time.Time]   `yaml:"-" json:"start_time,omitempty" jsonschema:"title=Start time"`
	EndTime    optional.Option[time.Time]   `yaml:"-" json:"end_time,omitempty" jsonschema:"title=End time"`
	// RecordCandles keeps every bar and snapshot in the result.
	RecordCandles bool `yaml:"record_candles" json:"record_candles" jsonschema:"title=Record candles,default=true"`
	// ProgressInterval is the number of bars between progress callbacks.
	ProgressInterval int `yaml:"progress_interval" json:"progress_interval" jsonschema:"title=Progress interval,minimum=1,default=100" validate:"gte=1"`
	// MinTrades is the smallest ledger walk-forward and out-of-sample run on.
	MinTrades   int                        `yaml:"min_trades" json:"min_trades" jsonschema:"title=Minimum trades for analysis,minimum=1,default=20" validate:"gte=1"`
	MonteCarlo  analysis.MonteCarloConfig  `yaml:"monte_carlo" json:"monte_carlo" jsonschema:"title=Monte Carlo"`
	WalkForward analysis.WalkForwardConfig `yaml:"walk_forward" json:"walk_forward" jsonschema:"title=Walk-forward"`
	OutOfSample analysis.OutOfSampleConfig `yaml:"out_of_sample" json:"out_of_sample" jsonschema:"title=Out-of-sample"`
	// StrategyParams are handed to strategies implementing strategy.Configurable.
	StrategyParams map[string]any `yaml:"strategy_params,omitempty" json:"strategy_params,omitempty" jsonschema:"title=Strategy parameters"`
}

// DefaultConfig returns the engine defaults, the first configuration layer.
func DefaultConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Asset:            "",
		TimeframeSeconds: 0,
		InitialBalance:   1000,
		StakeMode:        StakeModeFixed,
		StakeAmount:      10,
		StakePercentage:  1,
		TakeProfitPct:    1,
		StopLossPct:      0.5,
		CooldownBars:     0,
		Multiplier:       1,
		MaxTradeBars:     0,
		CommissionPct:    0,
		DecimalPrecision: 2,
		Indicators:       nil,
		StartTime:        optional.None[time.Time](),
		EndTime:          optional.None[time.Time](),
		RecordCandles:    true,
		ProgressInterval: 100,
		MinTrades:        20,
		MonteCarlo: analysis.MonteCarloConfig{
			Enabled:     false,
			Simulations: analysis.DefaultSimulations,
			Seed:        optional.None[uint64](),
			MinTrades:   analysis.DefaultMCMinTrades,
		},
		WalkForward: analysis.WalkForwardConfig{
			Enabled:    false,
			Windows:    analysis.DefaultWindows,
			TrainRatio: analysis.DefaultTrainRatio,
		},
		OutOfSample: analysis.OutOfSampleConfig{
			Enabled:       false,
			InSampleRatio: analysis.DefaultInSampleRatio,
		},
		StrategyParams: nil,
	}
}

// ResolveConfig merges the engine defaults, the strategy's YAML defaults and the
// given overrides in that order, later layers winning, then validates the result.
func ResolveConfig(s strategy.Strategy, overrides ...string) (BacktestEngineV1Config, error) {
	config := DefaultConfig()

	layers := make([]string, 0, len(overrides)+1)
	if provider, ok := s.(strategy.DefaultConfigProvider); ok {
		layers = append(layers, provider.DefaultConfig())
	}

	layers = append(layers, overrides...)

	for i, layer := range layers {
		if err := yaml.Unmarshal([]byte(layer), &config); err != nil {
			return config, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse configuration layer %d", i)
		}
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

var validate = validator.New()

// Validate checks field ranges and the rules between fields.
func (c BacktestEngineV1Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			field := validationErrors[0]

			return errors.Wrapf(fieldErrorCode(field.StructField()), err,
				"invalid %s: failed %s validation", field.Namespace(), field.Tag())
		}

		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if c.StopLossPct >= c.TakeProfitPct {
		return errors.Newf(errors.ErrCodeInvalidStopLoss,
			"stop loss %.4f%% must be below take profit %.4f%%", c.StopLossPct, c.TakeProfitPct)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"end time %s is before start time %s", c.EndTime.Unwrap(), c.StartTime.Unwrap())
	}

	return nil
}

func fieldErrorCode(field string) errors.ErrorCode {
	switch field {
	case "TakeProfitPct":
		return errors.ErrCodeInvalidTakeProfit
	case "StopLossPct":
		return errors.ErrCodeInvalidStopLoss
	case "StakeMode", "StakeAmount", "StakePercentage", "InitialBalance":
		return errors.ErrCodeInvalidStake
	case "TimeframeSeconds":
		return errors.ErrCodeInvalidTimeframe
	case "Multiplier":
		return errors.ErrCodeInvalidMultiplier
	case "TrainRatio", "InSampleRatio":
		return errors.ErrCodeInvalidRatio
	case "Type":
		return errors.ErrCodeInvalidType
	default:
		return errors.ErrCodeInvalidConfiguration
	}
}

// StrategyParamsYAML encodes StrategyParams for strategy.Configurable.
func (c BacktestEngineV1Config) StrategyParamsYAML() (string, error) {
	if len(c.StrategyParams) == 0 {
		return "", nil
	}

	data, err := yaml.Marshal(c.StrategyParams)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to encode strategy params", err)
	}

	return string(data), nil
}

type configAlias BacktestEngineV1Config

type configYAML struct {
	configAlias `yaml:",inline"`
	StartTime   *time.Time `yaml:"start_time,omitempty"`
	EndTime     *time.Time `yaml:"end_time,omitempty"`
}

func timePtr(o optional.Option[time.Time]) *time.Time {
	if o.IsNone() {
		return nil
	}

	t := o.Unwrap()

	return &t
}

func timeOption(t *time.Time) optional.Option[time.Time] {
	if t == nil {
		return optional.None[time.Time]()
	}

	return optional.Some(*t)
}

// UnmarshalYAML decodes on top of the current values so configuration layers merge.
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	raw := configYAML{
		configAlias: configAlias(*c),
		StartTime:   timePtr(c.StartTime),
		EndTime:     timePtr(c.EndTime),
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	*c = BacktestEngineV1Config(raw.configAlias)
	c.StartTime = timeOption(raw.StartTime)
	c.EndTime = timeOption(raw.EndTime)

	return nil
}

func (c BacktestEngineV1Config) MarshalYAML() (any, error) {
	return configYAML{
		configAlias: configAlias(c),
		StartTime:   timePtr(c.StartTime),
		EndTime:     timePtr(c.EndTime),
	}, nil
}

// GenerateSchema generates the JSON schema of the configuration.
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	return utils.Schema(c, "backtest-engine-v1-config", "Configuration schema for BacktestEngineV1"), nil
}

// GenerateSchemaJSON returns GenerateSchema encoded as JSON.
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := utils.SchemaJSON(c, "backtest-engine-v1-config", "Configuration schema for BacktestEngineV1")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}

	return schema, nil
}
