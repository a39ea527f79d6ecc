package analysis

import (
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSimulations   = 1000
	DefaultMCMinTrades   = 10
	DefaultWindows       = 5
	DefaultTrainRatio    = 0.7
	DefaultInSampleRatio = 0.7
	// ProfitFactorCap replaces an infinite profit factor when averaging windows.
	ProfitFactorCap = 10.0
)

type MonteCarloConfig struct {
	Enabled     bool `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,default=false"`
	Simulations int  `yaml:"simulations" json:"simulations" jsonschema:"title=Simulations,minimum=1,default=1000" validate:"gte=0"`
	// Seed makes the shuffles reproducible. A seed is drawn and reported when absent.
	Seed      optional.Option[uint64] `yaml:"seed,omitempty" json:"seed,omitempty" jsonschema:"title=Seed"`
	MinTrades int                     `yaml:"min_trades" json:"min_trades" jsonschema:"title=Minimum trades,minimum=1,default=10" validate:"gte=0"`
}

type WalkForwardConfig struct {
	Enabled    bool    `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,default=false"`
	Windows    int     `yaml:"windows" json:"windows" jsonschema:"title=Windows,minimum=1,default=5" validate:"gte=0"`
	TrainRatio float64 `yaml:"train_ratio" json:"train_ratio" jsonschema:"title=Train ratio,exclusiveMinimum=0,exclusiveMaximum=1,default=0.7" validate:"gte=0,lt=1"`
}

type OutOfSampleConfig struct {
	Enabled       bool    `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,default=false"`
	InSampleRatio float64 `yaml:"in_sample_ratio" json:"in_sample_ratio" jsonschema:"title=In-sample ratio,exclusiveMinimum=0,exclusiveMaximum=1,default=0.7" validate:"gte=0,lt=1"`
}

// splitIndex returns floor(n*ratio), tolerant of ratios like 0.7 that are not exact in binary.
func splitIndex(n int, ratio float64) int {
	return int(float64(n)*ratio + 1e-9)
}

type monteCarloConfigYAML struct {
	Enabled     bool    `yaml:"enabled"`
	Simulations int     `yaml:"simulations"`
	Seed        *uint64 `yaml:"seed,omitempty"`
	MinTrades   int     `yaml:"min_trades"`
}

// UnmarshalYAML decodes the optional seed, which yaml cannot map onto optional.Option.
func (c *MonteCarloConfig) UnmarshalYAML(value *yaml.Node) error {
	raw := monteCarloConfigYAML{
		Enabled:     c.Enabled,
		Simulations: c.Simulations,
		Seed:        c.Seed.UnwrapAsPtr(),
		MinTrades:   c.MinTrades,
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Enabled = raw.Enabled
	c.Simulations = raw.Simulations
	c.MinTrades = raw.MinTrades

	c.Seed = optional.None[uint64]()
	if raw.Seed != nil {
		c.Seed = optional.Some(*raw.Seed)
	}

	return nil
}

func (c MonteCarloConfig) MarshalYAML() (any, error) {
	return monteCarloConfigYAML{
		Enabled:     c.Enabled,
		Simulations: c.Simulations,
		Seed:        c.Seed.UnwrapAsPtr(),
		MinTrades:   c.MinTrades,
	}, nil
}
