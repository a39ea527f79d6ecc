package engine

import (
	"context"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/datasource"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/strategy"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/moznion/go-optional"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called when the entire backtest begins.
type OnBacktestStartCallback func(totalStrategies int, totalConfigs int, totalDataFiles int) error

// OnBacktestEndCallback is called when the entire backtest completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnStrategyStartCallback is called when a strategy iteration begins.
type OnStrategyStartCallback func(strategyIndex int, strategyName string, totalStrategies int) error

// OnStrategyEndCallback is called when a strategy iteration ends.
type OnStrategyEndCallback func(strategyIndex int, strategyName string)

// OnRunStartCallback is called when processing of a config+data file combination begins.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, configIndex int, configName string, dataFileIndex int, dataFilePath string, totalDataPoints int) error

// OnRunEndCallback is called when processing of a config+data file combination ends.
type OnRunEndCallback func(configIndex int, configName string, dataFileIndex int, dataFilePath string, resultFolderPath string, result *types.BacktestResult)

// OnProcessDataCallback is called every progress interval while bars are replayed.
// It only observes the run.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnStrategyStart *OnStrategyStartCallback
	OnStrategyEnd   *OnStrategyEndCallback
	OnRunStart      *OnRunStartCallback
	OnRunEnd        *OnRunEndCallback
	OnProcessData   *OnProcessDataCallback
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given configuration. The YAML overrides the engine
	// and strategy defaults.
	Initialize(config string) error
	// SetConfigPath sets the path to the run configuration files. Accepts glob patterns.
	// Every file is one more configuration layer and one more run per strategy and data file.
	SetConfigPath(path string) error
	// SetConfigContent sets run configurations directly from string content.
	// This is an alternative to SetConfigPath for programmatic API usage.
	SetConfigContent(configs []string) error
	// SetDataPath sets the path to the market data files (csv or parquet).
	// Accepts glob patterns for batch loading (e.g., "data/*.parquet")
	SetDataPath(path string) error
	// SetResultsFolder sets the output directory for saving backtest results.
	// The results folder will be structured as: <strategy>/<config>/[<start>_<end>]/<data file>
	SetResultsFolder(folder string) error
	// LoadStrategy loads a strategy. Could be called multiple times to load multiple strategies.
	LoadStrategy(strategy strategy.Strategy) error
	// LoadStrategyByName loads a strategy from the engine's strategy registry.
	LoadStrategyByName(name string) error
	// SetDataSource sets the data source for the engine.
	SetDataSource(dataSource datasource.DataSource) error
	// Backtest replays bars through the strategy and returns the result of the run.
	// It performs no I/O.
	Backtest(ctx context.Context, bars []types.Bar, strategy strategy.Strategy, onProcessData optional.Option[OnProcessDataCallback]) (*types.BacktestResult, error)
	// Run runs every loaded strategy against every configuration and data file and
	// writes the results. The context can be used to cancel the backtest operation.
	// Use LifecycleCallbacks to receive notifications at different phases of the backtest.
	Run(ctx context.Context, callbacks LifecycleCallbacks) error
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
