package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/analysis"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/cache"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/datasource"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/writer"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/indicator"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/logger"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/metrics"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/strategy"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/version"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// BacktestEngineV1 replays bars through strategies. A single engine runs one backtest
// at a time; parallel runs each need their own engine.
type BacktestEngineV1 struct {
	// config is the caller's configuration layer given to Initialize
	config              string
	strategies          []strategy.Strategy
	strategyConfigPaths []string
	strategyConfigs     []string
	dataPaths           []string
	resultsFolder       string
	log                 *logger.Logger
	indicatorRegistry   indicator.IndicatorRegistry
	strategyRegistry    *strategy.Registry
	datasource          datasource.DataSource
	resultWriter        writer.ResultWriter
	cache               cache.Cache
}

func NewBacktestEngineV1() engine.Engine {
	return NewBacktestEngineV1WithLogger(nil)
}

// NewBacktestEngineV1WithLogger creates an engine logging to log. A nil logger is
// replaced by a production logger on Initialize.
func NewBacktestEngineV1WithLogger(log *logger.Logger) *BacktestEngineV1 {
	return &BacktestEngineV1{
		config:              "",
		strategies:          nil,
		strategyConfigPaths: nil,
		strategyConfigs:     nil,
		dataPaths:           nil,
		resultsFolder:       "",
		log:                 log,
		indicatorRegistry:   nil,
		strategyRegistry:    nil,
		datasource:          nil,
		resultWriter:        nil,
		cache:               cache.NewCacheV1(),
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	// parse the config to fail early, strategies add their defaults below it later
	parsed := DefaultConfig()
	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse engine configuration", err)
	}

	b.config = config

	// initialize the logger
	if b.log == nil {
		var loggerError error

		b.log, loggerError = logger.NewLogger()
		if loggerError != nil {
			return loggerError
		}
	}

	b.log.Debug("Backtest engine initialized",
		zap.String("config", config),
		zap.String("version", version.GetVersion()),
	)

	// initialize the registries
	b.indicatorRegistry = indicator.NewDefaultIndicatorRegistry()
	b.strategyRegistry = strategy.NewDefaultRegistry()
	b.resultWriter = writer.NewResultWriter(b.log)

	return nil
}

// LoadStrategy implements engine.Engine.
func (b *BacktestEngineV1) LoadStrategy(s strategy.Strategy) error {
	if s == nil {
		return errors.New(errors.ErrCodeStrategyNotLoaded, "strategy is nil")
	}

	b.strategies = append(b.strategies, s)
	b.logDebug("Strategy loaded",
		zap.String("strategy", s.Name()),
		zap.Int("total_strategies", len(b.strategies)),
	)

	return nil
}

// LoadStrategyByName implements engine.Engine.
func (b *BacktestEngineV1) LoadStrategyByName(name string) error {
	if b.strategyRegistry == nil {
		return errors.New(errors.ErrCodeBacktestNotInitialized, "engine is not initialized")
	}

	s, err := b.strategyRegistry.Get(name)
	if err != nil {
		return err
	}

	return b.LoadStrategy(s)
}

// SetConfigPath implements engine.Engine.
func (b *BacktestEngineV1) SetConfigPath(path string) error {
	// use glob to get all the files that match the path
	files, err := filepath.Glob(path)
	if err != nil {
		b.logError("Failed to set config path",
			zap.String("path", path),
			zap.Error(err),
		)

		return err
	}

	b.strategyConfigPaths = files
	b.strategyConfigs = nil
	b.logDebug("Config paths set",
		zap.Strings("files", files),
	)

	return nil
}

// SetConfigContent implements engine.Engine.
func (b *BacktestEngineV1) SetConfigContent(configs []string) error {
	b.strategyConfigs = configs
	b.strategyConfigPaths = nil
	b.logDebug("Config content set",
		zap.Int("count", len(configs)),
	)

	return nil
}

// SetDataPath implements engine.Engine.
func (b *BacktestEngineV1) SetDataPath(path string) error {
	// use glob to get all the files that match the path
	files, err := filepath.Glob(path)
	if err != nil {
		b.logError("Failed to set data path",
			zap.String("path", path),
			zap.Error(err),
		)

		return err
	}

	// Convert all paths to absolute paths
	absolutePaths := make([]string, len(files))

	for i, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			b.logError("Failed to get absolute path",
				zap.String("path", file),
				zap.Error(err),
			)

			return err
		}

		absolutePaths[i] = absPath
	}

	b.dataPaths = absolutePaths
	b.logDebug("Data paths set",
		zap.Strings("files", absolutePaths),
	)

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder
	b.logDebug("Results folder set",
		zap.String("folder", folder),
	)

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(datasource datasource.DataSource) error {
	b.datasource = datasource

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := DefaultConfig()

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

// Backtest implements engine.Engine.
func (b *BacktestEngineV1) Backtest(
	ctx context.Context,
	bars []types.Bar,
	s strategy.Strategy,
	onProcessData optional.Option[engine.OnProcessDataCallback],
) (*types.BacktestResult, error) {
	if b.log == nil || b.indicatorRegistry == nil {
		return nil, errors.New(errors.ErrCodeBacktestNotInitialized, "engine is not initialized")
	}

	config, err := ResolveConfig(s, b.config)
	if err != nil {
		return nil, err
	}

	return b.backtest(ctx, uuid.New().String(), bars, s, config, onProcessData)
}

// backtest runs the replay loop with a resolved configuration.
func (b *BacktestEngineV1) backtest(
	ctx context.Context,
	runID string,
	bars []types.Bar,
	s strategy.Strategy,
	config BacktestEngineV1Config,
	onProcessData optional.Option[engine.OnProcessDataCallback],
) (*types.BacktestResult, error) {
	startedAt := time.Now().UTC()

	if err := b.prepareStrategy(s, config); err != nil {
		return nil, err
	}

	timeframe := config.TimeframeSeconds
	if timeframe == 0 && len(bars) > 0 {
		timeframe = bars[0].TimeframeSeconds
	}

	if timeframe == 0 {
		timeframe = datasource.InferTimeframe(bars)
	}

	if timeframe <= 0 && len(bars) > 1 {
		return nil, errors.New(errors.ErrCodeInvalidTimeframe, "timeframe could not be determined from the bars")
	}

	config.TimeframeSeconds = timeframe

	asset := config.Asset
	if asset == "" && len(bars) > 0 {
		asset = bars[0].Symbol
	}

	requirements, err := mergeRequirements(s.RequiredIndicators(), config.Indicators)
	if err != nil {
		return nil, err
	}

	snapshots, err := indicator.NewSnapshotCache(bars, b.indicatorRegistry, requirements)
	if err != nil {
		return nil, err
	}

	// no state from a previous run may leak into this one
	if resetter, ok := s.(strategy.Resetter); ok {
		resetter.Reset()
	}

	b.cache.Reset()

	runLog := b.log.With(
		zap.String("run_id", runID),
		zap.String("strategy", s.Name()),
		zap.String("asset", asset),
	)
	runLog.Info("Backtest started", zap.Int("bars", len(bars)))

	state := NewRunState(config.InitialBalance, config.CooldownBars, runLog)
	collector := NewEventCollector(config.RecordCandles)
	executor := NewTradeExecutor(config, commission_fee.GetCommissionFeeHandler(config.CommissionPct), s)

	for i := range bars {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeBacktestCancelled, err, "backtest cancelled at bar %d", i)
		}

		snapshot := snapshots.Snapshot(i)
		collector.OnCandle(i, bars[i], snapshot)

		if state.CanEnter(i) {
			signal, err := s.CheckEntry(bars[:i+1:i+1], snapshot, i, b.cache)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err, "strategy %s failed at bar %d", s.Name(), i)
			}

			if signal.IsSome() {
				b.executeSignal(signal.Unwrap(), i, bars, snapshots, executor, state, collector, runLog)
			}
		}

		if onProcessData.IsSome() && ((i+1)%config.ProgressInterval == 0 || i == len(bars)-1) {
			if err := onProcessData.Unwrap()(i+1, len(bars)); err != nil {
				return nil, errors.Wrap(errors.ErrCodeCallbackFailed, "progress callback failed", err)
			}
		}
	}

	trades := collector.Trades()
	result := collector.ToBacktestResult(
		metrics.Calculate(trades, config.InitialBalance),
		b.monteCarlo(trades, config, runLog),
		b.walkForward(trades, config, runLog),
		b.outOfSample(trades, config, runLog),
	)

	result.ID = runID
	result.Strategy = s.Name()
	result.Asset = asset
	result.TimeframeSeconds = timeframe
	result.Config = config
	result.StartedAt = startedAt
	result.FinishedAt = time.Now().UTC()
	result.TotalBars = len(bars)

	runLog.Info("Backtest finished",
		zap.Int("trades", result.Metrics.TotalTrades),
		zap.Float64("net_pnl", result.Metrics.NetPnL),
		zap.Float64("win_rate", result.Metrics.WinRate),
	)

	return result, nil
}

// executeSignal simulates the trade of a signal and books it. A signal the executor
// cannot fill is recorded as rejected.
func (b *BacktestEngineV1) executeSignal(
	signal types.EntrySignal,
	index int,
	bars []types.Bar,
	snapshots *indicator.SnapshotCache,
	executor *TradeExecutor,
	state *RunState,
	collector *EventCollector,
	log *logger.Logger,
) {
	trade := executor.Execute(signal, index, bars[index], bars[index+1:], snapshots.Snapshots(index+1), state.Balance())
	if trade.IsNone() {
		collector.OnSignal(index, signal, "")
		log.Debug("Signal rejected", zap.Int("index", index), zap.String("direction", string(signal.Direction)))

		return
	}

	t := trade.Unwrap()
	t.Entry.Indicators = snapshots.Snapshot(index)

	state.OpenTrade(index, t.Exit.BarsHeld)
	collector.OnSignal(index, signal, t.ID)
	collector.OnTradeComplete(t)
	state.CloseTrade(t.Result.PnL)

	log.Debug("Trade completed",
		zap.String("trade_id", t.ID),
		zap.Int("entry_index", t.Entry.BarIndex),
		zap.Int("exit_index", t.Exit.BarIndex),
		zap.String("reason", string(t.Exit.Reason)),
		zap.Float64("pnl", t.Result.PnL),
	)
}

// prepareStrategy checks the engine version the strategy asks for and hands it its
// parameters, falling back to the strategy defaults.
func (b *BacktestEngineV1) prepareStrategy(s strategy.Strategy, config BacktestEngineV1Config) error {
	if versioned, ok := s.(strategy.VersionedStrategy); ok {
		if err := version.CheckStrategyCompatibility(version.GetVersion(), versioned.EngineVersion()); err != nil {
			return err
		}
	}

	params, err := config.StrategyParamsYAML()
	if err != nil {
		return err
	}

	configurable, ok := s.(strategy.Configurable)
	if !ok {
		if params != "" {
			return errors.Newf(errors.ErrCodeStrategyConfigError, "strategy %s does not take parameters", s.Name())
		}

		return nil
	}

	// parameters of an earlier run must not leak into this one
	return configurable.Configure(params)
}

func (b *BacktestEngineV1) monteCarlo(trades []types.Trade, config BacktestEngineV1Config, log *logger.Logger) optional.Option[types.MonteCarloResult] {
	if !config.MonteCarlo.Enabled {
		return optional.None[types.MonteCarloResult]()
	}

	minTrades := config.MonteCarlo.MinTrades
	if minTrades <= 0 {
		minTrades = analysis.DefaultMCMinTrades
	}

	if len(trades) < minTrades {
		log.Warn("Skipping Monte Carlo analysis",
			zap.Int("trades", len(trades)),
			zap.Int("min_trades", minTrades),
		)

		return optional.None[types.MonteCarloResult]()
	}

	return optional.Some(analysis.MonteCarlo(trades, config.InitialBalance, config.MonteCarlo))
}

func (b *BacktestEngineV1) walkForward(trades []types.Trade, config BacktestEngineV1Config, log *logger.Logger) optional.Option[types.WalkForwardResult] {
	if !config.WalkForward.Enabled {
		return optional.None[types.WalkForwardResult]()
	}

	if len(trades) < config.MinTrades {
		log.Warn("Skipping walk-forward analysis",
			zap.Int("trades", len(trades)),
			zap.Int("min_trades", config.MinTrades),
		)

		return optional.None[types.WalkForwardResult]()
	}

	return optional.Some(analysis.WalkForward(trades, config.InitialBalance, config.WalkForward))
}

func (b *BacktestEngineV1) outOfSample(trades []types.Trade, config BacktestEngineV1Config, log *logger.Logger) optional.Option[types.OOSResult] {
	if !config.OutOfSample.Enabled {
		return optional.None[types.OOSResult]()
	}

	if len(trades) < config.MinTrades {
		log.Warn("Skipping out-of-sample analysis",
			zap.Int("trades", len(trades)),
			zap.Int("min_trades", config.MinTrades),
		)

		return optional.None[types.OOSResult]()
	}

	return optional.Some(analysis.OutOfSample(trades, config.InitialBalance, config.OutOfSample))
}

type configItem struct {
	name    string
	content string
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (err error) {
	defer func() {
		if callbacks.OnBacktestEnd != nil {
			(*callbacks.OnBacktestEnd)(err)
		}
	}()

	if err = b.preRunCheck(); err != nil {
		return err
	}

	configs, err := b.loadConfigs()
	if err != nil {
		return err
	}

	if callbacks.OnBacktestStart != nil {
		if err = (*callbacks.OnBacktestStart)(len(b.strategies), len(configs), len(b.dataPaths)); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "backtest start callback failed", err)
		}
	}

	// clean the results folder
	if err = os.RemoveAll(b.resultsFolder); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to clean results folder", err)
	}

	if err = os.MkdirAll(b.resultsFolder, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create results folder", err)
	}

	allStats := make([]types.ResultStats, 0)

	for strategyIndex, s := range b.strategies {
		if callbacks.OnStrategyStart != nil {
			if err = (*callbacks.OnStrategyStart)(strategyIndex, s.Name(), len(b.strategies)); err != nil {
				return errors.Wrap(errors.ErrCodeCallbackFailed, "strategy start callback failed", err)
			}
		}

		for configIndex, cfg := range configs {
			runConfig, resolveErr := ResolveConfig(s, b.config, cfg.content)
			if resolveErr != nil {
				err = resolveErr

				return fmt.Errorf("invalid configuration %s: %w", cfg.name, err)
			}

			for dataIndex, dataPath := range b.dataPaths {
				stats, runErr := b.runOne(ctx, callbacks, s, configIndex, cfg, runConfig, dataIndex, dataPath)
				if runErr != nil {
					err = runErr

					return err
				}

				allStats = append(allStats, stats)
			}
		}

		if callbacks.OnStrategyEnd != nil {
			(*callbacks.OnStrategyEnd)(strategyIndex, s.Name())
		}
	}

	if err = types.WriteResultStats(filepath.Join(b.resultsFolder, writer.StatsFileName), allStats); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write summary", err)
	}

	return nil
}

// runOne loads one data file, replays it and writes the result.
func (b *BacktestEngineV1) runOne(
	ctx context.Context,
	callbacks engine.LifecycleCallbacks,
	s strategy.Strategy,
	configIndex int,
	cfg configItem,
	config BacktestEngineV1Config,
	dataIndex int,
	dataPath string,
) (types.ResultStats, error) {
	runID := uuid.New().String()

	if err := b.datasource.Initialize(dataPath); err != nil {
		return types.ResultStats{}, fmt.Errorf("failed to initialize data source: %w", err)
	}

	bars, err := datasource.LoadBars(b.datasource, config.StartTime, config.EndTime, config.TimeframeSeconds)
	if err != nil {
		return types.ResultStats{}, fmt.Errorf("failed to load %s: %w", dataPath, err)
	}

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, configIndex, cfg.name, dataIndex, dataPath, len(bars)); err != nil {
			return types.ResultStats{}, errors.Wrap(errors.ErrCodeCallbackFailed, "run start callback failed", err)
		}
	}

	onProcessData := optional.None[engine.OnProcessDataCallback]()
	if callbacks.OnProcessData != nil {
		onProcessData = optional.Some(*callbacks.OnProcessData)
	}

	result, err := b.backtest(ctx, runID, bars, s, config, onProcessData)
	if err != nil {
		return types.ResultStats{}, err
	}

	resultFolderPath := getResultFolder(b.resultsFolder, s.Name(), cfg.name, dataPath, config)

	b.log.Debug("Writing results",
		zap.String("strategy", s.Name()),
		zap.String("config", cfg.name),
		zap.String("data", dataPath),
		zap.String("result", resultFolderPath),
	)

	stats, err := b.resultWriter.Write(resultFolderPath, result, dataPath)
	if err != nil {
		return types.ResultStats{}, err
	}

	if callbacks.OnRunEnd != nil {
		(*callbacks.OnRunEnd)(configIndex, cfg.name, dataIndex, dataPath, resultFolderPath, result)
	}

	return stats, nil
}

// loadConfigs builds the run configurations from either file paths or direct content.
// Without any, a single run uses the engine configuration alone.
func (b *BacktestEngineV1) loadConfigs() ([]configItem, error) {
	configs := make([]configItem, 0)

	if len(b.strategyConfigs) > 0 {
		for i, content := range b.strategyConfigs {
			configs = append(configs, configItem{
				name:    fmt.Sprintf("config_%d", i),
				content: content,
			})
		}

		return configs, nil
	}

	for _, configPath := range b.strategyConfigPaths {
		content, err := os.ReadFile(configPath)
		if err != nil {
			b.log.Error("Failed to read config",
				zap.String("config", configPath),
				zap.Error(err),
			)

			return nil, err
		}

		configs = append(configs, configItem{
			name:    configPath,
			content: string(content),
		})
	}

	if len(configs) == 0 {
		configs = append(configs, configItem{name: "default", content: ""})
	}

	return configs, nil
}

func (b *BacktestEngineV1) preRunCheck() error {
	if b.log == nil || b.indicatorRegistry == nil {
		return errors.New(errors.ErrCodeBacktestNotInitialized, "engine is not initialized")
	}

	if len(b.strategies) == 0 {
		b.log.Error("No strategies loaded")

		return errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies loaded")
	}

	if len(b.dataPaths) == 0 {
		b.log.Error("No data paths loaded")

		return errors.New(errors.ErrCodeBacktestNoDataPaths, "no data paths loaded")
	}

	if b.resultsFolder == "" {
		b.log.Error("No results folder set")

		return errors.New(errors.ErrCodeBacktestNoResultsDir, "no results folder set")
	}

	if b.datasource == nil {
		b.log.Error("No datasource set")

		return errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set")
	}

	return nil
}

// logDebug and logError tolerate setters called before Initialize.
func (b *BacktestEngineV1) logDebug(msg string, fields ...zap.Field) {
	if b.log != nil {
		b.log.Debug(msg, fields...)
	}
}

func (b *BacktestEngineV1) logError(msg string, fields ...zap.Field) {
	if b.log != nil {
		b.log.Error(msg, fields...)
	}
}
