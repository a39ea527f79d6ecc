// Package grid runs one backtest per combination of parameter values. Every run
// owns its engine and run state; runs share only the read-only bar series.
package grid

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	engine "github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine"
	enginev1 "github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/logger"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/strategy"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
	"github.com/horaciomoreno100/deriv-bot-sub007/pkg/errors"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Config describes a grid. Parameter keys are dotted configuration paths such as
// "take_profit_pct" or "strategy_params.period".
type Config struct {
	Parameters  map[string][]any `yaml:"parameters" validate:"required,min=1"`
	Concurrency int              `yaml:"concurrency" validate:"min=0"`
}

// Point is one combination of parameter values.
type Point struct {
	Index  int
	Name   string
	Values map[string]any
}

// RunResult is the outcome of a single point. Err holds errors rejecting the point
// before its run starts (engine config, strategy params, engine version); any other
// failure aborts the grid.
type RunResult struct {
	Point  Point
	Result *types.BacktestResult
	Err    error
}

// ParseConfig decodes a grid file.
func ParseConfig(data []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse grid configuration", err)
	}

	if len(config.Parameters) == 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfiguration, "grid has no parameters")
	}

	if config.Concurrency < 0 {
		return Config{}, errors.Newf(errors.ErrCodeInvalidConfiguration, "concurrency must not be negative, got %d", config.Concurrency)
	}

	return config, nil
}

// Expand returns the cartesian product of the parameter values. Keys vary in
// sorted order with the last key changing fastest.
func Expand(parameters map[string][]any) ([]Point, error) {
	keys := slices.Sorted(maps.Keys(parameters))

	for _, key := range keys {
		if len(parameters[key]) == 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "parameter %s has no values", key)
		}
	}

	points := []Point{{Values: map[string]any{}}}

	for _, key := range keys {
		next := make([]Point, 0, len(points)*len(parameters[key]))

		for _, point := range points {
			for _, value := range parameters[key] {
				values := maps.Clone(point.Values)
				values[key] = value
				next = append(next, Point{Values: values})
			}
		}

		points = next
	}

	for i := range points {
		points[i].Index = i
		points[i].Name = pointName(keys, points[i].Values)
	}

	return points, nil
}

func pointName(keys []string, values map[string]any) string {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, values[key]))
	}

	return strings.Join(parts, ",")
}

// Overrides renders the point as a YAML layer on top of base.
func (p Point) Overrides(base string) (string, error) {
	merged := map[string]any{}
	if err := yaml.Unmarshal([]byte(base), &merged); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse base configuration", err)
	}

	if merged == nil {
		merged = map[string]any{}
	}

	for key, value := range p.Values {
		if err := setPath(merged, strings.Split(key, "."), value); err != nil {
			return "", err
		}
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to render grid point", err)
	}

	return string(data), nil
}

func setPath(target map[string]any, path []string, value any) error {
	if len(path) == 1 {
		target[path[0]] = value

		return nil
	}

	child, ok := target[path[0]]
	if !ok {
		child = map[string]any{}
		target[path[0]] = child
	}

	childMap, ok := child.(map[string]any)
	if !ok {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "%s is not a mapping", path[0])
	}

	return setPath(childMap, path[1:], value)
}

// Runner runs grid points in parallel.
type Runner struct {
	newStrategy strategy.Factory
	baseConfig  string
	concurrency int
	logger      *logger.Logger
}

// NewRunner creates a runner. Every run gets a fresh strategy from newStrategy.
// A concurrency of 0 leaves the number of parallel runs unlimited.
func NewRunner(newStrategy strategy.Factory, baseConfig string, concurrency int, logger *logger.Logger) *Runner {
	return &Runner{
		newStrategy: newStrategy,
		baseConfig:  baseConfig,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run backtests every point over bars. onDone is called after each finished point
// and may be called from several goroutines, one at a time.
func (r *Runner) Run(ctx context.Context, bars []types.Bar, points []Point, onDone func(done int, total int)) ([]RunResult, error) {
	results := make([]RunResult, len(points))

	group, groupCtx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		group.SetLimit(r.concurrency)
	}

	var (
		mu   sync.Mutex
		done int
	)

	for i, point := range points {
		group.Go(func() error {
			result, err := r.runPoint(groupCtx, bars, point)
			if err != nil && !errors.IsRunSetupError(err) {
				return fmt.Errorf("grid point %s: %w", point.Name, err)
			}

			results[i] = RunResult{Point: point, Result: result, Err: err}

			mu.Lock()
			defer mu.Unlock()

			done++
			if onDone != nil {
				onDone(done, len(points))
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	r.logger.Info("Grid finished", zap.Int("points", len(points)))

	return results, nil
}

func (r *Runner) runPoint(ctx context.Context, bars []types.Bar, point Point) (*types.BacktestResult, error) {
	config, err := point.Overrides(r.baseConfig)
	if err != nil {
		return nil, err
	}

	backtester := enginev1.NewBacktestEngineV1WithLogger(logger.NewNopLogger())
	if err := backtester.Initialize(config); err != nil {
		return nil, err
	}

	result, err := backtester.Backtest(ctx, bars, r.newStrategy(), optional.None[engine.OnProcessDataCallback]())
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Grid point finished",
		zap.String("point", point.Name),
		zap.Int("trades", result.Metrics.TotalTrades),
		zap.Float64("net_pnl", result.Metrics.NetPnL),
	)

	return result, nil
}

// Best returns the successful result with the highest net PnL. Ties keep the
// earlier point.
func Best(results []RunResult) (RunResult, bool) {
	var (
		best  RunResult
		found bool
	)

	for _, result := range results {
		if result.Err != nil || result.Result == nil {
			continue
		}

		if !found || result.Result.Metrics.NetPnL > best.Result.Metrics.NetPnL {
			best = result
			found = true
		}
	}

	return best, found
}
