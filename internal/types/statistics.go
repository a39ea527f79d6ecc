package types

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ProfitFactor is gross profit divided by gross loss. It is +Inf when there are
// profits and no losses, and 0 when there are neither.
type ProfitFactor float64

// IsInfinite reports whether the profit factor is the +Inf sentinel.
func (p ProfitFactor) IsInfinite() bool {
	return math.IsInf(float64(p), 1)
}

// Capped returns the profit factor with +Inf replaced by limit.
func (p ProfitFactor) Capped(limit float64) float64 {
	if p.IsInfinite() {
		return limit
	}

	return float64(p)
}

// MarshalJSON encodes +Inf as the string "Infinity" since JSON has no infinity literal.
func (p ProfitFactor) MarshalJSON() ([]byte, error) {
	if p.IsInfinite() {
		return []byte(`"Infinity"`), nil
	}

	return json.Marshal(float64(p))
}

// UnmarshalJSON accepts numbers and the "Infinity" string.
func (p *ProfitFactor) UnmarshalJSON(data []byte) error {
	if string(data) == `"Infinity"` {
		*p = ProfitFactor(math.Inf(1))

		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid profit factor %s: %w", string(data), err)
	}

	*p = ProfitFactor(v)

	return nil
}

type BacktestMetrics struct {
	TotalTrades  int     `json:"total_trades" yaml:"total_trades"`
	WinningCount int     `json:"winning_trades" yaml:"winning_trades"`
	LosingCount  int     `json:"losing_trades" yaml:"losing_trades"`
	WinRate      float64 `json:"win_rate" yaml:"win_rate"`
	GrossProfit  float64 `json:"gross_profit" yaml:"gross_profit"`
	GrossLoss    float64 `json:"gross_loss" yaml:"gross_loss"`
	NetPnL       float64 `json:"net_pnl" yaml:"net_pnl"`
	// ProfitFactor may be +Inf, see ProfitFactor.
	ProfitFactor ProfitFactor `json:"profit_factor" yaml:"profit_factor"`
	AverageWin   float64      `json:"average_win" yaml:"average_win"`
	// AverageLoss is reported as a positive amount
	AverageLoss  float64 `json:"average_loss" yaml:"average_loss"`
	LargestWin   float64 `json:"largest_win" yaml:"largest_win"`
	// LargestLoss is the most negative PnL, 0 without losing trades
	LargestLoss  float64 `json:"largest_loss" yaml:"largest_loss"`
	MaxDrawdown  float64 `json:"max_drawdown" yaml:"max_drawdown"`
	// MaxDrawdownPct is the drop relative to the equity peak at the time of the drop.
	MaxDrawdownPct       float64   `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	MaxConsecutiveWins   int       `json:"max_consecutive_wins" yaml:"max_consecutive_wins"`
	MaxConsecutiveLosses int       `json:"max_consecutive_losses" yaml:"max_consecutive_losses"`
	Expectancy           float64   `json:"expectancy" yaml:"expectancy"`
	SQN                  float64   `json:"sqn" yaml:"sqn"`
	InitialBalance       float64   `json:"initial_balance" yaml:"initial_balance"`
	FinalBalance         float64   `json:"final_balance" yaml:"final_balance"`
	ReturnPct            float64   `json:"return_pct" yaml:"return_pct"`
	TruncatedTrades      int       `json:"truncated_trades" yaml:"truncated_trades"`
	AverageBarsHeld      float64   `json:"average_bars_held" yaml:"average_bars_held"`
	EquityCurve          []float64 `json:"equity_curve" yaml:"-"`
}

// Distribution summarises one simulated quantity across Monte Carlo runs.
type Distribution struct {
	P5     float64 `json:"p5" yaml:"p5"`
	P25    float64 `json:"p25" yaml:"p25"`
	P50    float64 `json:"p50" yaml:"p50"`
	P75    float64 `json:"p75" yaml:"p75"`
	P95    float64 `json:"p95" yaml:"p95"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
}

// ConfidenceInterval is a two sided percentile interval.
type ConfidenceInterval struct {
	Level float64 `json:"level" yaml:"level"`
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

type MonteCarloResult struct {
	Simulations int `json:"simulations" yaml:"simulations"`
	// Seed used for the run. Re-running with it reproduces the result.
	Seed           uint64       `json:"seed" yaml:"seed"`
	TradesPerRun   int          `json:"trades_per_run" yaml:"trades_per_run"`
	NetPnL         Distribution `json:"net_pnl" yaml:"net_pnl"`
	MaxDrawdown    Distribution `json:"max_drawdown" yaml:"max_drawdown"`
	MaxDrawdownPct Distribution `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	FinalEquity    Distribution `json:"final_equity" yaml:"final_equity"`
	// RiskOfRuin is the percentage of runs whose equity reached zero.
	RiskOfRuin float64 `json:"risk_of_ruin" yaml:"risk_of_ruin"`
	// ProfitProbability is the percentage of runs ending above the initial balance.
	ProfitProbability float64            `json:"profit_probability" yaml:"profit_probability"`
	Confidence95      ConfidenceInterval `json:"confidence_95" yaml:"confidence_95"`
	OriginalNetPnL    float64            `json:"original_net_pnl" yaml:"original_net_pnl"`
	OriginalDrawdown  float64            `json:"original_max_drawdown" yaml:"original_max_drawdown"`
}

type WalkForwardWindow struct {
	Index      int             `json:"index" yaml:"index"`
	StartTrade int             `json:"start_trade" yaml:"start_trade"`
	EndTrade   int             `json:"end_trade" yaml:"end_trade"`
	TrainCount int             `json:"train_count" yaml:"train_count"`
	TestCount  int             `json:"test_count" yaml:"test_count"`
	Skipped    bool            `json:"skipped" yaml:"skipped"`
	Train      BacktestMetrics `json:"train" yaml:"train"`
	Test       BacktestMetrics `json:"test" yaml:"test"`
}

type WalkForwardResult struct {
	Windows              []WalkForwardWindow `json:"windows" yaml:"windows"`
	ValidWindows         int                 `json:"valid_windows" yaml:"valid_windows"`
	AvgTrainWinRate      float64             `json:"avg_train_win_rate" yaml:"avg_train_win_rate"`
	AvgTestWinRate       float64             `json:"avg_test_win_rate" yaml:"avg_test_win_rate"`
	TotalTrainPnL        float64             `json:"total_train_pnl" yaml:"total_train_pnl"`
	TotalTestPnL         float64             `json:"total_test_pnl" yaml:"total_test_pnl"`
	AvgTrainProfitFactor float64             `json:"avg_train_profit_factor" yaml:"avg_train_profit_factor"`
	AvgTestProfitFactor  float64             `json:"avg_test_profit_factor" yaml:"avg_test_profit_factor"`
	WinRateDegradation   float64             `json:"win_rate_degradation" yaml:"win_rate_degradation"`
	PnLDegradation       float64             `json:"pnl_degradation" yaml:"pnl_degradation"`
	ConsistencyScore     float64             `json:"consistency_score" yaml:"consistency_score"`
	RobustnessRatio      float64             `json:"robustness_ratio" yaml:"robustness_ratio"`
}

type OOSResult struct {
	InSampleRatio      float64         `json:"in_sample_ratio" yaml:"in_sample_ratio"`
	SplitIndex         int             `json:"split_index" yaml:"split_index"`
	InSample           BacktestMetrics `json:"in_sample" yaml:"in_sample"`
	OutOfSample        BacktestMetrics `json:"out_of_sample" yaml:"out_of_sample"`
	WinRateDegradation float64         `json:"win_rate_degradation" yaml:"win_rate_degradation"`
	PnLPerTradeDegPct  float64         `json:"pnl_per_trade_degradation_pct" yaml:"pnl_per_trade_degradation_pct"`
	OverfitScore       float64         `json:"overfit_score" yaml:"overfit_score"`
	IsOverfit          bool            `json:"is_overfit" yaml:"is_overfit"`
	Recommendation     string          `json:"recommendation" yaml:"recommendation"`
}

// BacktestResult is everything one run produced.
type BacktestResult struct {
	ID               string             `json:"id"`
	Strategy         string             `json:"strategy"`
	Asset            string             `json:"asset"`
	TimeframeSeconds int64              `json:"timeframe_seconds"`
	Config           any                `json:"config"`
	StartedAt        time.Time          `json:"started_at"`
	FinishedAt       time.Time          `json:"finished_at"`
	TotalBars        int                `json:"total_bars"`
	Trades           []Trade            `json:"trades"`
	Metrics          BacktestMetrics    `json:"metrics"`
	MonteCarlo       *MonteCarloResult  `json:"monte_carlo,omitempty"`
	WalkForward      *WalkForwardResult `json:"walk_forward,omitempty"`
	OutOfSample      *OOSResult         `json:"out_of_sample,omitempty"`
	Candles          []CandleEvent      `json:"candles,omitempty"`
	Signals          []SignalEvent      `json:"signals,omitempty"`
}

// ResultStats is the compact summary written next to the full result.
type ResultStats struct {
	ID               string             `yaml:"id"`
	Timestamp        time.Time          `yaml:"timestamp"`
	Strategy         string             `yaml:"strategy"`
	Asset            string             `yaml:"asset"`
	TimeframeSeconds int64              `yaml:"timeframe_seconds"`
	TotalBars        int                `yaml:"total_bars"`
	Metrics          BacktestMetrics    `yaml:"metrics"`
	MonteCarlo       *MonteCarloResult  `yaml:"monte_carlo,omitempty"`
	WalkForward      *WalkForwardResult `yaml:"walk_forward,omitempty"`
	OutOfSample      *OOSResult         `yaml:"out_of_sample,omitempty"`
	TradesFilePath   string             `yaml:"trades_file_path,omitempty"`
	ResultFilePath   string             `yaml:"result_file_path,omitempty"`
	DataPath         string             `yaml:"data_path,omitempty"`
}

// Stats builds the summary of a result.
func (r *BacktestResult) Stats() ResultStats {
	return ResultStats{
		ID:               r.ID,
		Timestamp:        r.FinishedAt,
		Strategy:         r.Strategy,
		Asset:            r.Asset,
		TimeframeSeconds: r.TimeframeSeconds,
		TotalBars:        r.TotalBars,
		Metrics:          r.Metrics,
		MonteCarlo:       r.MonteCarlo,
		WalkForward:      r.WalkForward,
		OutOfSample:      r.OutOfSample,
		TradesFilePath:   "",
		ResultFilePath:   "",
		DataPath:         "",
	}
}

func WriteResultStats(path string, stats []ResultStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal result stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result stats to file: %w", err)
	}

	return nil
}
