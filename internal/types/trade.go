package types

import "time"

type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
)

type ExitReason string

const (
	ExitReasonTakeProfit ExitReason = "TAKE_PROFIT"
	ExitReasonStopLoss   ExitReason = "STOP_LOSS"
	ExitReasonMiddleExit ExitReason = "MIDDLE_EXIT"
	// ExitReasonTimeout is a genuine exit after the configured maximum bars in trade.
	ExitReasonTimeout ExitReason = "TIMEOUT"
	// ExitReasonEndOfData marks a trade force-closed at the last bar of the series.
	ExitReasonEndOfData ExitReason = "END_OF_DATA"
)

// TradeEntry is the opening side of a trade.
type TradeEntry struct {
	Signal EntrySignal `json:"signal" yaml:"signal"`
	// Price actually filled
	Price      float64           `json:"price" yaml:"price"`
	Time       time.Time         `json:"time" yaml:"time"`
	BarIndex   int               `json:"bar_index" yaml:"bar_index"`
	Stake      float64           `json:"stake" yaml:"stake"`
	TakeProfit float64           `json:"take_profit" yaml:"take_profit"`
	StopLoss   float64           `json:"stop_loss" yaml:"stop_loss"`
	Indicators IndicatorSnapshot `json:"indicators,omitempty" yaml:"-"`
}

// TradeExit is the closing side of a trade.
type TradeExit struct {
	Price           float64           `json:"price" yaml:"price"`
	Time            time.Time         `json:"time" yaml:"time"`
	BarIndex        int               `json:"bar_index" yaml:"bar_index"`
	Reason          ExitReason        `json:"reason" yaml:"reason"`
	DurationSeconds int64             `json:"duration_seconds" yaml:"duration_seconds"`
	BarsHeld        int               `json:"bars_held" yaml:"bars_held"`
	Indicators      IndicatorSnapshot `json:"indicators,omitempty" yaml:"-"`
}

// TradeResult summarises the profit of a closed trade.
type TradeResult struct {
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	// PnL is the net profit after commission, in account currency
	PnL float64 `json:"pnl" yaml:"pnl"`
	// PnLPct is PnL relative to the stake
	PnLPct float64 `json:"pnl_pct" yaml:"pnl_pct"`
	// MaxFavorablePct is the best unrealised price move in the trade's direction
	MaxFavorablePct float64 `json:"max_favorable_pct" yaml:"max_favorable_pct"`
	// MaxAdversePct is the worst unrealised price move against the trade
	MaxAdversePct float64    `json:"max_adverse_pct" yaml:"max_adverse_pct"`
	ExitReason    ExitReason `json:"exit_reason" yaml:"exit_reason"`
	Commission    float64    `json:"commission" yaml:"commission"`
}

// Trade is one closed position in the ledger.
type Trade struct {
	ID     string      `json:"id" yaml:"id"`
	Symbol string      `json:"symbol" yaml:"symbol"`
	Entry  TradeEntry  `json:"entry" yaml:"entry"`
	Exit   TradeExit   `json:"exit" yaml:"exit"`
	Result TradeResult `json:"result" yaml:"result"`
	// Truncated is set when the series ended before any exit condition fired.
	Truncated bool `json:"truncated" yaml:"truncated"`
}

// IsWin reports whether the trade outcome is WIN.
func (t Trade) IsWin() bool {
	return t.Result.Outcome == OutcomeWin
}

// PnLs extracts the PnL column of a ledger in order.
func PnLs(trades []Trade) []float64 {
	pnls := make([]float64, len(trades))
	for i, t := range trades {
		pnls[i] = t.Result.PnL
	}

	return pnls
}
