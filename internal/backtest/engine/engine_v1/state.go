package engine

import (
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/logger"
	"go.uber.org/zap"
)

// Phase is the position of the backtest loop in its state machine.
type Phase string

const (
	PhaseScanning Phase = "SCANNING"
	PhaseInTrade  Phase = "IN_TRADE"
	PhaseCooldown Phase = "COOLDOWN"
)

// RunState tracks the open trade span, the cooldown and the balance of one run.
// Indices up to inTradeUntil are IN_TRADE, then up to cooldownUntil COOLDOWN.
type RunState struct {
	inTradeUntil  int
	cooldownUntil int
	cooldownBars  int
	balance       float64
	openTrades    int
	logger        *logger.Logger
}

func NewRunState(initialBalance float64, cooldownBars int, log *logger.Logger) *RunState {
	return &RunState{
		inTradeUntil:  -1,
		cooldownUntil: -1,
		cooldownBars:  cooldownBars,
		balance:       initialBalance,
		openTrades:    0,
		logger:        log,
	}
}

// Phase returns the phase of the loop at index.
func (s *RunState) Phase(index int) Phase {
	switch {
	case index <= s.inTradeUntil:
		return PhaseInTrade
	case index <= s.cooldownUntil:
		return PhaseCooldown
	default:
		return PhaseScanning
	}
}

// CanEnter reports whether a new entry may be evaluated at index.
func (s *RunState) CanEnter(index int) bool {
	return s.Phase(index) == PhaseScanning && s.openTrades == 0
}

// OpenTrade blocks the barsHeld bars after signalIndex and the cooldown that follows.
func (s *RunState) OpenTrade(signalIndex int, barsHeld int) {
	s.openTrades++
	s.inTradeUntil = signalIndex + barsHeld
	s.cooldownUntil = s.inTradeUntil + s.cooldownBars

	s.logger.Debug("Trade opened",
		zap.Int("signal_index", signalIndex),
		zap.Int("in_trade_until", s.inTradeUntil),
		zap.Int("cooldown_until", s.cooldownUntil),
	)
}

// CloseTrade books the trade's PnL.
func (s *RunState) CloseTrade(pnl float64) {
	s.openTrades--
	s.balance += pnl
}

func (s *RunState) Balance() float64 {
	return s.balance
}

func (s *RunState) OpenTrades() int {
	return s.openTrades
}
