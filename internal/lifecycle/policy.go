package lifecycle

import (
	"math"

	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/types"
)

// Decision is the outcome of evaluating an open position.
type Decision string

const (
	// DecisionHold keeps the position unchanged
	DecisionHold Decision = "hold"
	// DecisionTrail keeps the position and tightens its stop loss
	DecisionTrail Decision = "trail"
	// DecisionExit closes the position
	DecisionExit Decision = "exit"
)

// ExitReason explains why a position was closed.
type ExitReason string

const (
	ExitReasonNone           ExitReason = ""
	ExitReasonStopLoss       ExitReason = "stop_loss"
	ExitReasonTakeProfit     ExitReason = "take_profit"
	ExitReasonSignalReversal ExitReason = "signal_reversal"
	ExitReasonBand           ExitReason = "exit_band"
	ExitReasonManual         ExitReason = "manual"
)

// LiveExitPolicy decides exits for live trading.
//
// Rules are checked in a fixed order and the first match wins:
// stop loss breach, take profit, opposing signal, trailing stop.
type LiveExitPolicy struct {
	config config.LiveExitConfig
}

func NewLiveExitPolicy(cfg config.LiveExitConfig) LiveExitPolicy {
	return LiveExitPolicy{config: cfg}
}

// Evaluate returns the decision for position at price given the latest
// continuous signal. For DecisionTrail the returned stop is the new stop loss,
// otherwise it is the current one.
func (p LiveExitPolicy) Evaluate(position types.Position, price float64, signal types.Signal) (Decision, ExitReason, float64) {
	if stopBreached(position, price) {
		return DecisionExit, ExitReasonStopLoss, position.StopLoss
	}

	pnlPercent := position.PnLPercentAt(price)

	if pnlPercent >= p.config.TakeProfitPct {
		return DecisionExit, ExitReasonTakeProfit, position.StopLoss
	}

	if signal.Action.Opposes(position.Side) && signal.Confidence >= p.config.ExitConfidence {
		return DecisionExit, ExitReasonSignalReversal, position.StopLoss
	}

	if pnlPercent > 0 {
		// lock a share of the open profit, never relaxing the stop
		newStop := position.EntryPrice + p.config.TrailLockRatio*(price-position.EntryPrice)
		if improvesStop(position, newStop) {
			return DecisionTrail, ExitReasonNone, newStop
		}
	}

	return DecisionHold, ExitReasonNone, position.StopLoss
}

// StopLoss returns the initial stop for an entry at price.
// Without a usable ATR the stop distance falls back to 2% of the price.
func (p LiveExitPolicy) StopLoss(side types.PositionSide, price, atr float64) float64 {
	return stopLossFor(side, price, atr, p.config.StopATRMultiple)
}

// BacktestExitPolicy decides exits for the backtest simulator.
//
// It is intentionally simpler than LiveExitPolicy: a position is closed on an
// opposing discrete score or when |pnl%| leaves a symmetric band.
type BacktestExitPolicy struct {
	BandPct float64
}

func NewBacktestExitPolicy(cfg config.BacktestConfig) BacktestExitPolicy {
	return BacktestExitPolicy{BandPct: cfg.ExitBandPct}
}

// ShouldExit reports whether position should be closed at price.
func (p BacktestExitPolicy) ShouldExit(position types.Position, price float64, score types.DiscreteScore) (bool, ExitReason) {
	switch {
	case position.Side == types.PositionSideLong && score.TotalScore < 0:
		return true, ExitReasonSignalReversal
	case position.Side == types.PositionSideShort && score.TotalScore > 0:
		return true, ExitReasonSignalReversal
	}

	if math.Abs(position.PnLPercentAt(price)) > p.BandPct {
		return true, ExitReasonBand
	}

	return false, ExitReasonNone
}

func stopBreached(position types.Position, price float64) bool {
	if position.Side == types.PositionSideShort {
		return price >= position.StopLoss
	}

	return price <= position.StopLoss
}

func improvesStop(position types.Position, stop float64) bool {
	if position.Side == types.PositionSideShort {
		return stop < position.StopLoss
	}

	return stop > position.StopLoss
}

func stopLossFor(side types.PositionSide, price, atr, multiple float64) float64 {
	if atr <= 0 || math.IsNaN(atr) || math.IsInf(atr, 0) {
		atr = price * 0.02
	}

	if side == types.PositionSideShort {
		return price + multiple*atr
	}

	return price - multiple*atr
}
