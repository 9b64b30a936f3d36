package lifecycle

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/internal/risk"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"go.uber.org/zap"
)

// SkipReason explains why TryOpen did not open a position.
type SkipReason string

const (
	SkipReasonNone           SkipReason = ""
	SkipReasonPositionExists SkipReason = "position_exists"
	SkipReasonNoBuySignal    SkipReason = "no_buy_signal"
	SkipReasonLowConfidence  SkipReason = "low_confidence"
	SkipReasonMaxTrades      SkipReason = "max_trades"
	SkipReasonZeroSize       SkipReason = "zero_size"
	SkipReasonInvalidEntry   SkipReason = "invalid_entry"
)

// Recorder receives every ledger entry produced by the manager.
type Recorder interface {
	Record(entry types.LedgerEntry) error
}

// Evaluation is the result of one OPEN evaluation cycle.
type Evaluation struct {
	Decision Decision
	Reason   ExitReason
	// Position is a copy of the position after the evaluation
	Position types.Position
}

// Manager owns the open positions, at most one per symbol.
//
// A symbol is FLAT when it has no position and OPEN otherwise. The risk
// manager is shared by reference and updated on every transition.
// Manager is not safe for concurrent use.
type Manager struct {
	risk      *risk.Manager
	policy    LiveExitPolicy
	config    config.LiveExitConfig
	positions map[string]*types.Position
	recorder  Recorder
	logger    *logger.Logger
}

// NewManager creates a lifecycle manager. recorder may be nil.
func NewManager(riskManager *risk.Manager, cfg config.LiveExitConfig, recorder Recorder, log *logger.Logger) *Manager {
	return &Manager{
		risk:      riskManager,
		policy:    NewLiveExitPolicy(cfg),
		config:    cfg,
		positions: make(map[string]*types.Position),
		recorder:  recorder,
		logger:    log,
	}
}

// TryOpen performs the FLAT to OPEN transition for a long position when the
// signal is a buy with enough confidence, another trade is allowed and the
// computed size is positive. It returns the new position, or None and the
// reason the entry was skipped.
func (m *Manager) TryOpen(symbol string, signal types.Signal, atr float64, ts time.Time) (optional.Option[types.Position], SkipReason) {
	size, reason := m.PlanEntry(symbol, signal)
	if reason != SkipReasonNone {
		return optional.None[types.Position](), reason
	}

	position, err := m.OpenWithSide(symbol, types.PositionSideLong, signal.Price, size, atr, ts)
	if err != nil {
		m.logger.Warn("Failed to open position", zap.String("symbol", symbol), zap.Error(err))

		return optional.None[types.Position](), SkipReasonInvalidEntry
	}

	return optional.Some(position), SkipReasonNone
}

// PlanEntry checks the entry conditions of TryOpen without changing any state.
// It returns the long size to buy, or zero and the reason the entry is skipped.
// The live engine places the order with the planned size and opens the
// position with the filled quantity.
func (m *Manager) PlanEntry(symbol string, signal types.Signal) (float64, SkipReason) {
	if m.HasPosition(symbol) {
		return 0, SkipReasonPositionExists
	}

	if signal.Action != types.ActionBuy {
		return 0, SkipReasonNoBuySignal
	}

	if signal.Confidence < m.config.EntryConfidence {
		return 0, SkipReasonLowConfidence
	}

	if !m.risk.CanOpenTrade() {
		return 0, SkipReasonMaxTrades
	}

	size := m.risk.PositionSize(signal.Price, optional.None[float64]())
	if size <= 0 {
		m.logger.Warn("Position size too small",
			zap.String("symbol", symbol),
			zap.Float64("price", signal.Price),
			zap.Int("error_code", int(errors.ErrCodePositionSizeZero)),
		)

		return 0, SkipReasonZeroSize
	}

	return size, SkipReasonNone
}

// OpenWithSide opens a position with an explicit side and size.
// The stop loss is placed StopATRMultiple ATRs against the position.
func (m *Manager) OpenWithSide(symbol string, side types.PositionSide, price, size, atr float64, ts time.Time) (types.Position, error) {
	if m.HasPosition(symbol) {
		return types.Position{}, errors.Newf(errors.ErrCodePositionExists, "%s already has an open position", symbol)
	}

	if price <= 0 || size <= 0 {
		return types.Position{}, errors.Newf(errors.ErrCodeRiskViolation, "invalid entry for %s: price %v size %v", symbol, price, size)
	}

	if !m.risk.CanOpenTrade() {
		return types.Position{}, errors.Newf(errors.ErrCodeMaxTradesReached, "max trades reached, cannot open %s", symbol)
	}

	position := &types.Position{
		ID:           uuid.New().String(),
		Symbol:       symbol,
		Side:         side,
		EntryPrice:   price,
		Size:         size,
		StopLoss:     m.policy.StopLoss(side, price, atr),
		EntryTime:    ts,
		CurrentPrice: price,
		PnL:          0,
		PnLPercent:   0,
	}

	m.positions[symbol] = position
	m.risk.OpenTrade()

	m.logger.Info("Position opened",
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.Float64("price", price),
		zap.Float64("size", size),
		zap.Float64("stop_loss", position.StopLoss),
	)

	m.record(types.LedgerEntry{
		ID:        uuid.New().String(),
		Timestamp: ts,
		Symbol:    symbol,
		Action:    types.LedgerActionEnter,
		Side:      side,
		Price:     price,
		Size:      size,
		StopLoss:  optional.Some(position.StopLoss),
		PnL:       optional.None[float64](),
		Balance:   m.risk.Balance(),
		Reason:    "entry",
	})

	return *position, nil
}

// Evaluate updates the open position of symbol at price and applies the live
// exit policy. A trailing stop is applied immediately; an exit decision is
// left to the caller, who closes the position once the exit order filled.
func (m *Manager) Evaluate(symbol string, price float64, signal types.Signal) (Evaluation, error) {
	position, ok := m.positions[symbol]
	if !ok {
		return Evaluation{}, errors.Newf(errors.ErrCodePositionNotFound, "no open position for %s", symbol)
	}

	position.CurrentPrice = price
	position.PnL = position.UnrealizedPnL(price)
	position.PnLPercent = position.PnLPercentAt(price)

	decision, reason, stop := m.policy.Evaluate(*position, price, signal)
	if decision == DecisionTrail {
		m.logger.Info("Trailing stop updated",
			zap.String("symbol", symbol),
			zap.Float64("previous_stop", position.StopLoss),
			zap.Float64("stop_loss", stop),
		)

		position.StopLoss = stop
	}

	m.logger.Info("Trade status",
		zap.String("symbol", symbol),
		zap.Float64("price", price),
		zap.Float64("pnl_percent", position.PnLPercent),
		zap.Float64("stop_loss", position.StopLoss),
		zap.String("decision", string(decision)),
	)

	return Evaluation{
		Decision: decision,
		Reason:   reason,
		Position: *position,
	}, nil
}

// Close performs the OPEN to FLAT transition at price. The realized pnl is
// added to the balance and the position is removed.
func (m *Manager) Close(symbol string, price float64, ts time.Time, reason ExitReason) (types.LedgerEntry, error) {
	position, ok := m.positions[symbol]
	if !ok {
		return types.LedgerEntry{}, errors.Newf(errors.ErrCodePositionNotFound, "no open position for %s", symbol)
	}

	pnl := position.UnrealizedPnL(price)

	m.risk.UpdateBalance(m.risk.Balance() + pnl)
	m.risk.CloseTrade()
	delete(m.positions, symbol)

	entry := types.LedgerEntry{
		ID:        uuid.New().String(),
		Timestamp: ts,
		Symbol:    symbol,
		Action:    types.LedgerActionExit,
		Side:      position.Side,
		Price:     price,
		Size:      position.Size,
		StopLoss:  optional.None[float64](),
		PnL:       optional.Some(pnl),
		Balance:   m.risk.Balance(),
		Reason:    string(reason),
	}

	m.logger.Info("Position closed",
		zap.String("symbol", symbol),
		zap.String("reason", string(reason)),
		zap.Float64("price", price),
		zap.Float64("pnl", pnl),
		zap.Float64("balance", entry.Balance),
	)

	m.record(entry)

	return entry, nil
}

// HasPosition reports whether symbol is OPEN.
func (m *Manager) HasPosition(symbol string) bool {
	_, ok := m.positions[symbol]

	return ok
}

// Position returns a copy of the open position of symbol.
func (m *Manager) Position(symbol string) optional.Option[types.Position] {
	position, ok := m.positions[symbol]
	if !ok {
		return optional.None[types.Position]()
	}

	return optional.Some(*position)
}

// Positions returns copies of every open position ordered by symbol.
func (m *Manager) Positions() []types.Position {
	positions := make([]types.Position, 0, len(m.positions))
	for _, p := range m.positions {
		positions = append(positions, *p)
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})

	return positions
}

// Symbols returns the symbols with an open position in order.
func (m *Manager) Symbols() []string {
	symbols := make([]string, 0, len(m.positions))
	for symbol := range m.positions {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}

func (m *Manager) record(entry types.LedgerEntry) {
	if m.recorder == nil {
		return
	}

	if err := m.recorder.Record(entry); err != nil {
		m.logger.Error("Failed to record ledger entry",
			zap.String("symbol", entry.Symbol),
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
	}
}
