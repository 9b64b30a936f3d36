package risk

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/internal/utils"
	"go.uber.org/zap"
)

const (
	// MinRiskPerTrade is the floor of the adjusted risk per trade
	MinRiskPerTrade = 0.005
	// TradingDaysPerYear annualizes volatility and sharpe ratios
	TradingDaysPerYear = 252
	// sizePrecision is the number of decimal places of a position size
	sizePrecision = 6
)

// Manager sizes positions and tracks the risk budget.
//
// It performs no I/O and holds no lock. The owner of a Manager serializes
// access to it, and the lifecycle manager shares it by reference.
type Manager struct {
	state  types.RiskState
	logger *logger.Logger
}

// NewManager creates a manager for the given balance.
func NewManager(balance float64, cfg config.RiskConfig, log *logger.Logger) *Manager {
	m := &Manager{
		state: types.RiskState{
			Balance:             balance,
			InitialRiskPerTrade: cfg.RiskPerTrade,
			RiskPerTrade:        cfg.RiskPerTrade,
			MaxRiskPerTrade:     cfg.MaxRiskPerTrade,
			MaxDrawdown:         cfg.MaxDrawdown,
			PositionSizeLimit:   cfg.PositionSizeLimit,
			OpenTradeCount:      0,
			MaxTrades:           cfg.MaxTrades,
		},
		logger: log,
	}

	log.Info("Risk manager initialized",
		zap.Float64("balance", balance),
		zap.Float64("risk_per_trade", cfg.RiskPerTrade),
		zap.Float64("max_drawdown", cfg.MaxDrawdown),
	)

	return m
}

// PositionSize returns the quantity to buy at price.
//
// The risk amount is balance * risk per trade, capped at balance * position
// size limit, divided by price and rounded to six decimal places. When
// riskPerTrade is None the current adjusted risk is used. Invalid input
// yields 0.
func (m *Manager) PositionSize(price float64, riskPerTrade optional.Option[float64]) float64 {
	risk := riskPerTrade.TakeOr(m.state.RiskPerTrade)

	if price <= 0 || m.state.Balance <= 0 || !isFinite(price) || !isFinite(risk) || risk < 0 {
		m.logger.Warn("Invalid price or balance for position sizing",
			zap.Float64("price", price),
			zap.Float64("balance", m.state.Balance),
		)

		return 0
	}

	riskAmount := m.state.Balance * risk
	maxTradeAmount := m.state.Balance * m.state.PositionSizeLimit

	size := math.Min(riskAmount, maxTradeAmount) / price
	size = utils.RoundToDecimals(size, sizePrecision)

	// rounding up may push the notional over the cap
	if size*price > maxTradeAmount {
		m.logger.Warn("Position size exceeds max trade amount",
			zap.Float64("size", size),
			zap.Float64("max_trade_amount", maxTradeAmount),
		)

		size = maxTradeAmount / price
	}

	return size
}

// AdjustRisk scales the initial risk per trade down as drawdown and
// volatility (both in percent) grow. The result stays within
// [MinRiskPerTrade, MaxRiskPerTrade].
func (m *Manager) AdjustRisk(drawdownPct, volatilityPct float64) {
	if !isFinite(drawdownPct) || !isFinite(volatilityPct) {
		m.logger.Warn("Ignoring risk adjustment with non finite input",
			zap.Float64("drawdown", drawdownPct),
			zap.Float64("volatility", volatilityPct),
		)

		return
	}

	drawdownFactor := math.Max(0, 1-drawdownPct/100)
	volatilityFactor := math.Max(0.5, 1-volatilityPct/100)
	adjusted := m.state.InitialRiskPerTrade * drawdownFactor * volatilityFactor

	m.state.RiskPerTrade = math.Max(MinRiskPerTrade, math.Min(m.state.MaxRiskPerTrade, adjusted))

	m.logger.Info("Risk adjusted",
		zap.Float64("risk_per_trade", m.state.RiskPerTrade),
		zap.Float64("drawdown", drawdownPct),
		zap.Float64("volatility", volatilityPct),
	)
}

// CanOpenTrade reports whether another trade fits under the max trade count.
func (m *Manager) CanOpenTrade() bool {
	return m.state.OpenTradeCount < m.state.MaxTrades
}

// WithinDrawdownLimit reports whether the drawdown (in percent) is still
// below the configured max drawdown.
func (m *Manager) WithinDrawdownLimit(drawdownPct float64) bool {
	return drawdownPct < m.state.MaxDrawdown*100
}

// OpenTrade records a newly opened trade.
func (m *Manager) OpenTrade() {
	m.state.OpenTradeCount++
}

// CloseTrade records a closed trade. The count never goes below zero.
func (m *Manager) CloseTrade() {
	if m.state.OpenTradeCount > 0 {
		m.state.OpenTradeCount--
	}
}

// Volatility returns the annualized standard deviation of the trailing window
// simple returns of prices, in percent. Fewer than window prices yield 0.
func (m *Manager) Volatility(prices []float64, window int) float64 {
	if window <= 0 || len(prices) < window {
		return 0
	}

	returns := utils.SimpleReturns(prices)
	if len(returns) > window {
		returns = returns[len(returns)-window:]
	}

	volatility := utils.StdDev(returns) * math.Sqrt(TradingDaysPerYear) * 100
	if !isFinite(volatility) {
		m.logger.Warn("Volatility is not finite", zap.Int("prices", len(prices)))

		return 0
	}

	return volatility
}

// Drawdown returns the drawdown at the end of the equity curve in percent,
// measured from the running peak. The result is within [0, 100].
func (m *Manager) Drawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}

	drawdowns := utils.DrawdownSeries(equity)

	return clamp(drawdowns[len(drawdowns)-1], 0, 100)
}

// UpdateBalance replaces the balance.
func (m *Manager) UpdateBalance(balance float64) {
	m.state.Balance = balance

	m.logger.Info("Balance updated", zap.Float64("balance", balance))
}

// Balance returns the current balance.
func (m *Manager) Balance() float64 {
	return m.state.Balance
}

// State returns a copy of the risk state.
func (m *Manager) State() types.RiskState {
	return m.state
}

// Clone returns an independent manager with a copy of the current state.
func (m *Manager) Clone() *Manager {
	return &Manager{
		state:  m.state,
		logger: m.logger,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
