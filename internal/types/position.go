package types

import "time"

type PositionSide string

const (
	PositionSideLong  PositionSide = "long"
	PositionSideShort PositionSide = "short"
)

// Position is the single open position a symbol may hold.
// It is created on entry, updated every evaluation cycle and removed on exit.
type Position struct {
	ID           string       `json:"id" yaml:"id"`
	Symbol       string       `json:"symbol" yaml:"symbol"`
	Side         PositionSide `json:"side" yaml:"side"`
	EntryPrice   float64      `json:"entry_price" yaml:"entry_price"`
	Size         float64      `json:"size" yaml:"size"`
	StopLoss     float64      `json:"stop_loss" yaml:"stop_loss"`
	EntryTime    time.Time    `json:"entry_time" yaml:"entry_time"`
	CurrentPrice float64      `json:"current_price" yaml:"current_price"`
	PnL          float64      `json:"pnl" yaml:"pnl"`
	PnLPercent   float64      `json:"pnl_percent" yaml:"pnl_percent"`
}

// UnrealizedPnL returns the pnl of the position at the given price.
func (p Position) UnrealizedPnL(price float64) float64 {
	if p.Side == PositionSideShort {
		return (p.EntryPrice - price) * p.Size
	}

	return (price - p.EntryPrice) * p.Size
}

// PnLPercentAt returns the pnl at the given price as a percentage of the entry notional.
func (p Position) PnLPercentAt(price float64) float64 {
	notional := p.EntryPrice * p.Size
	if notional == 0 {
		return 0
	}

	return p.UnrealizedPnL(price) / notional * 100
}

// RiskState is the mutable risk budget owned by the risk manager.
type RiskState struct {
	Balance             float64 `json:"balance" yaml:"balance"`
	InitialRiskPerTrade float64 `json:"initial_risk_per_trade" yaml:"initial_risk_per_trade"`
	RiskPerTrade        float64 `json:"risk_per_trade" yaml:"risk_per_trade"`
	MaxRiskPerTrade     float64 `json:"max_risk_per_trade" yaml:"max_risk_per_trade"`
	MaxDrawdown         float64 `json:"max_drawdown" yaml:"max_drawdown"`
	PositionSizeLimit   float64 `json:"position_size_limit" yaml:"position_size_limit"`
	OpenTradeCount      int     `json:"open_trade_count" yaml:"open_trade_count"`
	MaxTrades           int     `json:"max_trades" yaml:"max_trades"`
}
