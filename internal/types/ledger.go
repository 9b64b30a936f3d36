package types

import (
	"time"

	"github.com/moznion/go-optional"
)

type LedgerAction string

const (
	LedgerActionEnter LedgerAction = "enter"
	LedgerActionExit  LedgerAction = "exit"
)

// LedgerEntry is one append-only trade ledger record.
// StopLoss is only set on entries, PnL only on exits.
type LedgerEntry struct {
	ID        string                   `json:"id"`
	Timestamp time.Time                `json:"timestamp"`
	Symbol    string                   `json:"symbol"`
	Action    LedgerAction             `json:"action"`
	Side      PositionSide             `json:"side"`
	Price     float64                  `json:"price"`
	Size      float64                  `json:"size"`
	StopLoss  optional.Option[float64] `json:"stop_loss"`
	PnL       optional.Option[float64] `json:"pnl"`
	Balance   float64                  `json:"balance"`
	Reason    string                   `json:"reason"`
}

// IsClosed reports whether the entry records a position exit.
func (e LedgerEntry) IsClosed() bool {
	return e.Action == LedgerActionExit
}
