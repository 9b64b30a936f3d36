package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-pilot/internal/types"
)

// Lifecycle callback types for the live trading loop.
// Callbacks with an error return abort the operation that triggered them.

// OnEngineStartCallback is called once the engine started its control loop.
type OnEngineStartCallback func(symbols []string, interval time.Duration) error

// OnEngineStopCallback is called when the control loop exits (always called via defer).
type OnEngineStopCallback func(err error)

// OnCycleCallback is called after every completed polling cycle.
type OnCycleCallback func(cycle int, balance float64) error

// OnPositionOpenedCallback is called after a buy order filled and the position is open.
type OnPositionOpenedCallback func(position types.Position) error

// OnPositionClosedCallback is called after an exit order filled and the position is closed.
type OnPositionClosedCallback func(entry types.LedgerEntry) error

// OnErrorCallback is called when a non-fatal error occurs.
// symbol is empty for errors that are not tied to a symbol.
type OnErrorCallback func(symbol string, err error)

// TradingCallbacks holds all lifecycle callback functions for the trading engine.
// All fields are pointers - nil means no callback will be invoked.
type TradingCallbacks struct {
	// OnEngineStart is called when the engine starts successfully.
	OnEngineStart *OnEngineStartCallback

	// OnEngineStop is called when the engine stops (always called via defer).
	OnEngineStop *OnEngineStopCallback

	// OnCycle is called after every completed polling cycle.
	OnCycle *OnCycleCallback

	// OnPositionOpened is called when a position was opened.
	OnPositionOpened *OnPositionOpenedCallback

	// OnPositionClosed is called when a position was closed.
	OnPositionClosed *OnPositionClosedCallback

	// OnError is called when a non-fatal error occurs.
	OnError *OnErrorCallback
}

// Status is a point in time view of the engine.
type Status struct {
	Running       bool            `json:"running"`
	Provider      string          `json:"provider"`
	TradingPairs  []string        `json:"trading_pairs"`
	Interval      string          `json:"interval"`
	Cycles        int             `json:"cycles"`
	LastCycle     *time.Time      `json:"last_cycle,omitempty"`
	LastError     string          `json:"last_error,omitempty"`
	OpenPositions int             `json:"open_positions"`
	Risk          types.RiskState `json:"risk"`
}

// TradingEngine runs the live polling loop and exposes its state to the control surface.
type TradingEngine interface {
	// Start launches the control loop. Calling Start on a running engine is a no-op.
	// The loop runs until Stop is called or ctx is done.
	Start(ctx context.Context) error

	// Stop ends the control loop and waits for the current cycle to return.
	// Calling Stop on a stopped engine is a no-op.
	Stop() error

	// Status returns the current engine status.
	Status() Status

	// ActivePositions returns the open positions ordered by symbol.
	ActivePositions() []types.Position

	// TradeHistory returns every ledger entry in append order.
	TradeHistory() ([]types.LedgerEntry, error)

	// Balance returns the last known quote balance.
	Balance() float64

	// TradingPairs returns the symbols analysed for entries: the configured
	// ones, narrowed at Start to those the exchange lists and the account can trade.
	TradingPairs() []string
}
