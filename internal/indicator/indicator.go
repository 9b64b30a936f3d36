package indicator

import (
	"github.com/rxtech-lab/argo-pilot/internal/types"
)

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Lookback returns the minimum number of candles the indicator needs
	Lookback() int
	// Config configures the indicator parameters
	Config(params ...any) error
	// Calculate returns one or more columns aligned with candles.
	// Undefined values are NaN; callers apply the gap policy.
	// Returns an InsufficientDataError when len(candles) < Lookback().
	Calculate(candles []types.MarketData) ([][]float64, error)
}
