package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-pilot/internal/types"
)

// EMA represents the Exponential Moving Average indicator.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with the given period.
func NewEMA(period int) Indicator {
	return &EMA{
		period: period,
	}
}

// Name returns ema<period>, e.g. ema20.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorType(fmt.Sprintf("ema%d", e.period))
}

// Lookback implements Indicator.
func (e *EMA) Lookback() int {
	return e.period
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	period, ok, err := validatePeriod(params, 0)
	if err != nil {
		return err
	}

	if ok {
		e.period = period
	}

	return nil
}

// Calculate returns a single EMA column. The first period-1 values are undefined.
func (e *EMA) Calculate(candles []types.MarketData) ([][]float64, error) {
	if err := requireLookback(e.Name(), e.period, candles); err != nil {
		return nil, err
	}

	return [][]float64{emaOf(types.Closes(candles), e.period)}, nil
}

// emaOf smooths values with factor 2/(period+1), seeded at the first value.
func emaOf(values []float64, period int) []float64 {
	return ewm(values, spanAlpha(period), period)
}
