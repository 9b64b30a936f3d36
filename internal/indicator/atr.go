package indicator

import (
	"github.com/rxtech-lab/argo-pilot/internal/types"
)

// ATR represents the Average True Range indicator.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator with default configuration.
func NewATR() Indicator {
	return &ATR{
		period: 14,
	}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Lookback implements Indicator.
func (a *ATR) Lookback() int {
	return a.period
}

// Config configures the ATR indicator. Expected parameters: period (int).
func (a *ATR) Config(params ...any) error {
	period, ok, err := validatePeriod(params, 0)
	if err != nil {
		return err
	}

	if ok {
		a.period = period
	}

	return nil
}

// Calculate returns a single ATR column: the true range smoothed with span
// period and no bias adjustment. There is no minimum period, so the value is
// defined from the second candle onwards.
func (a *ATR) Calculate(candles []types.MarketData) ([][]float64, error) {
	if err := requireLookback(a.Name(), a.period, candles); err != nil {
		return nil, err
	}

	return [][]float64{ewm(trueRange(candles), spanAlpha(a.period), 0)}, nil
}
