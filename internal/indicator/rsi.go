package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-pilot/internal/types"
)

// RSI represents the Relative Strength Index indicator with Wilder smoothing.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with the default 14 period window.
func NewRSI() Indicator {
	return &RSI{
		period: 14,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Lookback implements Indicator.
func (r *RSI) Lookback() int {
	return r.period
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	period, ok, err := validatePeriod(params, 0)
	if err != nil {
		return err
	}

	if ok {
		r.period = period
	}

	return nil
}

// Calculate returns a single RSI column.
// Gains and losses are smoothed with alpha 1/period. When the average loss is
// zero the RSI is 100.
func (r *RSI) Calculate(candles []types.MarketData) ([][]float64, error) {
	if err := requireLookback(r.Name(), r.period, candles); err != nil {
		return nil, err
	}

	gains := make([]float64, len(candles))
	losses := make([]float64, len(candles))

	// the first candle has no change and counts as a zero move
	for i := 1; i < len(candles); i++ {
		diff := candles[i].Close - candles[i-1].Close
		if diff > 0 {
			gains[i] = diff
		} else if diff < 0 {
			losses[i] = -diff
		}
	}

	alpha := 1.0 / float64(r.period)
	avgGain := ewm(gains, alpha, r.period)
	avgLoss := ewm(losses, alpha, r.period)

	rsi := nanSlice(len(candles))

	for i := range candles {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}

		if avgLoss[i] == 0 {
			rsi[i] = 100

			continue
		}

		rs := avgGain[i] / avgLoss[i]
		rsi[i] = 100 - 100/(1+rs)
	}

	return [][]float64{rsi}, nil
}
