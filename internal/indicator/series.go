package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
)

// ewm is an exponentially weighted mean without bias adjustment:
// y[0] = x[0], y[t] = (1-alpha)*y[t-1] + alpha*x[t].
// Leading NaNs are skipped, the first finite value seeds the mean, and
// outputs stay NaN until minPeriods finite observations have been seen.
// A NaN after the seed carries the previous mean forward.
func ewm(values []float64, alpha float64, minPeriods int) []float64 {
	out := nanSlice(len(values))
	mean := math.NaN()
	observed := 0

	for i, v := range values {
		if isGap(v) {
			if observed >= minPeriods && observed > 0 {
				out[i] = mean
			}

			continue
		}

		observed++

		if math.IsNaN(mean) {
			mean = v
		} else {
			mean = (1-alpha)*mean + alpha*v
		}

		if observed >= minPeriods {
			out[i] = mean
		}
	}

	return out
}

// spanAlpha converts an ewm span into its smoothing factor 2/(n+1).
func spanAlpha(span int) float64 {
	return 2.0 / (float64(span) + 1.0)
}

// trueRange returns max(high-low, |high-prev_close|, |low-prev_close|).
// The first candle has no previous close, so its true range is NaN.
func trueRange(candles []types.MarketData) []float64 {
	tr := nanSlice(len(candles))

	for i := 1; i < len(candles); i++ {
		prevClose := candles[i-1].Close
		c := candles[i]
		tr[i] = math.Max(c.High-c.Low, math.Max(math.Abs(c.High-prevClose), math.Abs(c.Low-prevClose)))
	}

	return tr
}

// fillGaps forward fills NaN and ±Inf values and then replaces whatever is
// still missing at the head of the series with zero.
func fillGaps(values []float64) []float64 {
	out := make([]float64, len(values))
	last := math.NaN()

	for i, v := range values {
		if !isGap(v) {
			last = v
		}

		if math.IsNaN(last) {
			out[i] = 0
		} else {
			out[i] = last
		}
	}

	return out
}

func isGap(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// safeDiv returns a/b, or 0 when b is zero.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}

	return a / b
}

func requireLookback(name types.IndicatorType, lookback int, candles []types.MarketData) error {
	if len(candles) < lookback {
		return errors.NewInsufficientDataErrorf(lookback, len(candles), symbolOf(candles),
			"insufficient data for %s calculation: needed %d rows, got %d", name, lookback, len(candles))
	}

	return nil
}

func symbolOf(candles []types.MarketData) string {
	if len(candles) == 0 {
		return ""
	}

	return candles[0].Symbol
}

func validatePeriod(params []any, index int) (int, bool, error) {
	if len(params) <= index {
		return 0, false, nil
	}

	period, ok := params[index].(int)
	if !ok {
		return 0, false, errors.New(errors.ErrCodeInvalidParameter, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return 0, false, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return period, true, nil
}
