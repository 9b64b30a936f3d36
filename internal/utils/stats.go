package utils

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// StdDev returns the population standard deviation (ddof 0), or 0 for an empty slice.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := Mean(values)
	sum := 0.0

	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}

	return math.Sqrt(sum / float64(len(values)))
}

// Percentile returns the p-th percentile (0-100) using linear interpolation
// between the closest ranks. The input is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))

	if lo == hi {
		return sorted[lo]
	}

	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

// MinMax returns the smallest and largest value, or zeros for an empty slice.
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	return lo, hi
}

// SimpleReturns returns (v[i]-v[i-1])/v[i-1] for consecutive values.
// A zero previous value yields a zero return.
func SimpleReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}

		returns[i-1] = (values[i] - values[i-1]) / values[i-1]
	}

	return returns
}

// DrawdownSeries returns (running_peak - v) / |running_peak| * 100 for each
// value, capped at 100. Any fall from a zero peak counts as a full drawdown.
func DrawdownSeries(equity []float64) []float64 {
	drawdowns := make([]float64, len(equity))
	peak := math.Inf(-1)

	for i, v := range equity {
		peak = math.Max(peak, v)
		if v >= peak {
			continue
		}

		// a fall from a non positive peak is measured against its magnitude
		if peak == 0 {
			drawdowns[i] = 100
			continue
		}

		drawdowns[i] = math.Min((peak-v)/math.Abs(peak)*100, 100)
	}

	return drawdowns
}

// MaxDrawdown returns the largest drawdown of the equity curve in percent.
func MaxDrawdown(equity []float64) float64 {
	_, hi := MinMax(DrawdownSeries(equity))

	return hi
}
