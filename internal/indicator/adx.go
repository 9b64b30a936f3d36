package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-pilot/internal/types"
)

// ADX column order returned by Calculate.
const (
	ADXColumnADX = iota
	ADXColumnDIPlus
	ADXColumnDIMinus
)

// ADX represents the Average Directional Index with its DI+ and DI- components.
type ADX struct {
	period int
}

// NewADX creates a new ADX indicator with the default 14 period window.
func NewADX() Indicator {
	return &ADX{
		period: 14,
	}
}

// Name returns the name of the indicator.
func (a *ADX) Name() types.IndicatorType {
	return types.IndicatorTypeADX
}

// Lookback implements Indicator.
func (a *ADX) Lookback() int {
	return a.period
}

// Config configures the ADX indicator. Expected parameters: period (int).
func (a *ADX) Config(params ...any) error {
	period, ok, err := validatePeriod(params, 0)
	if err != nil {
		return err
	}

	if ok {
		a.period = period
	}

	return nil
}

// Calculate returns ADX, DI+ and DI- columns using Wilder smoothing.
//
// The smoothed true range and directional movement are seeded with the sum of
// the first period values and DI is defined from candle `period` onwards.
// ADX is seeded with the mean of the first period DX values, so it is defined
// from candle 2*period-1. Divisions by zero produce 0.
func (a *ADX) Calculate(candles []types.MarketData) ([][]float64, error) {
	if err := requireLookback(a.Name(), a.period, candles); err != nil {
		return nil, err
	}

	n := len(candles)
	period := a.period
	adx := nanSlice(n)
	diPlus := nanSlice(n)
	diMinus := nanSlice(n)

	if n <= period {
		return [][]float64{adx, diPlus, diMinus}, nil
	}

	tr := trueRange(candles)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 1; i < n; i++ {
		up := candles[i].High - candles[i-1].High
		down := candles[i-1].Low - candles[i].Low

		if up > down && up > 0 {
			plusDM[i] = up
		}

		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	var smoothTR, smoothPlus, smoothMinus float64
	for i := 1; i <= period; i++ {
		smoothTR += tr[i]
		smoothPlus += plusDM[i]
		smoothMinus += minusDM[i]
	}

	dx := nanSlice(n)
	fp := float64(period)

	for i := period; i < n; i++ {
		if i > period {
			smoothTR = smoothTR - smoothTR/fp + tr[i]
			smoothPlus = smoothPlus - smoothPlus/fp + plusDM[i]
			smoothMinus = smoothMinus - smoothMinus/fp + minusDM[i]
		}

		diPlus[i] = 100 * safeDiv(smoothPlus, smoothTR)
		diMinus[i] = 100 * safeDiv(smoothMinus, smoothTR)
		dx[i] = 100 * safeDiv(math.Abs(diPlus[i]-diMinus[i]), diPlus[i]+diMinus[i])
	}

	first := 2*period - 1
	if first >= n {
		return [][]float64{adx, diPlus, diMinus}, nil
	}

	var seed float64
	for i := period; i <= first; i++ {
		seed += dx[i]
	}

	adx[first] = seed / fp

	for i := first + 1; i < n; i++ {
		adx[i] = (adx[i-1]*(fp-1) + dx[i]) / fp
	}

	return [][]float64{adx, diPlus, diMinus}, nil
}
