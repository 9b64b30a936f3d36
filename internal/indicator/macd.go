package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
)

// MACD column order returned by Calculate.
const (
	MACDColumnLine = iota
	MACDColumnSignal
	MACDColumnFast
	MACDColumnSlow
)

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with the default 12/26/9 configuration.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   12,
		slowPeriod:   26,
		signalPeriod: 9,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Lookback implements Indicator.
func (m *MACD) Lookback() int {
	return m.slowPeriod
}

// Config configures the MACD indicator. Expected parameters: fast (int), slow (int), signal (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fast (int), slow (int), signal (int)")
	}

	periods := make([]int, 3)

	for i := range periods {
		period, _, err := validatePeriod(params, i)
		if err != nil {
			return err
		}

		periods[i] = period
	}

	if periods[0] >= periods[1] {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fast period %d must be shorter than slow period %d", periods[0], periods[1])
	}

	m.fastPeriod, m.slowPeriod, m.signalPeriod = periods[0], periods[1], periods[2]

	return nil
}

// Calculate returns the MACD line, its signal line, and the fast and slow EMAs the line is built from.
func (m *MACD) Calculate(candles []types.MarketData) ([][]float64, error) {
	if err := requireLookback(m.Name(), m.slowPeriod, candles); err != nil {
		return nil, err
	}

	closes := types.Closes(candles)
	fast := emaOf(closes, m.fastPeriod)
	slow := emaOf(closes, m.slowPeriod)

	line := nanSlice(len(closes))

	for i := range closes {
		if !math.IsNaN(fast[i]) && !math.IsNaN(slow[i]) {
			line[i] = fast[i] - slow[i]
		}
	}

	signal := emaOf(line, m.signalPeriod)

	return [][]float64{line, signal, fast, slow}, nil
}
