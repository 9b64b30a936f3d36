package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"go.uber.org/zap"
)

// Engine computes the full indicator series for a candle series.
type Engine struct {
	registry IndicatorRegistry
	logger   *logger.Logger
}

// NewEngine creates an engine backed by the default registry.
func NewEngine(log *logger.Logger) *Engine {
	return NewEngineWithRegistry(NewDefaultRegistry(), log)
}

// NewEngineWithRegistry creates an engine backed by a custom registry.
// The registry must hold ema20, ema50, ema200, rsi, macd, adx and atr.
func NewEngineWithRegistry(registry IndicatorRegistry, log *logger.Logger) *Engine {
	return &Engine{
		registry: registry,
		logger:   log,
	}
}

// Compute returns every indicator for the series, one value per candle.
//
// An empty series or a candle with a non finite field is a data error.
// An indicator whose lookback is not satisfied yields a zero column rather
// than an error. Every column is forward filled and then zero filled.
func (e *Engine) Compute(candles []types.MarketData) (types.IndicatorSeries, error) {
	if len(candles) == 0 {
		return types.IndicatorSeries{}, errors.NewInsufficientDataError(1, 0, "", "no candles to compute indicators from")
	}

	for i, c := range candles {
		if !c.IsValid() {
			return types.IndicatorSeries{}, errors.Newf(errors.ErrCodeInvalidCandle,
				"candle %d of %s has a non finite value", i, c.Symbol)
		}
	}

	if warmUp := e.registry.WarmUp(); len(candles) < warmUp {
		e.logger.Debug("Series shorter than the longest lookback, some columns stay neutral",
			zap.String("symbol", candles[0].Symbol),
			zap.Int("candles", len(candles)),
			zap.Int("warm_up", warmUp),
		)
	}

	ema20, err := e.column(types.IndicatorTypeEMA20, candles, 1)
	if err != nil {
		return types.IndicatorSeries{}, err
	}

	ema50, err := e.column(types.IndicatorTypeEMA50, candles, 1)
	if err != nil {
		return types.IndicatorSeries{}, err
	}

	ema200, err := e.column(types.IndicatorTypeEMA200, candles, 1)
	if err != nil {
		return types.IndicatorSeries{}, err
	}

	rsi, err := e.column(types.IndicatorTypeRSI, candles, 1)
	if err != nil {
		return types.IndicatorSeries{}, err
	}

	macd, err := e.column(types.IndicatorTypeMACD, candles, 4)
	if err != nil {
		return types.IndicatorSeries{}, err
	}

	adx, err := e.column(types.IndicatorTypeADX, candles, 3)
	if err != nil {
		return types.IndicatorSeries{}, err
	}

	atr, err := e.column(types.IndicatorTypeATR, candles, 1)
	if err != nil {
		return types.IndicatorSeries{}, err
	}

	// trend strength is taken from the raw EMAs so undefined values stay neutral
	trend := TrendStrength(ema20[0], ema50[0], ema200[0])

	return types.IndicatorSeries{
		EMA20:         fillGaps(ema20[0]),
		EMA50:         fillGaps(ema50[0]),
		EMA200:        fillGaps(ema200[0]),
		EMAFast:       fillGaps(macd[MACDColumnFast]),
		EMASlow:       fillGaps(macd[MACDColumnSlow]),
		RSI:           fillGaps(rsi[0]),
		MACD:          fillGaps(macd[MACDColumnLine]),
		MACDSignal:    fillGaps(macd[MACDColumnSignal]),
		ADX:           fillGaps(adx[ADXColumnADX]),
		DIPlus:        fillGaps(adx[ADXColumnDIPlus]),
		DIMinus:       fillGaps(adx[ADXColumnDIMinus]),
		ATR:           fillGaps(atr[0]),
		TrendStrength: trend,
		Close:         types.Closes(candles),
	}, nil
}

// column runs a registered indicator. A lookback shortfall becomes width NaN columns.
func (e *Engine) column(name types.IndicatorType, candles []types.MarketData, width int) ([][]float64, error) {
	ind, err := e.registry.GetIndicator(name)
	if err != nil {
		return nil, err
	}

	columns, err := ind.Calculate(candles)
	if err != nil {
		if !errors.IsInsufficientDataError(err) {
			return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to calculate %s", name)
		}

		e.logger.Debug("Indicator lookback not satisfied",
			zap.String("indicator", string(name)),
			zap.Int("required", ind.Lookback()),
			zap.Int("actual", len(candles)),
		)

		columns = make([][]float64, width)
		for i := range columns {
			columns[i] = nanSlice(len(candles))
		}
	}

	if len(columns) != width {
		return nil, errors.Newf(errors.ErrCodeIndicatorCalculation, "%s returned %d columns, expected %d", name, len(columns), width)
	}

	return columns, nil
}

// TrendStrength returns +1 where ema20 > ema50 > ema200, -1 where
// ema20 < ema50 < ema200 and 0 otherwise, including where any value is undefined.
func TrendStrength(ema20, ema50, ema200 []float64) []int {
	trend := make([]int, len(ema20))

	for i := range ema20 {
		a, b, c := ema20[i], ema50[i], ema200[i]
		if math.IsNaN(a) || math.IsNaN(b) || math.IsNaN(c) {
			continue
		}

		switch {
		case a > b && b > c:
			trend[i] = 1
		case a < b && b < c:
			trend[i] = -1
		}
	}

	return trend
}
