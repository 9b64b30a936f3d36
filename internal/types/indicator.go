package types

type IndicatorType string

const (
	IndicatorTypeEMA20         IndicatorType = "ema20"
	IndicatorTypeEMA50         IndicatorType = "ema50"
	IndicatorTypeEMA200        IndicatorType = "ema200"
	IndicatorTypeRSI           IndicatorType = "rsi"
	IndicatorTypeMACD          IndicatorType = "macd"
	IndicatorTypeADX           IndicatorType = "adx"
	IndicatorTypeATR           IndicatorType = "atr"
	IndicatorTypeTrendStrength IndicatorType = "trend_strength"
)

// Snapshot holds every indicator value for a single candle.
// Values that were undefined at that candle are already forward filled and then zero filled.
type Snapshot struct {
	EMA20         float64 `json:"ema20" yaml:"ema20"`
	EMA50         float64 `json:"ema50" yaml:"ema50"`
	EMA200        float64 `json:"ema200" yaml:"ema200"`
	EMAFast       float64 `json:"ema_fast" yaml:"ema_fast"`
	EMASlow       float64 `json:"ema_slow" yaml:"ema_slow"`
	RSI           float64 `json:"rsi" yaml:"rsi"`
	MACD          float64 `json:"macd" yaml:"macd"`
	MACDSignal    float64 `json:"macd_signal" yaml:"macd_signal"`
	ADX           float64 `json:"adx" yaml:"adx"`
	DIPlus        float64 `json:"di_plus" yaml:"di_plus"`
	DIMinus       float64 `json:"di_minus" yaml:"di_minus"`
	ATR           float64 `json:"atr" yaml:"atr"`
	TrendStrength int     `json:"trend_strength" yaml:"trend_strength"`
	Close         float64 `json:"close" yaml:"close"`
}

// IndicatorSeries is the column form of the indicator engine output.
// Every slice has the same length as the candle series it was computed from.
type IndicatorSeries struct {
	EMA20         []float64
	EMA50         []float64
	EMA200        []float64
	EMAFast       []float64
	EMASlow       []float64
	RSI           []float64
	MACD          []float64
	MACDSignal    []float64
	ADX           []float64
	DIPlus        []float64
	DIMinus       []float64
	ATR           []float64
	TrendStrength []int
	Close         []float64
}

// Len returns the number of candles covered by the series.
func (s IndicatorSeries) Len() int {
	return len(s.Close)
}

// At returns the snapshot at index i.
func (s IndicatorSeries) At(i int) Snapshot {
	return Snapshot{
		EMA20:         s.EMA20[i],
		EMA50:         s.EMA50[i],
		EMA200:        s.EMA200[i],
		EMAFast:       s.EMAFast[i],
		EMASlow:       s.EMASlow[i],
		RSI:           s.RSI[i],
		MACD:          s.MACD[i],
		MACDSignal:    s.MACDSignal[i],
		ADX:           s.ADX[i],
		DIPlus:        s.DIPlus[i],
		DIMinus:       s.DIMinus[i],
		ATR:           s.ATR[i],
		TrendStrength: s.TrendStrength[i],
		Close:         s.Close[i],
	}
}

// Latest returns the snapshot of the most recent candle.
// The series must not be empty.
func (s IndicatorSeries) Latest() Snapshot {
	return s.At(s.Len() - 1)
}
