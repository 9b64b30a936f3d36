package types

import (
	"math"
	"time"
)

// MarketData is a single OHLCV candle.
type MarketData struct {
	Id     string    `json:"id" yaml:"id"`
	Symbol string    `json:"symbol" yaml:"symbol"`
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// IsValid reports whether every price and volume field is a finite number.
func (m MarketData) IsValid() bool {
	for _, v := range []float64{m.Open, m.High, m.Low, m.Close, m.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// Closes returns the close prices of a candle series in order.
func Closes(candles []MarketData) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	return closes
}
