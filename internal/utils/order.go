package utils

import (
	"github.com/shopspring/decimal"
)

// RoundToDecimalPrecision rounds the quantity down to the specified decimal precision.
// Exchanges reject quantities with more precision than the lot size allows.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	return decimal.NewFromFloat(quantity).Truncate(int32(decimalPrecision)).InexactFloat64()
}

// RoundToDecimals rounds the value half away from zero to the given number of places.
func RoundToDecimals(value float64, places int) float64 {
	return decimal.NewFromFloat(value).Round(int32(places)).InexactFloat64()
}

// FormatQuantity renders a quantity for an order request, rounded down to precision.
func FormatQuantity(quantity float64, decimalPrecision int) string {
	return decimal.NewFromFloat(quantity).Truncate(int32(decimalPrecision)).String()
}
