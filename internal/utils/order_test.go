package utils

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestRoundToDecimalPrecision() {
	tests := []struct {
		name      string
		quantity  float64
		precision int
		expected  float64
	}{
		{name: "rounds down", quantity: 1.23456789, precision: 4, expected: 1.2345},
		{name: "already precise", quantity: 0.5, precision: 8, expected: 0.5},
		{name: "zero precision", quantity: 9.99, precision: 0, expected: 9},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.Equal(tt.expected, RoundToDecimalPrecision(tt.quantity, tt.precision))
		})
	}
}

func (suite *UtilsTestSuite) TestRoundToDecimals() {
	suite.Equal(1.0, RoundToDecimals(0.9999996, 6))
	suite.Equal(0.333333, RoundToDecimals(1.0/3.0, 6))
	suite.Equal(2.5, RoundToDecimals(2.5, 6))
}

func (suite *UtilsTestSuite) TestFormatQuantity() {
	suite.Equal("0.12345678", FormatQuantity(0.123456789, 8))
	suite.Equal("1", FormatQuantity(1, 8))
}

func (suite *UtilsTestSuite) TestMeanAndStdDev() {
	suite.Equal(0.0, Mean(nil))
	suite.Equal(0.0, StdDev(nil))
	suite.Equal(2.5, Mean([]float64{1, 2, 3, 4}))
	// population standard deviation
	suite.InDelta(2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
	suite.Equal(0.0, StdDev([]float64{3}))
}

func (suite *UtilsTestSuite) TestPercentile() {
	values := []float64{5, 1, 4, 2, 3}

	suite.Equal(1.0, Percentile(values, 0))
	suite.Equal(3.0, Percentile(values, 50))
	suite.Equal(5.0, Percentile(values, 100))
	suite.InDelta(1.2, Percentile(values, 5), 1e-12)
	suite.InDelta(4.8, Percentile(values, 95), 1e-12)
	// input order is preserved
	suite.Equal([]float64{5, 1, 4, 2, 3}, values)
	suite.Equal(7.0, Percentile([]float64{7}, 25))
}

func (suite *UtilsTestSuite) TestSimpleReturns() {
	suite.Empty(SimpleReturns([]float64{100}))
	suite.InDeltaSlice([]float64{0.1, -0.5}, SimpleReturns([]float64{100, 110, 55}), 1e-12)
	suite.Equal([]float64{0}, SimpleReturns([]float64{0, 10}))
}

func (suite *UtilsTestSuite) TestDrawdown() {
	suite.Equal(0.0, MaxDrawdown(nil))
	suite.Equal(0.0, MaxDrawdown([]float64{100, 100, 120}))
	suite.InDeltaSlice([]float64{0, 0, 25, 0, 10}, DrawdownSeries([]float64{100, 120, 90, 130, 117}), 1e-12)
	suite.InDelta(25.0, MaxDrawdown([]float64{100, 120, 90, 130, 117}), 1e-12)
}

func (suite *UtilsTestSuite) TestDrawdownNonPositiveEquity() {
	suite.InDeltaSlice([]float64{0, 100}, DrawdownSeries([]float64{-1, -2}), 1e-12)
	suite.InDeltaSlice([]float64{0, 50, 0}, DrawdownSeries([]float64{-2, -3, -1}), 1e-12)
	suite.Equal([]float64{0, 100}, DrawdownSeries([]float64{0, -5}))
	suite.Equal([]float64{0, 100}, DrawdownSeries([]float64{100, -50}))
	suite.Equal(0.0, MaxDrawdown([]float64{-5, -3, -3, 0}))
}
