package mocks

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type DataGeneratorTestSuite struct {
	suite.Suite
}

func TestDataGeneratorSuite(t *testing.T) {
	suite.Run(t, new(DataGeneratorTestSuite))
}

func (suite *DataGeneratorTestSuite) TestGenerate() {
	config := DefaultConfig()
	config.Count = 100

	data := NewDataGenerator(42).Generate(config)
	suite.Len(data, 100)

	for i, d := range data {
		suite.Equal(config.Symbol, d.Symbol)
		suite.Positive(d.Low)
		suite.GreaterOrEqual(d.High, d.Low)
		suite.True(d.IsValid())

		if i > 0 {
			suite.Equal(config.Interval, d.Time.Sub(data[i-1].Time))
		}
	}
}

func (suite *DataGeneratorTestSuite) TestReproducible() {
	config := DefaultConfig()
	config.Count = 20

	suite.Equal(NewDataGenerator(42).Generate(config), NewDataGenerator(42).Generate(config))
	suite.NotEqual(NewDataGenerator(42).Generate(config), NewDataGenerator(123).Generate(config))
}

func (suite *DataGeneratorTestSuite) TestLinearAndFlat() {
	rising := Linear("ETHUSDT", 5, 100, 2)
	suite.Len(rising, 5)
	suite.Equal(108.0, rising[4].Close)
	suite.Equal(109.0, rising[4].High)
	suite.True(rising[4].Time.After(rising[3].Time))

	flat := Flat("ETHUSDT", 3, 50)
	for _, c := range flat {
		suite.Equal(50.0, c.Close)
	}
}
