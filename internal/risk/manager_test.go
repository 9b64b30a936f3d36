package risk

import (
	"math"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/stretchr/testify/suite"
)

type RiskManagerTestSuite struct {
	suite.Suite
	cfg config.RiskConfig
	log *logger.Logger
}

func TestRiskManagerSuite(t *testing.T) {
	suite.Run(t, new(RiskManagerTestSuite))
}

func (suite *RiskManagerTestSuite) SetupTest() {
	suite.cfg = config.Default().Risk
	suite.log = logger.NewNopLogger()
}

func (suite *RiskManagerTestSuite) newManager(balance float64) *Manager {
	return NewManager(balance, suite.cfg, suite.log)
}

func (suite *RiskManagerTestSuite) TestPositionSizeUncapped() {
	manager := suite.newManager(10000)

	// risk amount 100, cap 2000
	suite.Equal(1.0, manager.PositionSize(100, optional.None[float64]()))
	suite.Equal(1.0, manager.PositionSize(100, optional.Some(0.01)))
}

func (suite *RiskManagerTestSuite) TestPositionSizeCapped() {
	manager := suite.newManager(10000)

	// risk amount 5000 exceeds the 2000 cap
	suite.Equal(20.0, manager.PositionSize(100, optional.Some(0.5)))
}

func (suite *RiskManagerTestSuite) TestPositionSizeRounding() {
	manager := suite.newManager(10000)

	suite.Equal(0.003333, manager.PositionSize(30000, optional.None[float64]()))
}

func (suite *RiskManagerTestSuite) TestPositionSizeNeverExceedsCap() {
	manager := suite.newManager(1000)

	for _, price := range []float64{0.3, 7, 13.37, 299.99, 31415.9} {
		size := manager.PositionSize(price, optional.Some(1.0))
		suite.LessOrEqual(size*price, 1000*suite.cfg.PositionSizeLimit+1e-9)
	}
}

func (suite *RiskManagerTestSuite) TestPositionSizeInvalidInput() {
	suite.Equal(0.0, suite.newManager(10000).PositionSize(0, optional.None[float64]()))
	suite.Equal(0.0, suite.newManager(10000).PositionSize(-5, optional.None[float64]()))
	suite.Equal(0.0, suite.newManager(10000).PositionSize(math.NaN(), optional.None[float64]()))
	suite.Equal(0.0, suite.newManager(0).PositionSize(100, optional.None[float64]()))
	suite.Equal(0.0, suite.newManager(-10).PositionSize(100, optional.None[float64]()))
}

func (suite *RiskManagerTestSuite) TestPositionSizeMonotonic() {
	prices := []float64{1, 9.5, 100, 2500, 60000}
	balances := []float64{10, 500, 10000, 250000}

	for _, price := range prices {
		previous := 0.0
		for _, balance := range balances {
			size := suite.newManager(balance).PositionSize(price, optional.None[float64]())
			suite.GreaterOrEqual(size, previous, "size must not shrink as balance grows")
			previous = size
		}
	}

	for _, balance := range balances {
		manager := suite.newManager(balance)
		previous := math.Inf(1)

		for _, price := range prices {
			size := manager.PositionSize(price, optional.None[float64]())
			suite.LessOrEqual(size, previous, "size must not grow as price grows")
			previous = size
		}
	}
}

func (suite *RiskManagerTestSuite) TestAdjustRisk() {
	tests := []struct {
		name       string
		drawdown   float64
		volatility float64
		expected   float64
	}{
		{name: "calm market", drawdown: 0, volatility: 0, expected: 0.01},
		{name: "drawdown halves risk", drawdown: 50, volatility: 0, expected: 0.005},
		{name: "volatility floor", drawdown: 0, volatility: 200, expected: 0.005},
		{name: "moderate conditions", drawdown: 10, volatility: 20, expected: 0.0072},
		{name: "floored at minimum", drawdown: 90, volatility: 90, expected: MinRiskPerTrade},
		{name: "total drawdown", drawdown: 150, volatility: 0, expected: MinRiskPerTrade},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			manager := suite.newManager(10000)
			manager.AdjustRisk(tt.drawdown, tt.volatility)
			suite.InDelta(tt.expected, manager.State().RiskPerTrade, 1e-12)
		})
	}
}

func (suite *RiskManagerTestSuite) TestAdjustRiskCappedAtMax() {
	suite.cfg.RiskPerTrade = 0.05
	suite.cfg.MaxRiskPerTrade = 0.02
	manager := suite.newManager(10000)

	manager.AdjustRisk(0, 0)
	suite.Equal(0.02, manager.State().RiskPerTrade)
}

func (suite *RiskManagerTestSuite) TestAdjustRiskUsesInitialRisk() {
	manager := suite.newManager(10000)

	manager.AdjustRisk(50, 0)
	manager.AdjustRisk(0, 0)
	suite.Equal(0.01, manager.State().RiskPerTrade)

	// the adjusted risk drives sizing
	manager.AdjustRisk(50, 0)
	suite.Equal(0.5, manager.PositionSize(100, optional.None[float64]()))
}

func (suite *RiskManagerTestSuite) TestTradeCount() {
	manager := suite.newManager(10000)

	for i := 0; i < suite.cfg.MaxTrades; i++ {
		suite.True(manager.CanOpenTrade())
		manager.OpenTrade()
	}

	suite.False(manager.CanOpenTrade())
	manager.CloseTrade()
	suite.True(manager.CanOpenTrade())

	for i := 0; i < 10; i++ {
		manager.CloseTrade()
	}

	suite.Equal(0, manager.State().OpenTradeCount)
}

func (suite *RiskManagerTestSuite) TestWithinDrawdownLimit() {
	manager := suite.newManager(10000)

	suite.True(manager.WithinDrawdownLimit(9.99))
	suite.False(manager.WithinDrawdownLimit(10))
}

func (suite *RiskManagerTestSuite) TestVolatility() {
	manager := suite.newManager(10000)

	suite.Equal(0.0, manager.Volatility([]float64{100, 101}, 20))
	suite.Equal(0.0, manager.Volatility(make([]float64, 0), 20))

	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 100
	}

	suite.Equal(0.0, manager.Volatility(flat, 20))

	// alternating +10% / -10% returns have a population std of about 0.1
	prices := []float64{100}
	for i := 0; i < 25; i++ {
		last := prices[len(prices)-1]
		if i%2 == 0 {
			prices = append(prices, last*1.1)
		} else {
			prices = append(prices, last*0.9)
		}
	}

	suite.InDelta(0.1*math.Sqrt(252)*100, manager.Volatility(prices, 20), 1e-6)
}

func (suite *RiskManagerTestSuite) TestDrawdown() {
	manager := suite.newManager(10000)

	suite.Equal(0.0, manager.Drawdown(nil))
	suite.Equal(0.0, manager.Drawdown([]float64{100, 100, 101, 150}))
	suite.InDelta(20.0, manager.Drawdown([]float64{100, 150, 120}), 1e-12)
	// measured at the end of the curve
	suite.Equal(0.0, manager.Drawdown([]float64{100, 50, 100}))
	suite.Equal(100.0, manager.Drawdown([]float64{100, -50}))
	// falling below a non positive peak is still a drawdown
	suite.Equal(100.0, manager.Drawdown([]float64{-1, -2}))
	suite.Equal(0.0, manager.Drawdown([]float64{-3, -2, -1}))
}

func (suite *RiskManagerTestSuite) TestDrawdownBounded() {
	manager := suite.newManager(10000)
	curves := [][]float64{
		{1, 2, 3},
		{3, 2, 1},
		{100, -1},
		{0, 0, 0},
		{-5, -3, -10},
		{10, 1e-9},
	}

	for _, curve := range curves {
		dd := manager.Drawdown(curve)
		suite.GreaterOrEqual(dd, 0.0)
		suite.LessOrEqual(dd, 100.0)
	}
}

func (suite *RiskManagerTestSuite) TestUpdateBalanceAndClone() {
	manager := suite.newManager(10000)
	clone := manager.Clone()

	manager.UpdateBalance(12000)
	manager.OpenTrade()

	suite.Equal(12000.0, manager.Balance())
	suite.Equal(10000.0, clone.Balance())
	suite.Equal(0, clone.State().OpenTradeCount)

	// no validation
	manager.UpdateBalance(-1)
	suite.Equal(-1.0, manager.State().Balance)
}
