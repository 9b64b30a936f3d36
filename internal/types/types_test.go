package types

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type TypesTestSuite struct {
	suite.Suite
	tempDir string
}

func TestTypesSuite(t *testing.T) {
	suite.Run(t, new(TypesTestSuite))
}

func (suite *TypesTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "types_test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir
}

func (suite *TypesTestSuite) TearDownTest() {
	os.RemoveAll(suite.tempDir)
}

func (suite *TypesTestSuite) TestMarketDataIsValid() {
	data := MarketData{Id: "1", Symbol: "BTCUSDT", Time: time.Now(), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}
	suite.True(data.IsValid())

	data.Close = math.NaN()
	suite.False(data.IsValid())

	data.Close = 1
	data.Volume = math.Inf(1)
	suite.False(data.IsValid())
}

func (suite *TypesTestSuite) TestCloses() {
	candles := []MarketData{{Close: 1}, {Close: 2}, {Close: 3}}
	suite.Equal([]float64{1, 2, 3}, Closes(candles))
	suite.Empty(Closes(nil))
}

func (suite *TypesTestSuite) TestActionOpposes() {
	suite.True(ActionSell.Opposes(PositionSideLong))
	suite.False(ActionBuy.Opposes(PositionSideLong))
	suite.True(ActionBuy.Opposes(PositionSideShort))
	suite.False(ActionHold.Opposes(PositionSideLong))
	suite.False(ActionHold.Opposes(PositionSideShort))
}

func (suite *TypesTestSuite) TestHoldSignal() {
	signal := HoldSignal("insufficient historical data")
	suite.Equal(ActionHold, signal.Action)
	suite.Equal(0.0, signal.Confidence)
	suite.Equal([]string{"insufficient historical data"}, signal.Reasons)

	suite.Empty(HoldSignal("").Reasons)
}

func (suite *TypesTestSuite) TestPositionPnL() {
	long := Position{Side: PositionSideLong, EntryPrice: 100, Size: 2}
	suite.InDelta(20.0, long.UnrealizedPnL(110), 1e-9)
	suite.InDelta(10.0, long.PnLPercentAt(110), 1e-9)

	short := Position{Side: PositionSideShort, EntryPrice: 100, Size: 2}
	suite.InDelta(20.0, short.UnrealizedPnL(90), 1e-9)
	suite.InDelta(-10.0, short.PnLPercentAt(110), 1e-9)

	suite.Equal(0.0, Position{}.PnLPercentAt(10))
}

func (suite *TypesTestSuite) TestIndicatorSeriesAt() {
	series := IndicatorSeries{
		EMA20:         []float64{1, 2},
		EMA50:         []float64{1, 2},
		EMA200:        []float64{1, 2},
		EMAFast:       []float64{1, 2},
		EMASlow:       []float64{1, 2},
		RSI:           []float64{40, 60},
		MACD:          []float64{0, 1},
		MACDSignal:    []float64{0, 0.5},
		ADX:           []float64{10, 30},
		DIPlus:        []float64{5, 25},
		DIMinus:       []float64{5, 15},
		ATR:           []float64{1, 1.5},
		TrendStrength: []int{0, 1},
		Close:         []float64{100, 101},
	}

	suite.Equal(2, series.Len())
	latest := series.Latest()
	suite.Equal(60.0, latest.RSI)
	suite.Equal(1, latest.TrendStrength)
	suite.Equal(101.0, latest.Close)
	suite.Equal(40.0, series.At(0).RSI)
}

func (suite *TypesTestSuite) TestWriteBacktestReport() {
	pnl := 12.5
	report := BacktestReport{
		Symbol: "BTCUSDT",
		Backtest: BacktestResult{
			InitialBalance: 10000,
			FinalBalance:   10012.5,
			TotalReturn:    0.125,
			Trades:         []BacktestTrade{{Timestamp: "2024-01-01T00:00:00Z", Action: "exit", Price: 101, Size: 1, PnL: &pnl, Balance: 10012.5}},
			EquityCurve:    []float64{10000, 10012.5},
		},
		MonteCarlo: nil,
	}

	path := filepath.Join(suite.tempDir, "report.yaml")
	suite.Require().NoError(WriteBacktestReport(path, report))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)

	var decoded BacktestReport
	suite.Require().NoError(yaml.Unmarshal(data, &decoded))
	suite.Equal("BTCUSDT", decoded.Symbol)
	suite.Equal(10012.5, decoded.Backtest.FinalBalance)
	suite.Require().Len(decoded.Backtest.Trades, 1)
	suite.Equal(12.5, *decoded.Backtest.Trades[0].PnL)
	suite.Nil(decoded.Backtest.Trades[0].StopLoss)
	suite.Nil(decoded.MonteCarlo)
}

func (suite *TypesTestSuite) TestWriteBacktestReportBadPath() {
	err := WriteBacktestReport(filepath.Join(suite.tempDir, "missing", "report.yaml"), BacktestReport{})
	suite.Error(err)
	suite.Contains(err.Error(), "failed to write backtest report")
}
