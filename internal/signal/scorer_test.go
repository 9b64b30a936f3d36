package signal

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/indicator"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/mocks"
	"github.com/stretchr/testify/suite"
)

type ScorerTestSuite struct {
	suite.Suite
	scorer *Scorer
}

func TestScorerSuite(t *testing.T) {
	suite.Run(t, new(ScorerTestSuite))
}

func (suite *ScorerTestSuite) SetupTest() {
	log := logger.NewNopLogger()
	suite.scorer = NewScorer(config.Default().Scorer, indicator.NewEngine(log), log)
}

// neutralSnapshot triggers no rule in either mode.
func neutralSnapshot() types.Snapshot {
	return types.Snapshot{
		RSI:        50,
		MACD:       0,
		MACDSignal: 0,
		EMAFast:    100,
		EMASlow:    100,
		ADX:        10,
		DIPlus:     20,
		DIMinus:    20,
		Close:      100,
	}
}

func (suite *ScorerTestSuite) TestContinuous() {
	tests := []struct {
		name       string
		modify     func(s *types.Snapshot)
		action     types.Action
		confidence float64
		reasons    []string
	}{
		{
			name:       "nothing fires",
			modify:     func(s *types.Snapshot) {},
			action:     types.ActionHold,
			confidence: 0,
			reasons:    []string{},
		},
		{
			name:       "oversold alone is below the minimum confidence",
			modify:     func(s *types.Snapshot) { s.RSI = 25 },
			action:     types.ActionHold,
			confidence: 0.3,
			reasons:    []string{ReasonRSIOversold},
		},
		{
			name: "oversold with a strong trend buys",
			modify: func(s *types.Snapshot) {
				s.RSI = 30
				s.ADX = 25
			},
			action:     types.ActionBuy,
			confidence: 0.5,
			reasons:    []string{ReasonRSIOversold, ReasonStrongTrend},
		},
		{
			name: "overbought with a strong trend sells",
			modify: func(s *types.Snapshot) {
				s.RSI = 70
				s.ADX = 40
			},
			action:     types.ActionSell,
			confidence: 0.5,
			reasons:    []string{ReasonRSIOverbought, ReasonStrongTrend},
		},
		{
			name: "bullish macd overrides an overbought sell",
			modify: func(s *types.Snapshot) {
				s.RSI = 80
				s.MACD = 1
			},
			action:     types.ActionBuy,
			confidence: 0.5,
			reasons:    []string{ReasonRSIOverbought, ReasonMACDBullish},
		},
		{
			name: "macd and ema crossover reach the minimum exactly",
			modify: func(s *types.Snapshot) {
				s.MACD = 1
				s.EMAFast = 101
			},
			action:     types.ActionBuy,
			confidence: 0.4,
			reasons:    []string{ReasonMACDBullish, ReasonEMACrossover},
		},
		{
			name: "strong trend adds confidence without a direction",
			modify: func(s *types.Snapshot) {
				s.ADX = 60
				s.MACD = 1
			},
			action:     types.ActionBuy,
			confidence: 0.4,
			reasons:    []string{ReasonMACDBullish, ReasonStrongTrend},
		},
		{
			name: "every rule fires",
			modify: func(s *types.Snapshot) {
				s.RSI = 10
				s.MACD = 1
				s.EMAFast = 101
				s.ADX = 30
			},
			action:     types.ActionBuy,
			confidence: 0.9,
			reasons:    []string{ReasonRSIOversold, ReasonMACDBullish, ReasonEMACrossover, ReasonStrongTrend},
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			snapshot := neutralSnapshot()
			tt.modify(&snapshot)

			signal := suite.scorer.Continuous(snapshot)
			suite.Equal(tt.action, signal.Action)
			suite.InDelta(tt.confidence, signal.Confidence, 1e-9)
			suite.InDelta(tt.confidence*100, signal.Score, 1e-9)
			suite.Equal(tt.reasons, signal.Reasons)
			suite.Equal(100.0, signal.Price)
		})
	}
}

func (suite *ScorerTestSuite) TestContinuousCapsConfidence() {
	cfg := config.Default().Scorer
	cfg.RSIWeight = 0.6
	cfg.MACDWeight = 0.6
	log := logger.NewNopLogger()
	scorer := NewScorer(cfg, indicator.NewEngine(log), log)

	snapshot := neutralSnapshot()
	snapshot.RSI = 10
	snapshot.MACD = 1

	signal := scorer.Continuous(snapshot)
	suite.Equal(1.0, signal.Confidence)
	// the score keeps the uncapped value
	suite.InDelta(120.0, signal.Score, 1e-9)
	suite.Equal(types.ActionBuy, signal.Action)
}

func (suite *ScorerTestSuite) TestDiscrete() {
	tests := []struct {
		name     string
		modify   func(s *types.Snapshot)
		signals  map[string]int
		total    int
		strength float64
	}{
		{
			name:     "neutral",
			modify:   func(s *types.Snapshot) {},
			signals:  map[string]int{"rsi": 0, "macd": 0, "adx": 0, "trend": 0},
			total:    0,
			strength: 0,
		},
		{
			name: "maximum bullish",
			modify: func(s *types.Snapshot) {
				s.RSI = 20
				s.MACD = 1
				s.ADX = 30
				s.DIPlus = 30
				s.DIMinus = 10
				s.TrendStrength = 1
			},
			signals:  map[string]int{"rsi": 2, "macd": 1, "adx": 1, "trend": 1},
			total:    5,
			strength: 5.0 / 6.0,
		},
		{
			name: "maximum bearish",
			modify: func(s *types.Snapshot) {
				s.RSI = 90
				s.MACD = -1
				s.ADX = 30
				s.DIPlus = 10
				s.DIMinus = 30
				s.TrendStrength = -1
			},
			signals:  map[string]int{"rsi": -2, "macd": -1, "adx": -1, "trend": -1},
			total:    -5,
			strength: 5.0 / 6.0,
		},
		{
			name: "adx at the threshold does not vote",
			modify: func(s *types.Snapshot) {
				s.ADX = 25
				s.DIPlus = 30
			},
			signals:  map[string]int{"rsi": 0, "macd": 0, "adx": 0, "trend": 0},
			total:    0,
			strength: 0,
		},
		{
			name: "rsi boundaries are neutral",
			modify: func(s *types.Snapshot) {
				s.RSI = 30
				s.MACD = -2
			},
			signals:  map[string]int{"rsi": 0, "macd": -1, "adx": 0, "trend": 0},
			total:    -1,
			strength: 1.0 / 6.0,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			snapshot := neutralSnapshot()
			tt.modify(&snapshot)

			score := suite.scorer.Discrete(snapshot)
			suite.Equal(tt.signals, score.Signals)
			suite.Equal(tt.total, score.TotalScore)
			suite.InDelta(tt.strength, score.Strength, 1e-12)
		})
	}
}

func (suite *ScorerTestSuite) TestShortSeriesIsNeutral() {
	for _, n := range []int{0, 1, 14, 29} {
		candles := mocks.Linear("BTCUSDT", n, 100, 1)

		signal := suite.scorer.ContinuousFromCandles(candles)
		suite.Equal(types.ActionHold, signal.Action)
		suite.Equal(0.0, signal.Confidence)
		suite.Equal([]string{ReasonInsufficientData}, signal.Reasons)

		score := suite.scorer.DiscreteFromCandles(candles)
		suite.Equal(types.NeutralScore(), score)
	}
}

func (suite *ScorerTestSuite) TestInvalidCandleIsNeutral() {
	candles := mocks.Linear("BTCUSDT", 40, 100, 1)
	candles[10].Close = math.NaN()

	signal := suite.scorer.ContinuousFromCandles(candles)
	suite.Equal(types.ActionHold, signal.Action)
	suite.Equal("BTCUSDT", signal.Symbol)
	suite.Contains(signal.Reasons[0], "signal generation failed")
	suite.Equal(types.NeutralScore(), suite.scorer.DiscreteFromCandles(candles))
}

func (suite *ScorerTestSuite) TestRisingSeries() {
	candles := mocks.Linear("BTCUSDT", 60, 100, 1)

	signal, snapshot := suite.scorer.Analyze(candles)
	suite.Equal(types.ActionBuy, signal.Action)
	suite.InDelta(0.9, signal.Confidence, 1e-9)
	suite.Equal("BTCUSDT", signal.Symbol)
	suite.Equal(candles[59].Time, signal.Time)
	suite.Equal(159.0, signal.Price)
	suite.InDelta(2.0, snapshot.ATR, 1e-9)

	score := suite.scorer.DiscreteFromCandles(candles)
	// overbought rsi outvotes macd and adx while ema200 is undefined
	suite.Equal(map[string]int{"rsi": -2, "macd": 1, "adx": 1, "trend": 0}, score.Signals)
	suite.Equal(0, score.TotalScore)
}

func (suite *ScorerTestSuite) TestFlatSeries() {
	candles := mocks.Flat("BTCUSDT", 60, 100)

	signal := suite.scorer.ContinuousFromCandles(candles)
	suite.Equal(types.ActionHold, signal.Action)
	suite.InDelta(0.3, signal.Confidence, 1e-9)

	score := suite.scorer.DiscreteFromCandles(candles)
	suite.Equal(-2, score.TotalScore)
	suite.InDelta(2.0/6.0, score.Strength, 1e-12)
}
