package signal

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/indicator"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"go.uber.org/zap"
)

// Reasons attached to continuous signals.
const (
	ReasonRSIOversold      = "rsi oversold"
	ReasonRSIOverbought    = "rsi overbought"
	ReasonMACDBullish      = "macd above signal line"
	ReasonEMACrossover     = "fast ema above slow ema"
	ReasonStrongTrend      = "strong trend"
	ReasonInsufficientData = "insufficient historical data"
)

// maxDiscreteScore is the largest possible |total_score| of a discrete score.
const maxDiscreteScore = 6.0

// Scorer turns indicator snapshots into trading signals.
//
// It has two modes that are deliberately kept apart. Continuous mode drives
// live trading and accumulates a confidence. Discrete mode drives backtest
// entries and sums integer votes.
type Scorer struct {
	config config.ScorerConfig
	engine *indicator.Engine
	logger *logger.Logger
}

// NewScorer creates a scorer that computes indicators with engine.
func NewScorer(cfg config.ScorerConfig, engine *indicator.Engine, log *logger.Logger) *Scorer {
	return &Scorer{
		config: cfg,
		engine: engine,
		logger: log,
	}
}

// Continuous scores a snapshot in continuous mode.
//
// Rules are applied in order and a later rule may overwrite the action of an
// earlier one. The confidence is capped at 1 and any confidence below the
// configured minimum forces a hold.
func (s *Scorer) Continuous(snapshot types.Snapshot) types.Signal {
	action := types.ActionHold
	confidence := 0.0
	reasons := []string{}

	if snapshot.RSI <= s.config.RSIBuy {
		confidence += s.config.RSIWeight
		reasons = append(reasons, ReasonRSIOversold)
		action = types.ActionBuy
	} else if snapshot.RSI >= s.config.RSISell {
		confidence += s.config.RSIWeight
		reasons = append(reasons, ReasonRSIOverbought)
		action = types.ActionSell
	}

	if snapshot.MACD > snapshot.MACDSignal {
		confidence += s.config.MACDWeight
		reasons = append(reasons, ReasonMACDBullish)
		action = types.ActionBuy
	}

	if snapshot.EMAFast > snapshot.EMASlow {
		confidence += s.config.EMAWeight
		reasons = append(reasons, ReasonEMACrossover)
		action = types.ActionBuy
	}

	// direction agnostic
	if snapshot.ADX >= s.config.ADXStrong {
		confidence += s.config.ADXWeight
		reasons = append(reasons, ReasonStrongTrend)
	}

	score := confidence * 100
	confidence = math.Min(confidence, 1.0)

	if confidence < s.config.MinConfidence {
		action = types.ActionHold
	}

	return types.Signal{
		Symbol:     "",
		Time:       time.Time{},
		Action:     action,
		Confidence: confidence,
		Score:      score,
		Price:      snapshot.Close,
		Reasons:    reasons,
	}
}

// Discrete scores a snapshot in discrete mode.
func (s *Scorer) Discrete(snapshot types.Snapshot) types.DiscreteScore {
	signals := make(map[string]int, 4)

	switch {
	case snapshot.RSI < s.config.RSIBuy:
		signals[types.DiscreteKeyRSI] = 2
	case snapshot.RSI > s.config.RSISell:
		signals[types.DiscreteKeyRSI] = -2
	default:
		signals[types.DiscreteKeyRSI] = 0
	}

	switch {
	case snapshot.MACD > snapshot.MACDSignal:
		signals[types.DiscreteKeyMACD] = 1
	case snapshot.MACD < snapshot.MACDSignal:
		signals[types.DiscreteKeyMACD] = -1
	default:
		signals[types.DiscreteKeyMACD] = 0
	}

	signals[types.DiscreteKeyADX] = 0
	if snapshot.ADX > s.config.ADXStrong {
		if snapshot.DIPlus > snapshot.DIMinus {
			signals[types.DiscreteKeyADX] = 1
		} else {
			signals[types.DiscreteKeyADX] = -1
		}
	}

	signals[types.DiscreteKeyTrend] = snapshot.TrendStrength

	total := 0
	for _, v := range signals {
		total += v
	}

	return types.DiscreteScore{
		TotalScore: total,
		Signals:    signals,
		Strength:   math.Abs(float64(total)) / maxDiscreteScore,
	}
}

// Analyze computes indicators for candles and scores the last candle in
// continuous mode. It never fails: a data error or any other failure yields a
// hold signal and a zero snapshot.
func (s *Scorer) Analyze(candles []types.MarketData) (types.Signal, types.Snapshot) {
	series, err := s.series(candles)
	if err != nil {
		return s.neutralSignal(candles, err), types.Snapshot{}
	}

	snapshot := series.Latest()
	last := candles[len(candles)-1]

	signal := s.Continuous(snapshot)
	signal.Symbol = last.Symbol
	signal.Time = last.Time

	s.logger.Debug("Signal generated",
		zap.String("symbol", signal.Symbol),
		zap.String("action", string(signal.Action)),
		zap.Float64("confidence", signal.Confidence),
		zap.Float64("score", signal.Score),
		zap.Float64("price", signal.Price),
		zap.Strings("reasons", signal.Reasons),
	)

	return signal, snapshot
}

// ContinuousFromCandles scores the last candle of the series in continuous mode.
func (s *Scorer) ContinuousFromCandles(candles []types.MarketData) types.Signal {
	signal, _ := s.Analyze(candles)

	return signal
}

// DiscreteFromCandles scores the last candle of the series in discrete mode.
// Any failure yields the zero score.
func (s *Scorer) DiscreteFromCandles(candles []types.MarketData) types.DiscreteScore {
	series, err := s.series(candles)
	if err != nil {
		s.logFailure(candles, err)

		return types.NeutralScore()
	}

	return s.Discrete(series.Latest())
}

func (s *Scorer) series(candles []types.MarketData) (types.IndicatorSeries, error) {
	if len(candles) < s.config.MinCandles {
		return types.IndicatorSeries{}, errors.NewInsufficientDataErrorf(s.config.MinCandles, len(candles), symbolOf(candles),
			"need %d candles to score, got %d", s.config.MinCandles, len(candles))
	}

	return s.engine.Compute(candles)
}

func (s *Scorer) neutralSignal(candles []types.MarketData, err error) types.Signal {
	s.logFailure(candles, err)

	reason := ReasonInsufficientData
	if !errors.IsInsufficientDataError(err) {
		reason = "signal generation failed: " + err.Error()
	}

	signal := types.HoldSignal(reason)
	signal.Symbol = symbolOf(candles)

	return signal
}

func (s *Scorer) logFailure(candles []types.MarketData, err error) {
	if errors.IsInsufficientDataError(err) {
		s.logger.Warn("Insufficient data for signal generation",
			zap.String("symbol", symbolOf(candles)),
			zap.Int("candles", len(candles)),
		)

		return
	}

	s.logger.Error("Signal generation failed",
		zap.String("symbol", symbolOf(candles)),
		zap.Error(err),
	)
}

func symbolOf(candles []types.MarketData) string {
	if len(candles) == 0 {
		return ""
	}

	return candles[0].Symbol
}
