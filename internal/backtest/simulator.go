package backtest

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/indicator"
	"github.com/rxtech-lab/argo-pilot/internal/lifecycle"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/internal/risk"
	"github.com/rxtech-lab/argo-pilot/internal/signal"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"go.uber.org/zap"
)

// OnProcessDataCallback is called after each candle is processed.
// Returning an error aborts the run.
type OnProcessDataCallback func(current int, total int) error

// Callbacks holds optional hooks into a run. nil means no callback is invoked.
type Callbacks struct {
	OnProcessData *OnProcessDataCallback
}

// Simulator replays a candle series through the indicator engine, the
// discrete scorer and the backtest exit policy.
//
// Every run uses its own risk and lifecycle managers, so a simulator never
// touches live state. Given the same input and seed, results are identical.
type Simulator struct {
	config config.Config
	engine *indicator.Engine
	scorer *signal.Scorer
	logger *logger.Logger
}

// NewSimulator creates a simulator from the process configuration.
func NewSimulator(cfg config.Config, log *logger.Logger) *Simulator {
	engine := indicator.NewEngine(log)

	return &Simulator{
		config: cfg,
		engine: engine,
		scorer: signal.NewScorer(cfg.Scorer, engine, log),
		logger: log,
	}
}

// Run backtests candles and returns the performance statistics.
// Any failure, including a panic or a cancelled context, yields EmptyResult.
func (s *Simulator) Run(ctx context.Context, candles []types.MarketData, callbacks Callbacks) (result types.BacktestResult) {
	initial := s.config.Backtest.InitialBalance

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Backtest panicked", zap.Any("panic", r))
			result = EmptyResult(initial)
		}
	}()

	result, err := s.run(ctx, candles, callbacks)
	if err != nil {
		s.logger.Error("Backtest failed", zap.Error(err))

		return EmptyResult(initial)
	}

	return result
}

func (s *Simulator) run(ctx context.Context, candles []types.MarketData, callbacks Callbacks) (types.BacktestResult, error) {
	if len(candles) == 0 {
		return types.BacktestResult{}, errors.New(errors.ErrCodeBacktestFailed, "no candles to backtest")
	}

	// indicators are causal, so the value at i only depends on candles[0..i]
	series, err := s.engine.Compute(candles)
	if err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeBacktestFailed, "failed to compute indicators", err)
	}

	initial := s.config.Backtest.InitialBalance
	symbol := candles[0].Symbol
	log := s.logger.Component("backtest")

	liveExit := s.config.LiveExit
	liveExit.StopATRMultiple = s.config.Backtest.StopATRMultiple

	recorder := &tradeRecorder{entries: []types.LedgerEntry{}}
	riskManager := risk.NewManager(initial, s.config.Risk, log)
	positions := lifecycle.NewManager(riskManager, liveExit, recorder, log)
	exitPolicy := lifecycle.NewBacktestExitPolicy(s.config.Backtest)

	equity := make([]float64, 0, len(candles))
	equity = append(equity, initial)
	total := len(candles) - 1

	for i := 1; i < len(candles); i++ {
		if err := ctx.Err(); err != nil {
			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeBacktestFailed, "backtest cancelled", err)
		}

		candle := candles[i]
		score := s.scoreAt(series, i)

		position := positions.Position(symbol)
		if position.IsNone() {
			if s.shouldEnter(score, riskManager) {
				size := riskManager.PositionSize(candle.Close, optional.None[float64]())
				if size > 0 {
					if _, err := positions.OpenWithSide(symbol, types.PositionSideLong, candle.Close, size, series.ATR[i], candle.Time); err != nil {
						return types.BacktestResult{}, errors.Wrapf(errors.ErrCodeBacktestFailed, err, "failed to enter at candle %d", i)
					}
				}
			}
		} else if exit, reason := exitPolicy.ShouldExit(position.Unwrap(), candle.Close, score); exit {
			if _, err := positions.Close(symbol, candle.Close, candle.Time, reason); err != nil {
				return types.BacktestResult{}, errors.Wrapf(errors.ErrCodeBacktestFailed, err, "failed to exit at candle %d", i)
			}
		}

		equity = append(equity, riskManager.Balance())

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(i, total); err != nil {
				return types.BacktestResult{}, errors.Wrap(errors.ErrCodeCallbackFailed, "process data callback failed", err)
			}
		}
	}

	return buildResult(initial, riskManager.Balance(), equity, recorder.entries)
}

// scoreAt scores candle i using only data up to and including i.
func (s *Simulator) scoreAt(series types.IndicatorSeries, i int) types.DiscreteScore {
	if i+1 < s.config.Scorer.MinCandles {
		return types.NeutralScore()
	}

	return s.scorer.Discrete(series.At(i))
}

func (s *Simulator) shouldEnter(score types.DiscreteScore, riskManager *risk.Manager) bool {
	return score.TotalScore >= s.config.Backtest.MinTotalScore &&
		score.Strength >= s.config.Backtest.MinStrength &&
		riskManager.CanOpenTrade()
}

// MonteCarlo resamples returns with the configured initial balance and seed.
func (s *Simulator) MonteCarlo(returns []float64, iterations int) (types.MonteCarloResult, error) {
	return MonteCarlo(returns, iterations, s.config.Backtest.InitialBalance, s.config.Backtest.Seed)
}

// EmptyResult is the zeroed result returned when a backtest fails.
func EmptyResult(initial float64) types.BacktestResult {
	return types.BacktestResult{
		InitialBalance: initial,
		FinalBalance:   initial,
		TotalReturn:    0,
		SharpeRatio:    0,
		MaxDrawdown:    0,
		WinRate:        0,
		ProfitFactor:   0,
		Trades:         []types.BacktestTrade{},
		EquityCurve:    []float64{initial},
	}
}

// tradeRecorder keeps the ledger of a single run in memory.
type tradeRecorder struct {
	entries []types.LedgerEntry
}

func (r *tradeRecorder) Record(entry types.LedgerEntry) error {
	r.entries = append(r.entries, entry)

	return nil
}

func toBacktestTrades(entries []types.LedgerEntry) []types.BacktestTrade {
	trades := make([]types.BacktestTrade, 0, len(entries))

	for _, e := range entries {
		trade := types.BacktestTrade{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Action:    string(e.Action),
			Price:     e.Price,
			Size:      e.Size,
			StopLoss:  nil,
			PnL:       nil,
			Balance:   e.Balance,
		}

		if e.StopLoss.IsSome() {
			stop := e.StopLoss.Unwrap()
			trade.StopLoss = &stop
		}

		if e.PnL.IsSome() {
			pnl := e.PnL.Unwrap()
			trade.PnL = &pnl
		}

		trades = append(trades, trade)
	}

	return trades
}
