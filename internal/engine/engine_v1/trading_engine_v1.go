package engine_v1

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/engine"
	"github.com/rxtech-lab/argo-pilot/internal/gateway"
	"github.com/rxtech-lab/argo-pilot/internal/indicator"
	"github.com/rxtech-lab/argo-pilot/internal/lifecycle"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/internal/risk"
	"github.com/rxtech-lab/argo-pilot/internal/signal"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"go.uber.org/zap"
)

// TradeLedger stores the entries produced by the lifecycle manager.
type TradeLedger interface {
	lifecycle.Recorder
	Entries() ([]types.LedgerEntry, error)
}

// TradingEngineV1 is the polling implementation of engine.TradingEngine.
//
// A single goroutine runs one cycle per trading interval. All state shared
// with the control surface is guarded by mu. Gateway calls are made with mu
// released so status readers never wait on the exchange; only the loop
// goroutine mutates positions and risk state. Start and Stop hold control
// for their whole transition, so a Start issued while a Stop is draining the
// loop waits for it and then starts a fresh loop.
type TradingEngineV1 struct {
	config    config.Config
	gateway   gateway.Gateway
	ledger    TradeLedger
	scorer    *signal.Scorer
	risk      *risk.Manager
	positions *lifecycle.Manager
	callbacks engine.TradingCallbacks
	logger    *logger.Logger

	control        sync.Mutex
	mu             sync.Mutex
	running        bool
	runCtx         context.Context
	cancel         context.CancelFunc
	done           chan struct{}
	pairs          []string
	balanceHistory []float64
	cycles         int
	lastCycle      time.Time
	lastError      string
}

// NewTradingEngineV1 creates a stopped engine. ledger may be nil, in which
// case no trade history is kept.
func NewTradingEngineV1(cfg config.Config, gw gateway.Gateway, ledger TradeLedger, callbacks engine.TradingCallbacks, log *logger.Logger) (*TradingEngineV1, error) {
	if gw == nil {
		return nil, errors.New(errors.ErrCodeEngineNotInitialized, "gateway is required")
	}

	if len(cfg.TradingPairs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "at least one trading pair is required")
	}

	engineLogger := log.Component("engine")
	riskManager := risk.NewManager(0, cfg.Risk, engineLogger)

	var recorder lifecycle.Recorder
	if ledger != nil {
		recorder = ledger
	}

	return &TradingEngineV1{
		config:         cfg,
		gateway:        gw,
		ledger:         ledger,
		scorer:         signal.NewScorer(cfg.Scorer, indicator.NewEngine(engineLogger), engineLogger),
		risk:           riskManager,
		positions:      lifecycle.NewManager(riskManager, cfg.LiveExit, recorder, engineLogger),
		callbacks:      callbacks,
		logger:         engineLogger,
		control:        sync.Mutex{},
		mu:             sync.Mutex{},
		running:        false,
		runCtx:         nil,
		cancel:         nil,
		done:           nil,
		pairs:          append([]string(nil), cfg.TradingPairs...),
		balanceHistory: []float64{},
		cycles:         0,
		lastCycle:      time.Time{},
		lastError:      "",
	}, nil
}

// Start implements engine.TradingEngine.
func (e *TradingEngineV1) Start(ctx context.Context) error {
	e.control.Lock()
	defer e.control.Unlock()

	e.mu.Lock()
	if e.running && e.runCtx.Err() == nil {
		e.mu.Unlock()
		e.logger.Info("Engine already running")

		return nil
	}

	previous := e.done
	e.mu.Unlock()

	// a loop whose context already ended may still be finishing its cycle
	if previous != nil {
		<-previous
	}

	pairs, err := e.validateTradingPairs(ctx)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	e.mu.Lock()
	e.pairs = pairs
	e.running = true
	e.runCtx = runCtx
	e.cancel = cancel
	e.done = done
	e.mu.Unlock()

	if e.callbacks.OnEngineStart != nil {
		if err := (*e.callbacks.OnEngineStart)(pairs, e.config.TradingInterval()); err != nil {
			cancel()

			e.mu.Lock()
			e.running = false
			e.cancel = nil
			e.mu.Unlock()
			close(done)

			return errors.Wrap(errors.ErrCodeCallbackFailed, "OnEngineStart callback failed", err)
		}
	}

	e.logger.Info("Engine started",
		zap.Strings("symbols", pairs),
		zap.Duration("interval", e.config.TradingInterval()),
		zap.String("provider", e.config.Exchange.Provider),
	)

	go e.loop(runCtx, done)

	return nil
}

// validateTradingPairs returns the configured pairs the exchange lists and the
// account can trade, holding either more than the minimum order size of the
// base asset or any of the quote asset. Unusable pairs are skipped with a
// warning and Start fails only when none is left.
func (e *TradingEngineV1) validateTradingPairs(ctx context.Context) ([]string, error) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	markets, err := e.gateway.FetchMarkets(callCtx)
	if err != nil {
		e.logger.Error("Failed to list exchange markets", zap.Error(err))

		return nil, err
	}

	balances, err := e.gateway.FetchBalance(callCtx)
	if err != nil {
		e.logger.Error("Failed to fetch balances for pair validation", zap.Error(err))

		return nil, err
	}

	pairs := make([]string, 0, len(e.config.TradingPairs))

	for _, symbol := range e.config.TradingPairs {
		market, ok := markets[symbol]
		if !ok {
			e.logger.Warn("Trading pair is not listed on the exchange, skipping", zap.String("symbol", symbol))

			continue
		}

		quoteAsset := market.QuoteAsset
		if quoteAsset == "" {
			quoteAsset = e.config.Exchange.QuoteAsset
		}

		if balances[market.BaseAsset] <= market.MinQuantity && balances[quoteAsset] <= 0 {
			e.logger.Warn("No balance to trade pair, skipping",
				zap.String("symbol", symbol),
				zap.String("base_asset", market.BaseAsset),
				zap.String("quote_asset", quoteAsset),
			)

			continue
		}

		pairs = append(pairs, symbol)
	}

	if len(pairs) == 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidSymbol, "none of the trading pairs %v can be traded", e.config.TradingPairs)
	}

	return pairs, nil
}

// Stop implements engine.TradingEngine.
func (e *TradingEngineV1) Stop() error {
	e.control.Lock()
	defer e.control.Unlock()

	e.mu.Lock()
	running := e.running
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	if running && cancel != nil {
		cancel()
	}

	if done != nil {
		<-done
	}

	if running {
		e.logger.Info("Engine stopped")
	}

	return nil
}

func (e *TradingEngineV1) loop(ctx context.Context, done chan struct{}) {
	var runErr error

	defer func() {
		e.mu.Lock()
		e.running = false
		e.cancel = nil
		e.mu.Unlock()

		if e.callbacks.OnEngineStop != nil {
			(*e.callbacks.OnEngineStop)(runErr)
		}

		close(done)
	}()

	for {
		wait := e.config.TradingInterval()

		if err := e.RunCycle(ctx); err != nil && ctx.Err() == nil {
			e.logger.Error("Trading cycle failed",
				zap.Error(err),
				zap.Duration("backoff", e.config.ErrorBackoff()),
			)
			e.notifyError("", err)

			wait = e.config.ErrorBackoff()
		}

		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()

			if ctx.Err() == context.DeadlineExceeded {
				runErr = ctx.Err()
			}

			return
		case <-timer.C:
		}
	}
}

// RunCycle performs one polling cycle: refresh the balance, manage open
// positions, then analyse every active trading pair for an entry.
// A failure of a single symbol is logged and does not fail the cycle.
func (e *TradingEngineV1) RunCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeCycleFailed, "trading cycle panicked: %v", r)
		}

		if err != nil {
			e.mu.Lock()
			e.lastError = err.Error()
			e.mu.Unlock()
		}
	}()

	balance, err := e.refreshBalance(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCycleFailed, "failed to refresh balance", err)
	}

	e.managePositions(ctx)
	e.analyzeSymbols(ctx)

	e.mu.Lock()
	e.cycles++
	cycle := e.cycles
	e.lastCycle = time.Now().UTC()
	e.lastError = ""
	e.mu.Unlock()

	e.logger.Info("Trading cycle completed",
		zap.Int("cycle", cycle),
		zap.Float64("balance", balance),
	)

	if e.callbacks.OnCycle != nil {
		if err := (*e.callbacks.OnCycle)(cycle, balance); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "OnCycle callback failed", err)
		}
	}

	return nil
}

func (e *TradingEngineV1) refreshBalance(ctx context.Context) (float64, error) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	balance, err := e.gateway.QuoteBalance(callCtx, e.config.Exchange.QuoteAsset)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.risk.UpdateBalance(balance)
	e.balanceHistory = append(e.balanceHistory, balance)

	return balance, nil
}

func (e *TradingEngineV1) managePositions(ctx context.Context) {
	e.mu.Lock()
	symbols := e.positions.Symbols()
	e.mu.Unlock()

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return
		}

		e.step(symbol, "manage", func() error {
			return e.manageSymbol(ctx, symbol)
		})
	}
}

func (e *TradingEngineV1) analyzeSymbols(ctx context.Context) {
	e.mu.Lock()
	symbols := e.tradingPairs()
	e.mu.Unlock()

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return
		}

		e.step(symbol, "analyze", func() error {
			return e.analyzeSymbol(ctx, symbol)
		})
	}
}

// step runs fn for one symbol. Errors and panics turn the symbol into no
// action for this cycle.
func (e *TradingEngineV1) step(symbol, phase string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Newf(errors.ErrCodeCycleFailed, "%s %s panicked: %v", phase, symbol, r)
			e.logger.Error("Recovered from panic in symbol step",
				zap.String("symbol", symbol),
				zap.String("phase", phase),
				zap.Any("panic", r),
			)
			e.notifyError(symbol, err)
		}
	}()

	if err := fn(); err != nil {
		e.logger.Warn("Symbol step failed, no action taken",
			zap.String("symbol", symbol),
			zap.String("phase", phase),
			zap.Int("error_code", int(errors.GetCode(err))),
			zap.Error(err),
		)
		e.notifyError(symbol, err)
	}
}

func (e *TradingEngineV1) manageSymbol(ctx context.Context, symbol string) error {
	price, err := e.fetchTicker(ctx, symbol)
	if err != nil {
		return err
	}

	// stop loss and take profit only need the ticker
	sig := types.HoldSignal("candles unavailable")

	candles, err := e.fetchCandles(ctx, symbol)
	if err != nil {
		e.logger.Warn("Candle fetch failed, evaluating exits on price only",
			zap.String("symbol", symbol),
			zap.Int("error_code", int(errors.GetCode(err))),
			zap.Error(err),
		)
		e.notifyError(symbol, err)
	} else {
		sig, _ = e.scorer.Analyze(candles)
	}

	e.mu.Lock()
	evaluation, err := e.positions.Evaluate(symbol, price, sig)
	e.mu.Unlock()

	if err != nil {
		return err
	}

	if evaluation.Decision != lifecycle.DecisionExit {
		return nil
	}

	order, err := e.placeExit(ctx, evaluation.Position)
	if err != nil {
		return err
	}

	exitPrice := price
	if order.Price > 0 {
		exitPrice = order.Price
	}

	e.mu.Lock()
	entry, err := e.positions.Close(symbol, exitPrice, time.Now().UTC(), evaluation.Reason)
	e.mu.Unlock()

	if err != nil {
		return err
	}

	if e.callbacks.OnPositionClosed != nil {
		if err := (*e.callbacks.OnPositionClosed)(entry); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "OnPositionClosed callback failed", err)
		}
	}

	return nil
}

func (e *TradingEngineV1) analyzeSymbol(ctx context.Context, symbol string) error {
	e.mu.Lock()
	if e.positions.HasPosition(symbol) {
		e.mu.Unlock()
		e.logger.Debug("Position exists, skipping analysis", zap.String("symbol", symbol))

		return nil
	}

	if !e.risk.CanOpenTrade() {
		e.mu.Unlock()
		e.logger.Info("Max trades reached, skipping analysis",
			zap.String("symbol", symbol),
			zap.Int("error_code", int(errors.ErrCodeMaxTradesReached)),
		)

		return nil
	}

	drawdown := e.risk.Drawdown(e.balanceHistory)
	if !e.risk.WithinDrawdownLimit(drawdown) {
		e.mu.Unlock()
		e.logger.Warn("Drawdown limit reached, skipping analysis",
			zap.String("symbol", symbol),
			zap.Float64("drawdown", drawdown),
			zap.Int("error_code", int(errors.ErrCodeDrawdownExceeded)),
		)

		return nil
	}
	e.mu.Unlock()

	candles, err := e.fetchCandles(ctx, symbol)
	if err != nil {
		return err
	}

	sig, snapshot := e.scorer.Analyze(candles)

	e.mu.Lock()
	volatility := e.risk.Volatility(types.Closes(candles), e.config.Risk.VolatilityWindow)
	e.risk.AdjustRisk(drawdown, volatility)
	size, reason := e.positions.PlanEntry(symbol, sig)
	e.mu.Unlock()

	if reason != lifecycle.SkipReasonNone {
		e.logger.Info("Entry skipped",
			zap.String("symbol", symbol),
			zap.String("reason", string(reason)),
			zap.String("action", string(sig.Action)),
			zap.Float64("confidence", sig.Confidence),
		)

		return nil
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	order, err := e.gateway.CreateMarketBuyOrder(callCtx, symbol, size)
	if err != nil {
		return err
	}

	entryPrice := sig.Price
	if order.Price > 0 {
		entryPrice = order.Price
	}

	filled := size
	if order.Size > 0 {
		filled = order.Size
	}

	e.mu.Lock()
	position, err := e.positions.OpenWithSide(symbol, types.PositionSideLong, entryPrice, filled, snapshot.ATR, time.Now().UTC())
	e.mu.Unlock()

	if err != nil {
		e.logger.Error("Order filled but position could not be opened",
			zap.String("symbol", symbol),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)

		return err
	}

	if e.callbacks.OnPositionOpened != nil {
		if err := (*e.callbacks.OnPositionOpened)(position); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "OnPositionOpened callback failed", err)
		}
	}

	return nil
}

func (e *TradingEngineV1) placeExit(ctx context.Context, position types.Position) (gateway.Order, error) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	if position.Side == types.PositionSideShort {
		return e.gateway.CreateMarketBuyOrder(callCtx, position.Symbol, position.Size)
	}

	return e.gateway.CreateMarketSellOrder(callCtx, position.Symbol, position.Size)
}

func (e *TradingEngineV1) fetchTicker(ctx context.Context, symbol string) (float64, error) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	return e.gateway.FetchTicker(callCtx, symbol)
}

func (e *TradingEngineV1) fetchCandles(ctx context.Context, symbol string) ([]types.MarketData, error) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	return e.gateway.FetchOHLCV(callCtx, symbol, e.config.Timeframes.Primary, e.config.Gateway.CandleLimit)
}

func (e *TradingEngineV1) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.config.Gateway.Timeout())
}

func (e *TradingEngineV1) notifyError(symbol string, err error) {
	if e.callbacks.OnError != nil {
		(*e.callbacks.OnError)(symbol, err)
	}
}

// Status implements engine.TradingEngine.
func (e *TradingEngineV1) Status() engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	var lastCycle *time.Time
	if !e.lastCycle.IsZero() {
		t := e.lastCycle
		lastCycle = &t
	}

	return engine.Status{
		Running:       e.running,
		Provider:      e.config.Exchange.Provider,
		TradingPairs:  e.tradingPairs(),
		Interval:      e.config.TradingInterval().String(),
		Cycles:        e.cycles,
		LastCycle:     lastCycle,
		LastError:     e.lastError,
		OpenPositions: len(e.positions.Symbols()),
		Risk:          e.risk.State(),
	}
}

// ActivePositions implements engine.TradingEngine.
func (e *TradingEngineV1) ActivePositions() []types.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.positions.Positions()
}

// TradeHistory implements engine.TradingEngine.
func (e *TradingEngineV1) TradeHistory() ([]types.LedgerEntry, error) {
	if e.ledger == nil {
		return []types.LedgerEntry{}, nil
	}

	entries, err := e.ledger.Entries()
	if err != nil {
		return nil, fmt.Errorf("failed to read trade history: %w", err)
	}

	return entries, nil
}

// Balance implements engine.TradingEngine.
func (e *TradingEngineV1) Balance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.risk.Balance()
}

// TradingPairs implements engine.TradingEngine.
func (e *TradingEngineV1) TradingPairs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tradingPairs()
}

// tradingPairs requires mu.
func (e *TradingEngineV1) tradingPairs() []string {
	pairs := make([]string, len(e.pairs))
	copy(pairs, e.pairs)

	return pairs
}

var _ engine.TradingEngine = (*TradingEngineV1)(nil)
