package gateway

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultInitialInterval = 500 * time.Millisecond

// ResilientGateway decorates a Gateway with a rate limit, a per call timeout
// and exponential retries for network failures.
//
// The timeout covers the whole call including retries and rate limit waits.
// The wrapped call runs in a worker goroutine, so a call that ignores its
// context still returns ErrCodeGatewayTimeout on time. Orders are never retried.
type ResilientGateway struct {
	inner           Gateway
	limiter         *rate.Limiter
	timeout         time.Duration
	maxRetries      int
	initialInterval time.Duration
	logger          *logger.Logger
}

// NewResilientGateway wraps inner with the limits of cfg.
func NewResilientGateway(inner Gateway, cfg config.GatewayConfig, log *logger.Logger) *ResilientGateway {
	burst := int(math.Ceil(cfg.RequestsPerSecond))
	if burst < 1 {
		burst = 1
	}

	return &ResilientGateway{
		inner:           inner,
		limiter:         rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		timeout:         cfg.Timeout(),
		maxRetries:      cfg.MaxRetries,
		initialInterval: defaultInitialInterval,
		logger:          log.Component("gateway"),
	}
}

// FetchOHLCV implements Gateway.
func (g *ResilientGateway) FetchOHLCV(ctx context.Context, symbol string, timeframe string, limit int) ([]types.MarketData, error) {
	return call(ctx, g, "fetch_ohlcv", symbol, true, func(ctx context.Context) ([]types.MarketData, error) {
		return g.inner.FetchOHLCV(ctx, symbol, timeframe, limit)
	})
}

// FetchTicker implements Gateway.
func (g *ResilientGateway) FetchTicker(ctx context.Context, symbol string) (float64, error) {
	return call(ctx, g, "fetch_ticker", symbol, true, func(ctx context.Context) (float64, error) {
		return g.inner.FetchTicker(ctx, symbol)
	})
}

// FetchBalance implements Gateway.
func (g *ResilientGateway) FetchBalance(ctx context.Context) (map[string]float64, error) {
	return call(ctx, g, "fetch_balance", "", true, func(ctx context.Context) (map[string]float64, error) {
		return g.inner.FetchBalance(ctx)
	})
}

// FetchMarkets implements Gateway.
func (g *ResilientGateway) FetchMarkets(ctx context.Context) (map[string]Market, error) {
	return call(ctx, g, "fetch_markets", "", true, func(ctx context.Context) (map[string]Market, error) {
		return g.inner.FetchMarkets(ctx)
	})
}

// QuoteBalance implements Gateway.
func (g *ResilientGateway) QuoteBalance(ctx context.Context, quoteAsset string) (float64, error) {
	return call(ctx, g, "quote_balance", quoteAsset, true, func(ctx context.Context) (float64, error) {
		return g.inner.QuoteBalance(ctx, quoteAsset)
	})
}

// CreateMarketBuyOrder implements Gateway.
func (g *ResilientGateway) CreateMarketBuyOrder(ctx context.Context, symbol string, size float64) (Order, error) {
	return call(ctx, g, "market_buy", symbol, false, func(ctx context.Context) (Order, error) {
		return g.inner.CreateMarketBuyOrder(ctx, symbol, size)
	})
}

// CreateMarketSellOrder implements Gateway.
func (g *ResilientGateway) CreateMarketSellOrder(ctx context.Context, symbol string, size float64) (Order, error) {
	return call(ctx, g, "market_sell", symbol, false, func(ctx context.Context) (Order, error) {
		return g.inner.CreateMarketSellOrder(ctx, symbol, size)
	})
}

type outcome[T any] struct {
	value T
	err   error
}

func call[T any](ctx context.Context, g *ResilientGateway, op string, symbol string, retry bool, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	attempt := 0
	operation := func() error {
		attempt++

		if err := g.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(g.timeoutError(op, err))
		}

		value, err := runWorker(ctx, fn)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(g.timeoutError(op, ctx.Err()))
			}

			if retry && errors.IsRetryable(err) {
				g.logger.Warn("Gateway call failed, retrying",
					zap.String("op", op),
					zap.String("symbol", symbol),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)

				return err
			}

			return backoff.Permanent(err)
		}

		result = value

		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.initialInterval
	policy.MaxElapsedTime = 0

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(g.maxRetries)), ctx))
	if err != nil {
		// backoff reports a context expiry between attempts as the bare context error
		if errors.GetCode(err) == errors.ErrCodeUnknown && ctx.Err() != nil {
			err = g.timeoutError(op, err)
		}

		g.logger.Error("Gateway call failed",
			zap.String("op", op),
			zap.String("symbol", symbol),
			zap.Int("attempts", attempt),
			zap.Error(err),
		)

		var zero T

		return zero, err
	}

	return result, nil
}

// runWorker runs fn in its own goroutine and gives up when ctx is done.
func runWorker[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	done := make(chan outcome[T], 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- outcome[T]{value: zero, err: errors.New(errors.ErrCodeExchange, fmt.Sprintf("gateway panicked: %v", r))}
			}
		}()

		value, err := fn(ctx)
		done <- outcome[T]{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	case o := <-done:
		return o.value, o.err
	}
}

func (g *ResilientGateway) timeoutError(op string, cause error) error {
	return errors.Wrapf(errors.ErrCodeGatewayTimeout, cause, "%s timed out after %s", op, g.timeout)
}

var _ Gateway = (*ResilientGateway)(nil)
