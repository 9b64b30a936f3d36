package gateway

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
)

// PaperGateway is an in-memory exchange for dry runs and tests.
// It serves candles loaded with SetCandles and fills market orders at the
// last close without fees or slippage.
type PaperGateway struct {
	mu         sync.Mutex
	quoteAsset string
	candles    map[string][]types.MarketData
	balances   map[string]float64
	orderID    int64
}

// NewPaperGateway creates a paper gateway holding initialBalance of quoteAsset.
func NewPaperGateway(quoteAsset string, initialBalance float64) *PaperGateway {
	return &PaperGateway{
		quoteAsset: quoteAsset,
		candles:    make(map[string][]types.MarketData),
		balances:   map[string]float64{quoteAsset: initialBalance},
		orderID:    0,
	}
}

// SetCandles replaces the candle series of symbol.
func (p *PaperGateway) SetCandles(symbol string, candles []types.MarketData) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.candles[symbol] = append([]types.MarketData(nil), candles...)
}

// AppendCandle adds a candle to the series of symbol, moving its ticker.
func (p *PaperGateway) AppendCandle(symbol string, candle types.MarketData) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.candles[symbol] = append(p.candles[symbol], candle)
}

// FetchOHLCV implements Gateway.
func (p *PaperGateway) FetchOHLCV(ctx context.Context, symbol string, timeframe string, limit int) ([]types.MarketData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	candles, ok := p.candles[symbol]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeInvalidSymbol, "no candles for %s", symbol)
	}

	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}

	return append([]types.MarketData(nil), candles...), nil
}

// FetchTicker implements Gateway.
func (p *PaperGateway) FetchTicker(ctx context.Context, symbol string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastPrice(symbol)
}

// FetchBalance implements Gateway.
func (p *PaperGateway) FetchBalance(ctx context.Context) (map[string]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	balances := make(map[string]float64, len(p.balances))
	for asset, amount := range p.balances {
		if amount > 0 {
			balances[asset] = amount
		}
	}

	return balances, nil
}

// QuoteBalance implements Gateway.
func (p *PaperGateway) QuoteBalance(ctx context.Context, quoteAsset string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.balances[quoteAsset], nil
}

// FetchMarkets implements Gateway. Every symbol with candles is a market.
func (p *PaperGateway) FetchMarkets(ctx context.Context) (map[string]Market, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	markets := make(map[string]Market, len(p.candles))
	for symbol := range p.candles {
		markets[symbol] = Market{
			Symbol:     symbol,
			BaseAsset:  p.baseAsset(symbol),
			QuoteAsset: p.quoteAsset,
		}
	}

	return markets, nil
}

// CreateMarketBuyOrder implements Gateway.
func (p *PaperGateway) CreateMarketBuyOrder(ctx context.Context, symbol string, size float64) (Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if size <= 0 {
		return Order{}, errors.New(errors.ErrCodeInvalidParameter, "order quantity must be greater than zero")
	}

	price, err := p.lastPrice(symbol)
	if err != nil {
		return Order{}, err
	}

	cost := price * size
	if cost > p.balances[p.quoteAsset] {
		return Order{}, errors.Newf(errors.ErrCodeOrderFailed, "insufficient %s balance for %s", p.quoteAsset, symbol)
	}

	p.balances[p.quoteAsset] -= cost
	p.balances[p.baseAsset(symbol)] += size

	return p.fill(symbol, OrderSideBuy, size, price), nil
}

// CreateMarketSellOrder implements Gateway.
func (p *PaperGateway) CreateMarketSellOrder(ctx context.Context, symbol string, size float64) (Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if size <= 0 {
		return Order{}, errors.New(errors.ErrCodeInvalidParameter, "order quantity must be greater than zero")
	}

	price, err := p.lastPrice(symbol)
	if err != nil {
		return Order{}, err
	}

	base := p.baseAsset(symbol)
	if p.balances[base] < size {
		return Order{}, errors.Newf(errors.ErrCodeOrderFailed, "insufficient %s balance", base)
	}

	p.balances[base] -= size
	p.balances[p.quoteAsset] += price * size

	return p.fill(symbol, OrderSideSell, size, price), nil
}

func (p *PaperGateway) lastPrice(symbol string) (float64, error) {
	candles := p.candles[symbol]
	if len(candles) == 0 {
		return 0, errors.Newf(errors.ErrCodeExchange, "ticker unavailable for %s", symbol)
	}

	return candles[len(candles)-1].Close, nil
}

func (p *PaperGateway) baseAsset(symbol string) string {
	return strings.TrimSuffix(symbol, p.quoteAsset)
}

func (p *PaperGateway) fill(symbol string, side OrderSide, size, price float64) Order {
	p.orderID++

	return Order{
		ID:     "paper-" + strconv.FormatInt(p.orderID, 10),
		Symbol: symbol,
		Side:   side,
		Size:   size,
		Price:  price,
		Status: "FILLED",
		Time:   time.Now().UTC(),
	}
}

var _ Gateway = (*PaperGateway)(nil)
