package gateway

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-pilot/internal/types"
)

// OrderSide is the direction of a market order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Order is the exchange acknowledgement of a market order.
type Order struct {
	ID     string    `json:"id"`
	Symbol string    `json:"symbol"`
	Side   OrderSide `json:"side"`
	// Size is the executed quantity
	Size float64 `json:"size"`
	// Price is the average fill price, 0 when the exchange did not report fills
	Price  float64   `json:"price"`
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// Market is a symbol the exchange currently trades.
type Market struct {
	Symbol     string `json:"symbol"`
	BaseAsset  string `json:"base_asset"`
	QuoteAsset string `json:"quote_asset"`
	// MinQuantity is the smallest order size in base asset, 0 when unknown
	MinQuantity float64 `json:"min_quantity"`
}

// Gateway is the exchange the live loop trades against.
//
// Every call is blocking and must honour ctx. Failures are *errors.Error values
// coded ErrCodeNetwork, ErrCodeExchange, ErrCodeOrderFailed or ErrCodeGatewayTimeout.
type Gateway interface {
	// FetchOHLCV returns up to limit candles of the given timeframe, oldest first.
	FetchOHLCV(ctx context.Context, symbol string, timeframe string, limit int) ([]types.MarketData, error)
	// FetchTicker returns the last traded price of symbol.
	FetchTicker(ctx context.Context, symbol string) (float64, error)
	// FetchBalance returns the total (free plus locked) amount per asset.
	FetchBalance(ctx context.Context) (map[string]float64, error)
	CreateMarketBuyOrder(ctx context.Context, symbol string, size float64) (Order, error)
	CreateMarketSellOrder(ctx context.Context, symbol string, size float64) (Order, error)
	// QuoteBalance returns the total amount held in quoteAsset, 0 when none is held.
	QuoteBalance(ctx context.Context, quoteAsset string) (float64, error)
	// FetchMarkets returns the tradable markets keyed by symbol.
	FetchMarkets(ctx context.Context) (map[string]Market, error)
}
