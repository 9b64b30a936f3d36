package gateway

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/internal/utils"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
)

const (
	// BinanceDecimalPrecision is the quantity precision used for orders.
	// Symbol specific LOT_SIZE filters are not consulted.
	BinanceDecimalPrecision = 8
)

// Service interfaces for mocking the Binance API

// KlinesService interface for fetching candles.
type KlinesService interface {
	Symbol(symbol string) KlinesService
	Interval(interval string) KlinesService
	Limit(limit int) KlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// ListPricesService interface for fetching ticker prices.
type ListPricesService interface {
	Symbol(symbol string) ListPricesService
	Do(ctx context.Context) ([]*binance.SymbolPrice, error)
}

// GetAccountService interface for getting account info.
type GetAccountService interface {
	Do(ctx context.Context) (*binance.Account, error)
}

// CreateOrderService interface for creating orders.
type CreateOrderService interface {
	Symbol(symbol string) CreateOrderService
	Side(side binance.SideType) CreateOrderService
	Type(orderType binance.OrderType) CreateOrderService
	Quantity(quantity string) CreateOrderService
	Do(ctx context.Context) (*binance.CreateOrderResponse, error)
}

// ExchangeInfoService interface for listing the exchange symbols.
type ExchangeInfoService interface {
	Do(ctx context.Context) (*binance.ExchangeInfo, error)
}

// BinanceClient abstracts the Binance client for testing.
type BinanceClient interface {
	NewKlinesService() KlinesService
	NewListPricesService() ListPricesService
	NewGetAccountService() GetAccountService
	NewCreateOrderService() CreateOrderService
	NewExchangeInfoService() ExchangeInfoService
}

// BinanceConfig holds the credentials of a Binance account.
type BinanceConfig struct {
	ApiKey    string `validate:"required"`
	SecretKey string `validate:"required"`
	// BaseURL overrides the endpoint, mostly for tests
	BaseURL string
}

// realBinanceClient wraps the actual binance.Client.
type realBinanceClient struct {
	client *binance.Client
}

func (r *realBinanceClient) NewKlinesService() KlinesService {
	return &realKlinesService{service: r.client.NewKlinesService()}
}

func (r *realBinanceClient) NewListPricesService() ListPricesService {
	return &realListPricesService{service: r.client.NewListPricesService()}
}

func (r *realBinanceClient) NewGetAccountService() GetAccountService {
	return &realGetAccountService{service: r.client.NewGetAccountService()}
}

func (r *realBinanceClient) NewCreateOrderService() CreateOrderService {
	return &realCreateOrderService{service: r.client.NewCreateOrderService()}
}

func (r *realBinanceClient) NewExchangeInfoService() ExchangeInfoService {
	return &realExchangeInfoService{service: r.client.NewExchangeInfoService()}
}

// Real service wrappers

type realKlinesService struct {
	service *binance.KlinesService
}

func (s *realKlinesService) Symbol(symbol string) KlinesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realKlinesService) Interval(interval string) KlinesService {
	s.service = s.service.Interval(interval)

	return s
}

func (s *realKlinesService) Limit(limit int) KlinesService {
	s.service = s.service.Limit(limit)

	return s
}

func (s *realKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

type realListPricesService struct {
	service *binance.ListPricesService
}

func (s *realListPricesService) Symbol(symbol string) ListPricesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realListPricesService) Do(ctx context.Context) ([]*binance.SymbolPrice, error) {
	return s.service.Do(ctx)
}

type realGetAccountService struct {
	service *binance.GetAccountService
}

func (s *realGetAccountService) Do(ctx context.Context) (*binance.Account, error) {
	return s.service.Do(ctx)
}

type realExchangeInfoService struct {
	service *binance.ExchangeInfoService
}

func (s *realExchangeInfoService) Do(ctx context.Context) (*binance.ExchangeInfo, error) {
	return s.service.Do(ctx)
}

type realCreateOrderService struct {
	service *binance.CreateOrderService
}

func (s *realCreateOrderService) Symbol(symbol string) CreateOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCreateOrderService) Side(side binance.SideType) CreateOrderService {
	s.service = s.service.Side(side)

	return s
}

func (s *realCreateOrderService) Type(orderType binance.OrderType) CreateOrderService {
	s.service = s.service.Type(orderType)

	return s
}

func (s *realCreateOrderService) Quantity(quantity string) CreateOrderService {
	s.service = s.service.Quantity(quantity)

	return s
}

func (s *realCreateOrderService) Do(ctx context.Context) (*binance.CreateOrderResponse, error) {
	return s.service.Do(ctx)
}

// BinanceGateway implements Gateway on the Binance spot API.
// It is stateless, all data is fetched directly from Binance.
type BinanceGateway struct {
	client           BinanceClient
	decimalPrecision int
}

// NewBinanceGateway creates a gateway for the Binance spot API.
// If useTestnet is true it connects to the Binance testnet.
// If config.BaseURL is set, it takes precedence over useTestnet.
func NewBinanceGateway(config BinanceConfig, useTestnet bool) (*BinanceGateway, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMissingParameter, "binance credentials are required", err)
	}

	if useTestnet {
		binance.UseTestnet = true
	}

	client := binance.NewClient(config.ApiKey, config.SecretKey)

	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return &BinanceGateway{
		client:           &realBinanceClient{client: client},
		decimalPrecision: BinanceDecimalPrecision,
	}, nil
}

// newBinanceGatewayWithClient creates a gateway with a custom client.
// This is used for testing with mock clients.
func newBinanceGatewayWithClient(client BinanceClient) *BinanceGateway {
	return &BinanceGateway{
		client:           client,
		decimalPrecision: BinanceDecimalPrecision,
	}
}

// FetchOHLCV implements Gateway.
func (b *BinanceGateway) FetchOHLCV(ctx context.Context, symbol string, timeframe string, limit int) ([]types.MarketData, error) {
	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(timeframe).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, classify(err, "failed to fetch klines from Binance")
	}

	candles := make([]types.MarketData, 0, len(klines))

	for _, k := range klines {
		candle, convertErr := convertKline(symbol, k)
		if convertErr != nil {
			return nil, convertErr
		}

		candles = append(candles, candle)
	}

	return candles, nil
}

// FetchTicker implements Gateway.
func (b *BinanceGateway) FetchTicker(ctx context.Context, symbol string) (float64, error) {
	prices, err := b.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, classify(err, "failed to fetch ticker from Binance")
	}

	for _, p := range prices {
		if p.Symbol != symbol {
			continue
		}

		price, parseErr := strconv.ParseFloat(p.Price, 64)
		if parseErr != nil {
			return 0, errors.Wrapf(errors.ErrCodeExchange, parseErr, "invalid ticker price for %s", symbol)
		}

		return price, nil
	}

	return 0, errors.Newf(errors.ErrCodeExchange, "ticker unavailable for %s", symbol)
}

// FetchBalance implements Gateway.
func (b *BinanceGateway) FetchBalance(ctx context.Context) (map[string]float64, error) {
	account, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, classify(err, "failed to get account info from Binance")
	}

	balances := make(map[string]float64, len(account.Balances))

	for _, balance := range account.Balances {
		free, _ := strconv.ParseFloat(balance.Free, 64)
		locked, _ := strconv.ParseFloat(balance.Locked, 64)

		if total := free + locked; total > 0 {
			balances[balance.Asset] = total
		}
	}

	return balances, nil
}

// QuoteBalance implements Gateway.
func (b *BinanceGateway) QuoteBalance(ctx context.Context, quoteAsset string) (float64, error) {
	balances, err := b.FetchBalance(ctx)
	if err != nil {
		return 0, err
	}

	return balances[quoteAsset], nil
}

// FetchMarkets implements Gateway. Symbols that are halted or in break are left out.
func (b *BinanceGateway) FetchMarkets(ctx context.Context) (map[string]Market, error) {
	info, err := b.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, classify(err, "failed to fetch exchange info from Binance")
	}

	markets := make(map[string]Market, len(info.Symbols))

	for _, symbol := range info.Symbols {
		if symbol.Status != string(binance.SymbolStatusTypeTrading) {
			continue
		}

		minQuantity := 0.0
		if lotSize := symbol.LotSizeFilter(); lotSize != nil {
			minQuantity, _ = strconv.ParseFloat(lotSize.MinQuantity, 64)
		}

		markets[symbol.Symbol] = Market{
			Symbol:      symbol.Symbol,
			BaseAsset:   symbol.BaseAsset,
			QuoteAsset:  symbol.QuoteAsset,
			MinQuantity: minQuantity,
		}
	}

	return markets, nil
}

// CreateMarketBuyOrder implements Gateway.
func (b *BinanceGateway) CreateMarketBuyOrder(ctx context.Context, symbol string, size float64) (Order, error) {
	return b.placeMarketOrder(ctx, symbol, binance.SideTypeBuy, size)
}

// CreateMarketSellOrder implements Gateway.
func (b *BinanceGateway) CreateMarketSellOrder(ctx context.Context, symbol string, size float64) (Order, error) {
	return b.placeMarketOrder(ctx, symbol, binance.SideTypeSell, size)
}

func (b *BinanceGateway) placeMarketOrder(ctx context.Context, symbol string, side binance.SideType, size float64) (Order, error) {
	if size <= 0 {
		return Order{}, errors.New(errors.ErrCodeInvalidParameter, "order quantity must be greater than zero")
	}

	roundedQuantity := utils.RoundToDecimalPrecision(size, b.decimalPrecision)
	if roundedQuantity <= 0 {
		return Order{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"order quantity %.8f is too small after rounding to %d decimal places",
			size, b.decimalPrecision)
	}

	response, err := b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(side).
		Type(binance.OrderTypeMarket).
		Quantity(utils.FormatQuantity(roundedQuantity, b.decimalPrecision)).
		Do(ctx)
	if err != nil {
		if common.IsAPIError(err) {
			return Order{}, errors.Wrapf(errors.ErrCodeOrderFailed, err, "market %s %s rejected by Binance", side, symbol)
		}

		return Order{}, errors.Wrapf(errors.ErrCodeNetwork, err, "market %s %s failed", side, symbol)
	}

	return convertOrderResponse(response, roundedQuantity), nil
}

// classify maps a Binance client error to a coded error.
// API errors are exchange rejections, anything else is a transport failure.
func classify(err error, message string) error {
	if common.IsAPIError(err) {
		return errors.Wrap(errors.ErrCodeExchange, message, err)
	}

	return errors.Wrap(errors.ErrCodeNetwork, message, err)
}

// Helper functions

// convertKline converts a Binance kline to a candle stamped with its open time.
func convertKline(symbol string, k *binance.Kline) (types.MarketData, error) {
	values := make([]float64, 5)

	for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.MarketData{}, errors.Wrapf(errors.ErrCodeInvalidCandle, err, "invalid kline value %q for %s", raw, symbol)
		}

		values[i] = v
	}

	return types.MarketData{
		Id:     "",
		Symbol: symbol,
		Time:   time.UnixMilli(k.OpenTime).UTC(),
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
	}, nil
}

// convertOrderResponse converts a Binance order response, averaging the fill prices.
func convertOrderResponse(response *binance.CreateOrderResponse, requested float64) Order {
	side := OrderSideBuy
	if response.Side == binance.SideTypeSell {
		side = OrderSideSell
	}

	executed, err := strconv.ParseFloat(response.ExecutedQuantity, 64)
	if err != nil || executed <= 0 {
		executed = requested
	}

	var notional, filled float64

	for _, fill := range response.Fills {
		price, _ := strconv.ParseFloat(fill.Price, 64)
		qty, _ := strconv.ParseFloat(fill.Quantity, 64)
		notional += price * qty
		filled += qty
	}

	price := 0.0
	if filled > 0 {
		price = notional / filled
	}

	return Order{
		ID:     strconv.FormatInt(response.OrderID, 10),
		Symbol: response.Symbol,
		Side:   side,
		Size:   executed,
		Price:  price,
		Status: string(response.Status),
		Time:   time.UnixMilli(response.TransactTime).UTC(),
	}
}

// Ensure BinanceGateway implements Gateway.
var _ Gateway = (*BinanceGateway)(nil)
