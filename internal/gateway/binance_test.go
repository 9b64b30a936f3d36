package gateway

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// Mock implementations for testing

type mockBinanceClient struct {
	klinesService      *mockKlinesService
	listPricesService  *mockListPricesService
	getAccountService  *mockGetAccountService
	createOrderService *mockCreateOrderService
	exchangeInfo       *mockExchangeInfoService
}

func newMockBinanceClient() *mockBinanceClient {
	return &mockBinanceClient{
		klinesService:      &mockKlinesService{},
		listPricesService:  &mockListPricesService{},
		getAccountService:  &mockGetAccountService{},
		createOrderService: &mockCreateOrderService{},
		exchangeInfo:       &mockExchangeInfoService{},
	}
}

func (m *mockBinanceClient) NewKlinesService() KlinesService {
	return m.klinesService
}

func (m *mockBinanceClient) NewListPricesService() ListPricesService {
	return m.listPricesService
}

func (m *mockBinanceClient) NewGetAccountService() GetAccountService {
	return m.getAccountService
}

func (m *mockBinanceClient) NewCreateOrderService() CreateOrderService {
	return m.createOrderService
}

func (m *mockBinanceClient) NewExchangeInfoService() ExchangeInfoService {
	return m.exchangeInfo
}

type mockExchangeInfoService struct {
	info *binance.ExchangeInfo
	err  error
}

func (m *mockExchangeInfoService) Do(_ context.Context) (*binance.ExchangeInfo, error) {
	return m.info, m.err
}

type mockKlinesService struct {
	klines   []*binance.Kline
	err      error
	symbol   string
	interval string
	limit    int
}

func (m *mockKlinesService) Symbol(symbol string) KlinesService {
	m.symbol = symbol
	return m
}

func (m *mockKlinesService) Interval(interval string) KlinesService {
	m.interval = interval
	return m
}

func (m *mockKlinesService) Limit(limit int) KlinesService {
	m.limit = limit
	return m
}

func (m *mockKlinesService) Do(_ context.Context) ([]*binance.Kline, error) {
	return m.klines, m.err
}

type mockListPricesService struct {
	prices []*binance.SymbolPrice
	err    error
	symbol string
}

func (m *mockListPricesService) Symbol(symbol string) ListPricesService {
	m.symbol = symbol
	return m
}

func (m *mockListPricesService) Do(_ context.Context) ([]*binance.SymbolPrice, error) {
	return m.prices, m.err
}

type mockGetAccountService struct {
	account *binance.Account
	err     error
}

func (m *mockGetAccountService) Do(_ context.Context) (*binance.Account, error) {
	return m.account, m.err
}

type mockCreateOrderService struct {
	response *binance.CreateOrderResponse
	err      error
	symbol   string
	side     binance.SideType
	orderTyp binance.OrderType
	quantity string
}

func (m *mockCreateOrderService) Symbol(symbol string) CreateOrderService {
	m.symbol = symbol
	return m
}

func (m *mockCreateOrderService) Side(side binance.SideType) CreateOrderService {
	m.side = side
	return m
}

func (m *mockCreateOrderService) Type(orderType binance.OrderType) CreateOrderService {
	m.orderTyp = orderType
	return m
}

func (m *mockCreateOrderService) Quantity(quantity string) CreateOrderService {
	m.quantity = quantity
	return m
}

func (m *mockCreateOrderService) Do(_ context.Context) (*binance.CreateOrderResponse, error) {
	return m.response, m.err
}

type BinanceGatewayTestSuite struct {
	suite.Suite
	client  *mockBinanceClient
	gateway *BinanceGateway
}

func TestBinanceGatewaySuite(t *testing.T) {
	suite.Run(t, new(BinanceGatewayTestSuite))
}

func (suite *BinanceGatewayTestSuite) SetupTest() {
	suite.client = newMockBinanceClient()
	suite.gateway = newBinanceGatewayWithClient(suite.client)
}

func (suite *BinanceGatewayTestSuite) TestNewBinanceGatewayRequiresCredentials() {
	_, err := NewBinanceGateway(BinanceConfig{ApiKey: "", SecretKey: "", BaseURL: ""}, true)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

	gateway, err := NewBinanceGateway(BinanceConfig{ApiKey: "key", SecretKey: "secret", BaseURL: "http://localhost:1"}, false)
	suite.NoError(err)
	suite.NotNil(gateway)
}

func (suite *BinanceGatewayTestSuite) TestFetchOHLCV() {
	openTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.client.klinesService.klines = []*binance.Kline{
		{OpenTime: openTime.UnixMilli(), Open: "100.0", High: "105.5", Low: "99.0", Close: "104.0", Volume: "12.5"},
		{OpenTime: openTime.Add(time.Hour).UnixMilli(), Open: "104.0", High: "106.0", Low: "103.0", Close: "105.0", Volume: "8"},
	}

	candles, err := suite.gateway.FetchOHLCV(context.Background(), "BTCUSDT", "1h", 100)
	suite.Require().NoError(err)
	suite.Require().Len(candles, 2)

	suite.Equal("BTCUSDT", suite.client.klinesService.symbol)
	suite.Equal("1h", suite.client.klinesService.interval)
	suite.Equal(100, suite.client.klinesService.limit)

	suite.Equal(openTime, candles[0].Time)
	suite.Equal(105.5, candles[0].High)
	suite.Equal(104.0, candles[0].Close)
	suite.Equal(12.5, candles[0].Volume)
	suite.Equal("BTCUSDT", candles[1].Symbol)
}

func (suite *BinanceGatewayTestSuite) TestFetchOHLCVInvalidValue() {
	suite.client.klinesService.klines = []*binance.Kline{
		{OpenTime: 0, Open: "x", High: "1", Low: "1", Close: "1", Volume: "1"},
	}

	_, err := suite.gateway.FetchOHLCV(context.Background(), "BTCUSDT", "1h", 10)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidCandle))
}

func (suite *BinanceGatewayTestSuite) TestErrorClassification() {
	suite.client.klinesService.err = fmt.Errorf("connection reset by peer")
	_, err := suite.gateway.FetchOHLCV(context.Background(), "BTCUSDT", "1h", 10)
	suite.True(errors.HasCode(err, errors.ErrCodeNetwork))

	suite.client.klinesService.err = &common.APIError{Code: -1121, Message: "Invalid symbol."}
	_, err = suite.gateway.FetchOHLCV(context.Background(), "BTCUSDT", "1h", 10)
	suite.True(errors.HasCode(err, errors.ErrCodeExchange))
}

func (suite *BinanceGatewayTestSuite) TestFetchTicker() {
	suite.client.listPricesService.prices = []*binance.SymbolPrice{
		{Symbol: "ETHUSDT", Price: "2000"},
		{Symbol: "BTCUSDT", Price: "42000.5"},
	}

	price, err := suite.gateway.FetchTicker(context.Background(), "BTCUSDT")
	suite.NoError(err)
	suite.Equal(42000.5, price)
	suite.Equal("BTCUSDT", suite.client.listPricesService.symbol)

	_, err = suite.gateway.FetchTicker(context.Background(), "SOLUSDT")
	suite.True(errors.HasCode(err, errors.ErrCodeExchange))
}

func (suite *BinanceGatewayTestSuite) TestFetchBalance() {
	suite.client.getAccountService.account = &binance.Account{
		Balances: []binance.Balance{
			{Asset: "USDT", Free: "900.5", Locked: "100"},
			{Asset: "BTC", Free: "0.01", Locked: "0"},
			{Asset: "ETH", Free: "0", Locked: "0"},
		},
	}

	balances, err := suite.gateway.FetchBalance(context.Background())
	suite.NoError(err)
	suite.Equal(map[string]float64{"USDT": 1000.5, "BTC": 0.01}, balances)

	quote, err := suite.gateway.QuoteBalance(context.Background(), "USDT")
	suite.NoError(err)
	suite.Equal(1000.5, quote)

	missing, err := suite.gateway.QuoteBalance(context.Background(), "BUSD")
	suite.NoError(err)
	suite.Zero(missing)
}

func (suite *BinanceGatewayTestSuite) TestFetchMarkets() {
	suite.client.exchangeInfo.info = &binance.ExchangeInfo{
		Symbols: []binance.Symbol{
			{
				Symbol:     "BTCUSDT",
				Status:     "TRADING",
				BaseAsset:  "BTC",
				QuoteAsset: "USDT",
				Filters: []map[string]interface{}{
					{"filterType": "PRICE_FILTER", "minPrice": "0.01"},
					{"filterType": "LOT_SIZE", "minQty": "0.00001", "maxQty": "9000", "stepSize": "0.00001"},
				},
			},
			{Symbol: "ETHUSDT", Status: "TRADING", BaseAsset: "ETH", QuoteAsset: "USDT"},
			{Symbol: "LUNAUSDT", Status: "BREAK", BaseAsset: "LUNA", QuoteAsset: "USDT"},
		},
	}

	markets, err := suite.gateway.FetchMarkets(context.Background())
	suite.NoError(err)
	suite.Len(markets, 2)
	suite.Equal(Market{Symbol: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT", MinQuantity: 0.00001}, markets["BTCUSDT"])
	suite.Zero(markets["ETHUSDT"].MinQuantity)
	suite.NotContains(markets, "LUNAUSDT")

	suite.client.exchangeInfo.err = fmt.Errorf("i/o timeout")
	_, err = suite.gateway.FetchMarkets(context.Background())
	suite.True(errors.HasCode(err, errors.ErrCodeNetwork))
}

func (suite *BinanceGatewayTestSuite) TestCreateMarketBuyOrder() {
	suite.client.createOrderService.response = &binance.CreateOrderResponse{
		Symbol:           "BTCUSDT",
		OrderID:          12345,
		TransactTime:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
		ExecutedQuantity: "0.3",
		Status:           binance.OrderStatusTypeFilled,
		Side:             binance.SideTypeBuy,
		Fills: []*binance.Fill{
			{Price: "100", Quantity: "0.1"},
			{Price: "102", Quantity: "0.2"},
		},
	}

	order, err := suite.gateway.CreateMarketBuyOrder(context.Background(), "BTCUSDT", 0.123456789)
	suite.Require().NoError(err)

	suite.Equal("BTCUSDT", suite.client.createOrderService.symbol)
	suite.Equal(binance.SideTypeBuy, suite.client.createOrderService.side)
	suite.Equal(binance.OrderTypeMarket, suite.client.createOrderService.orderTyp)
	suite.Equal("0.12345678", suite.client.createOrderService.quantity)

	suite.Equal("12345", order.ID)
	suite.Equal(OrderSideBuy, order.Side)
	suite.InDelta(0.3, order.Size, 1e-12)
	suite.InDelta(101.3333333333, order.Price, 1e-6)
	suite.Equal("FILLED", order.Status)
}

func (suite *BinanceGatewayTestSuite) TestCreateMarketSellOrder() {
	suite.client.createOrderService.response = &binance.CreateOrderResponse{
		Symbol:           "ETHUSDT",
		OrderID:          7,
		ExecutedQuantity: "",
		Status:           binance.OrderStatusTypeNew,
		Side:             binance.SideTypeSell,
	}

	order, err := suite.gateway.CreateMarketSellOrder(context.Background(), "ETHUSDT", 1.5)
	suite.Require().NoError(err)
	suite.Equal(binance.SideTypeSell, suite.client.createOrderService.side)
	suite.Equal("1.5", suite.client.createOrderService.quantity)
	suite.Equal(OrderSideSell, order.Side)
	suite.Equal(1.5, order.Size)
	suite.Zero(order.Price)
}

func (suite *BinanceGatewayTestSuite) TestOrderValidation() {
	_, err := suite.gateway.CreateMarketBuyOrder(context.Background(), "BTCUSDT", 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = suite.gateway.CreateMarketBuyOrder(context.Background(), "BTCUSDT", 0.000000001)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *BinanceGatewayTestSuite) TestOrderFailures() {
	suite.client.createOrderService.err = &common.APIError{Code: -2010, Message: "Account has insufficient balance"}
	_, err := suite.gateway.CreateMarketBuyOrder(context.Background(), "BTCUSDT", 1)
	suite.True(errors.HasCode(err, errors.ErrCodeOrderFailed))

	suite.client.createOrderService.err = fmt.Errorf("i/o timeout")
	_, err = suite.gateway.CreateMarketSellOrder(context.Background(), "BTCUSDT", 1)
	suite.True(errors.HasCode(err, errors.ErrCodeNetwork))
}
