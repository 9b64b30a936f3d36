package config

import (
	"time"

	"github.com/rxtech-lab/argo-pilot/internal/version"
)

// Exchange providers understood by the gateway factory.
const (
	ProviderPaper        = "paper"
	ProviderBinancePaper = "binance-paper"
	ProviderBinanceLive  = "binance-live"
)

// Config is the single configuration value of the process.
// It is created once at startup and passed explicitly to every component.
type Config struct {
	// Version is the config format version, checked against the binary
	Version string `json:"version" yaml:"version" jsonschema:"description=Config format version,default=0.3.0"`

	Exchange ExchangeConfig `json:"exchange" yaml:"exchange" jsonschema:"description=Exchange connection"`

	// TradingPairs are the symbols analysed each cycle, in order
	TradingPairs []string `json:"trading_pairs" yaml:"trading_pairs" jsonschema:"description=Symbols to trade" validate:"required,min=1,dive,required"`

	Timeframes Timeframes `json:"timeframes" yaml:"timeframes" jsonschema:"description=Candle timeframes"`

	// TradingIntervalSeconds is the time between two polling cycles
	TradingIntervalSeconds int `json:"trading_interval" yaml:"trading_interval" jsonschema:"description=Seconds between polling cycles,default=300" validate:"gt=0"`

	// ErrorBackoffSeconds is the wait after a cycle failed unexpectedly
	ErrorBackoffSeconds int `json:"error_backoff" yaml:"error_backoff" jsonschema:"description=Seconds to wait after a failed cycle,default=60" validate:"gte=0"`

	Gateway  GatewayConfig  `json:"gateway" yaml:"gateway"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Scorer   ScorerConfig   `json:"scorer" yaml:"scorer"`
	LiveExit LiveExitConfig `json:"live_exit" yaml:"live_exit"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Ledger   LedgerConfig   `json:"ledger" yaml:"ledger"`
	API      APIConfig      `json:"api" yaml:"api"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

type ExchangeConfig struct {
	Provider   string `json:"provider" yaml:"provider" jsonschema:"description=Exchange provider,enum=paper,enum=binance-paper,enum=binance-live,default=binance-paper" validate:"required,oneof=paper binance-paper binance-live"`
	QuoteAsset string `json:"quote_asset" yaml:"quote_asset" jsonschema:"description=Asset the balance is measured in,default=USDT" validate:"required"`
	// ApiKey and SecretKey are usually supplied through BINANCE_API_KEY and BINANCE_API_SECRET
	ApiKey    string `json:"api_key" yaml:"api_key" jsonschema:"title=API Key,description=Binance API key"`
	SecretKey string `json:"secret_key" yaml:"secret_key" jsonschema:"title=Secret Key,description=Binance API secret key"`
}

type Timeframes struct {
	Primary   string `json:"primary" yaml:"primary" jsonschema:"description=Timeframe used for signals,default=1h" validate:"required"`
	Secondary string `json:"secondary" yaml:"secondary" jsonschema:"description=Higher timeframe,default=4h"`
}

type GatewayConfig struct {
	TimeoutSeconds    int     `json:"timeout" yaml:"timeout" jsonschema:"description=Seconds before a gateway call is abandoned,default=10" validate:"gt=0"`
	MaxRetries        int     `json:"max_retries" yaml:"max_retries" jsonschema:"description=Retries for network failures,default=3" validate:"gte=0"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" jsonschema:"description=Outbound request rate limit,default=5" validate:"gt=0"`
	CandleLimit       int     `json:"candle_limit" yaml:"candle_limit" jsonschema:"description=Candles fetched per analysis,default=500" validate:"gte=30"`
}

// Timeout returns the per call timeout.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

type RiskConfig struct {
	RiskPerTrade      float64 `json:"risk_per_trade" yaml:"risk_per_trade" jsonschema:"description=Fraction of balance risked per trade,default=0.01" validate:"gt=0,lte=1"`
	MaxRiskPerTrade   float64 `json:"max_risk_per_trade" yaml:"max_risk_per_trade" jsonschema:"description=Upper bound for the adjusted risk,default=0.02" validate:"gt=0,lte=1,gtefield=RiskPerTrade"`
	MaxDrawdown       float64 `json:"max_drawdown" yaml:"max_drawdown" jsonschema:"description=Drawdown fraction that blocks new entries,default=0.1" validate:"gt=0,lte=1"`
	PositionSizeLimit float64 `json:"position_size_limit" yaml:"position_size_limit" jsonschema:"description=Max fraction of balance in one position,default=0.2" validate:"gt=0,lte=1"`
	MaxTrades         int     `json:"max_trades" yaml:"max_trades" jsonschema:"description=Max concurrently open trades,default=3" validate:"gt=0"`
	VolatilityWindow  int     `json:"volatility_window" yaml:"volatility_window" jsonschema:"description=Returns used for volatility,default=20" validate:"gt=1"`
}

type ScorerConfig struct {
	RSIBuy        float64 `json:"rsi_buy" yaml:"rsi_buy" jsonschema:"default=30" validate:"gte=0,lte=100"`
	RSISell       float64 `json:"rsi_sell" yaml:"rsi_sell" jsonschema:"default=70" validate:"gte=0,lte=100,gtfield=RSIBuy"`
	RSIWeight     float64 `json:"rsi_weight" yaml:"rsi_weight" jsonschema:"default=0.3" validate:"gte=0"`
	MACDWeight    float64 `json:"macd_weight" yaml:"macd_weight" jsonschema:"default=0.2" validate:"gte=0"`
	EMAWeight     float64 `json:"ema_weight" yaml:"ema_weight" jsonschema:"default=0.2" validate:"gte=0"`
	ADXStrong     float64 `json:"adx_strong" yaml:"adx_strong" jsonschema:"default=25" validate:"gte=0"`
	ADXWeight     float64 `json:"adx_weight" yaml:"adx_weight" jsonschema:"default=0.2" validate:"gte=0"`
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence" jsonschema:"description=Below this the action is forced to hold,default=0.4" validate:"gte=0,lte=1"`
	MinCandles    int     `json:"min_candles" yaml:"min_candles" jsonschema:"description=Candles required before any signal,default=30" validate:"gte=1"`
}

// LiveExitConfig drives entries and exits in live trading.
type LiveExitConfig struct {
	EntryConfidence float64 `json:"entry_confidence" yaml:"entry_confidence" jsonschema:"default=0.4" validate:"gte=0,lte=1"`
	ExitConfidence  float64 `json:"exit_confidence" yaml:"exit_confidence" jsonschema:"default=0.4" validate:"gte=0,lte=1"`
	StopATRMultiple float64 `json:"stop_atr_multiple" yaml:"stop_atr_multiple" jsonschema:"default=2" validate:"gt=0"`
	TakeProfitPct   float64 `json:"take_profit_pct" yaml:"take_profit_pct" jsonschema:"default=2" validate:"gt=0"`
	TrailLockRatio  float64 `json:"trail_lock_ratio" yaml:"trail_lock_ratio" jsonschema:"description=Share of open profit locked by the trailing stop,default=0.5" validate:"gt=0,lt=1"`
}

// BacktestConfig drives the simulator. Its exit band is independent of LiveExitConfig.
type BacktestConfig struct {
	InitialBalance       float64 `json:"initial_balance" yaml:"initial_balance" jsonschema:"default=10000" validate:"gt=0"`
	MinTotalScore        int     `json:"min_total_score" yaml:"min_total_score" jsonschema:"default=2" validate:"gte=1"`
	MinStrength          float64 `json:"min_strength" yaml:"min_strength" jsonschema:"default=0.5" validate:"gte=0,lte=1"`
	ExitBandPct          float64 `json:"exit_band_pct" yaml:"exit_band_pct" jsonschema:"default=5" validate:"gt=0"`
	StopATRMultiple      float64 `json:"stop_atr_multiple" yaml:"stop_atr_multiple" jsonschema:"default=2" validate:"gt=0"`
	MonteCarloIterations int     `json:"monte_carlo_iterations" yaml:"monte_carlo_iterations" jsonschema:"default=1000" validate:"gt=0"`
	Seed                 int64   `json:"seed" yaml:"seed" jsonschema:"default=42"`
}

type LedgerConfig struct {
	// Path is the parquet file the ledger is exported to. Empty keeps it in memory.
	Path string `json:"path" yaml:"path" jsonschema:"description=Parquet file for the trade ledger"`
}

type APIConfig struct {
	Listen string `json:"listen" yaml:"listen" jsonschema:"default=:8000" validate:"required"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when no file overrides a value.
func Default() Config {
	return Config{
		Version: version.ConfigVersion,
		Exchange: ExchangeConfig{
			Provider:   ProviderBinancePaper,
			QuoteAsset: "USDT",
			ApiKey:     "",
			SecretKey:  "",
		},
		TradingPairs: []string{"BTCUSDT", "ETHUSDT"},
		Timeframes: Timeframes{
			Primary:   "1h",
			Secondary: "4h",
		},
		TradingIntervalSeconds: 300,
		ErrorBackoffSeconds:    60,
		Gateway: GatewayConfig{
			TimeoutSeconds:    10,
			MaxRetries:        3,
			RequestsPerSecond: 5,
			CandleLimit:       500,
		},
		Risk: RiskConfig{
			RiskPerTrade:      0.01,
			MaxRiskPerTrade:   0.02,
			MaxDrawdown:       0.10,
			PositionSizeLimit: 0.20,
			MaxTrades:         3,
			VolatilityWindow:  20,
		},
		Scorer: ScorerConfig{
			RSIBuy:        30,
			RSISell:       70,
			RSIWeight:     0.3,
			MACDWeight:    0.2,
			EMAWeight:     0.2,
			ADXStrong:     25,
			ADXWeight:     0.2,
			MinConfidence: 0.4,
			MinCandles:    30,
		},
		LiveExit: LiveExitConfig{
			EntryConfidence: 0.4,
			ExitConfidence:  0.4,
			StopATRMultiple: 2,
			TakeProfitPct:   2,
			TrailLockRatio:  0.5,
		},
		Backtest: BacktestConfig{
			InitialBalance:       10000,
			MinTotalScore:        2,
			MinStrength:          0.5,
			ExitBandPct:          5,
			StopATRMultiple:      2,
			MonteCarloIterations: 1000,
			Seed:                 42,
		},
		Ledger: LedgerConfig{
			Path: "",
		},
		API: APIConfig{
			Listen: ":8000",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// TradingInterval returns the time between two polling cycles.
func (c Config) TradingInterval() time.Duration {
	return time.Duration(c.TradingIntervalSeconds) * time.Second
}

// ErrorBackoff returns the wait after a failed cycle.
func (c Config) ErrorBackoff() time.Duration {
	return time.Duration(c.ErrorBackoffSeconds) * time.Second
}
