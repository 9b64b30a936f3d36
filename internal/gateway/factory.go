package gateway

import (
	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"go.uber.org/zap"
)

// New creates the gateway named by cfg.Exchange.Provider wrapped in a
// ResilientGateway. A paper gateway starts with the backtest initial balance.
func New(cfg config.Config, log *logger.Logger) (*ResilientGateway, error) {
	var inner Gateway

	switch cfg.Exchange.Provider {
	case config.ProviderPaper:
		inner = NewPaperGateway(cfg.Exchange.QuoteAsset, cfg.Backtest.InitialBalance)
	case config.ProviderBinancePaper, config.ProviderBinanceLive:
		binanceGateway, err := NewBinanceGateway(BinanceConfig{
			ApiKey:    cfg.Exchange.ApiKey,
			SecretKey: cfg.Exchange.SecretKey,
			BaseURL:   "",
		}, cfg.Exchange.Provider == config.ProviderBinancePaper)
		if err != nil {
			return nil, err
		}

		inner = binanceGateway
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported exchange provider: %s", cfg.Exchange.Provider)
	}

	log.Info("Exchange gateway created", zap.String("provider", cfg.Exchange.Provider))

	return NewResilientGateway(inner, cfg.Gateway, log), nil
}

// Inner returns the wrapped gateway.
func (g *ResilientGateway) Inner() Gateway {
	return g.inner
}
