package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pilot/internal/api"
	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/datasource"
	"github.com/rxtech-lab/argo-pilot/internal/engine"
	"github.com/rxtech-lab/argo-pilot/internal/engine/engine_v1"
	"github.com/rxtech-lab/argo-pilot/internal/gateway"
	"github.com/rxtech-lab/argo-pilot/internal/ledger"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the trading loop behind the REST control surface",
		Flags: []cli.Flag{
			configFlag,
			envFlag,
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Address of the control surface, overrides api.listen",
			},
			&cli.BoolFlag{
				Name:  "autostart",
				Usage: "Start the trading loop immediately instead of waiting for POST /bot/start",
			},
			&cli.StringFlag{
				Name:  "replay",
				Usage: "Parquet or csv candles replayed one candle per cycle (paper provider only)",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if listen := cmd.String("listen"); listen != "" {
		cfg.API.Listen = listen
	}

	gw, err := gateway.New(cfg, log)
	if err != nil {
		return err
	}

	var callbacks engine.TradingCallbacks

	if path := cmd.String("replay"); path != "" {
		paper, ok := gw.Inner().(*gateway.PaperGateway)
		if !ok {
			return fmt.Errorf("--replay requires the %s provider, got %s", config.ProviderPaper, cfg.Exchange.Provider)
		}

		replay, err := newPaperReplay(paper, path, cfg, log)
		if err != nil {
			return err
		}

		onCycle := engine.OnCycleCallback(replay.advance)
		callbacks.OnCycle = &onCycle
	}

	onError := engine.OnErrorCallback(func(symbol string, err error) {
		log.Warn("Trading error", zap.String("symbol", symbol), zap.Error(err))
	})
	callbacks.OnError = &onError

	tradeLedger := ledger.NewWriter(cfg.Ledger.Path, log)
	if err := tradeLedger.Initialize(); err != nil {
		return err
	}
	defer tradeLedger.Close() //nolint:errcheck

	tradingEngine, err := engine_v1.NewTradingEngineV1(cfg, gw, tradeLedger, callbacks, log)
	if err != nil {
		return err
	}

	server := api.NewServer(tradingEngine, log)
	if err := server.Start(cfg.API.Listen); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd.Bool("autostart") {
		if err := tradingEngine.Start(ctx); err != nil {
			return err
		}
	}

	<-ctx.Done()
	log.Info("Shutting down")

	if err := tradingEngine.Stop(); err != nil {
		log.Error("Failed to stop engine", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down api server: %w", err)
	}

	summary, err := tradeLedger.Summary()
	if err == nil {
		log.Info("Session summary",
			zap.Int("closed_trades", summary.ClosedTrades),
			zap.Float64("realized_pnl", summary.RealizedPnL),
			zap.Float64("win_rate", summary.WinRate),
		)
	}

	return nil
}

// paperReplay feeds a paper gateway from a candle file. The gateway starts
// with the first CandleLimit candles of every pair and each completed cycle
// reveals one more candle.
type paperReplay struct {
	paper   *gateway.PaperGateway
	pending map[string][]types.MarketData
	logger  *logger.Logger
}

func newPaperReplay(paper *gateway.PaperGateway, path string, cfg config.Config, log *logger.Logger) (*paperReplay, error) {
	source, err := datasource.NewDataSource(log)
	if err != nil {
		return nil, err
	}
	defer source.Close() //nolint:errcheck

	if err := source.Initialize(path); err != nil {
		return nil, err
	}

	replay := &paperReplay{
		paper:   paper,
		pending: make(map[string][]types.MarketData),
		logger:  log.Component("replay"),
	}

	for _, symbol := range cfg.TradingPairs {
		candles, err := source.ReadAll(symbol, optional.None[time.Time](), optional.None[time.Time]())
		if err != nil {
			return nil, err
		}

		if len(candles) == 0 {
			return nil, fmt.Errorf("no candles for %s in %s", symbol, path)
		}

		seed := min(cfg.Gateway.CandleLimit, len(candles))
		paper.SetCandles(symbol, candles[:seed])
		replay.pending[symbol] = candles[seed:]
	}

	return replay, nil
}

func (r *paperReplay) advance(cycle int, balance float64) error {
	for symbol, candles := range r.pending {
		if len(candles) == 0 {
			continue
		}

		r.paper.AppendCandle(symbol, candles[0])
		r.pending[symbol] = candles[1:]

		r.logger.Debug("Replayed candle",
			zap.String("symbol", symbol),
			zap.Int("cycle", cycle),
			zap.Int("remaining", len(candles)-1),
			zap.Float64("balance", balance),
		)
	}

	return nil
}
