package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pilot/internal/backtest"
	"github.com/rxtech-lab/argo-pilot/internal/datasource"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var dateConfig = cli.TimestampConfig{
	Layouts: []string{"2006-01-02", time.RFC3339},
}

func backtestCommand() *cli.Command {
	return &cli.Command{
		Name:  "backtest",
		Usage: "Backtest the discrete scorer over historical candles",
		Flags: []cli.Flag{
			configFlag,
			envFlag,
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Parquet or csv file with historical candles",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Symbol to backtest",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:   "start",
				Usage:  "Only use candles from `YYYY-MM-DD`",
				Config: dateConfig,
			},
			&cli.TimestampFlag{
				Name:   "end",
				Usage:  "Only use candles until `YYYY-MM-DD`",
				Config: dateConfig,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Path of the yaml report",
				Value:   "backtest_report.yaml",
			},
			&cli.BoolFlag{
				Name:  "monte-carlo",
				Usage: "Resample the equity curve returns after the run",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Hide the progress bar",
			},
		},
		Action: backtestAction,
	}
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	symbol := cmd.String("symbol")

	source, err := datasource.NewDataSource(log)
	if err != nil {
		return err
	}
	defer source.Close() //nolint:errcheck

	if err := source.Initialize(cmd.String("data")); err != nil {
		return err
	}

	candles, err := source.ReadAll(symbol, timestampFlag(cmd, "start"), timestampFlag(cmd, "end"))
	if err != nil {
		return err
	}

	if len(candles) == 0 {
		return fmt.Errorf("no candles for %s in %s", symbol, cmd.String("data"))
	}

	var callbacks backtest.Callbacks

	if !cmd.Bool("quiet") {
		bar := progressbar.NewOptions(len(candles)-1,
			progressbar.OptionSetDescription(fmt.Sprintf("Backtesting %s", symbol)),
			progressbar.OptionShowCount(),
		)
		defer bar.Finish() //nolint:errcheck

		onProcess := backtest.OnProcessDataCallback(func(current int, total int) error {
			return bar.Set(current)
		})
		callbacks.OnProcessData = &onProcess
	}

	simulator := backtest.NewSimulator(cfg, log.Component("backtest"))
	result := simulator.Run(ctx, candles, callbacks)

	report := types.BacktestReport{
		Symbol:     symbol,
		Backtest:   result,
		MonteCarlo: nil,
	}

	if cmd.Bool("monte-carlo") {
		monteCarlo, err := simulator.MonteCarlo(backtest.ReturnsFromEquity(result.EquityCurve), cfg.Backtest.MonteCarloIterations)
		if err != nil {
			log.Warn("Monte Carlo simulation skipped", zap.Error(err))
		} else {
			report.MonteCarlo = &monteCarlo
		}
	}

	if err := types.WriteBacktestReport(cmd.String("output"), report); err != nil {
		return err
	}

	log.Info("Backtest completed",
		zap.String("symbol", symbol),
		zap.Int("candles", len(candles)),
		zap.Float64("final_balance", result.FinalBalance),
		zap.Float64("total_return", result.TotalReturn),
		zap.Float64("sharpe_ratio", result.SharpeRatio),
		zap.Float64("max_drawdown", result.MaxDrawdown),
		zap.Int("trades", len(result.Trades)),
		zap.String("report", cmd.String("output")),
	)

	return nil
}

func monteCarloCommand() *cli.Command {
	return &cli.Command{
		Name:  "montecarlo",
		Usage: "Resample the returns of an existing backtest report",
		Flags: []cli.Flag{
			configFlag,
			envFlag,
			&cli.StringFlag{
				Name:     "report",
				Aliases:  []string{"r"},
				Usage:    "Backtest report written by the backtest command",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "iterations",
				Usage: "Number of resampled paths, overrides backtest.monte_carlo_iterations",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Random seed, overrides backtest.seed",
			},
		},
		Action: monteCarloAction,
	}
}

func monteCarloAction(_ context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	path := cmd.String("report")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	var report types.BacktestReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("failed to parse report: %w", err)
	}

	iterations := cfg.Backtest.MonteCarloIterations
	if cmd.IsSet("iterations") {
		iterations = int(cmd.Int("iterations"))
	}

	seed := cfg.Backtest.Seed
	if cmd.IsSet("seed") {
		seed = cmd.Int64("seed")
	}

	returns := backtest.ReturnsFromEquity(report.Backtest.EquityCurve)

	result, err := backtest.MonteCarlo(returns, iterations, report.Backtest.InitialBalance, seed)
	if err != nil {
		return err
	}

	report.MonteCarlo = &result

	if err := types.WriteBacktestReport(path, report); err != nil {
		return err
	}

	log.Info("Monte Carlo simulation completed",
		zap.String("report", path),
		zap.Int("iterations", result.Iterations),
		zap.Float64("worst_drawdown", result.WorstDrawdown),
		zap.Float64("median", result.ConfidenceIntervals.Median),
	)

	return nil
}

func timestampFlag(cmd *cli.Command, name string) optional.Option[time.Time] {
	if !cmd.IsSet(name) {
		return optional.None[time.Time]()
	}

	return optional.Some(cmd.Timestamp(name))
}
