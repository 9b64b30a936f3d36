package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/datasource"
	"github.com/rxtech-lab/argo-pilot/internal/gateway"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download recent candles from the exchange into a parquet file",
		Flags: []cli.Flag{
			configFlag,
			envFlag,
			&cli.StringSliceFlag{
				Name:    "symbol",
				Aliases: []string{"s"},
				Usage:   "Symbols to download, defaults to trading_pairs",
			},
			&cli.StringFlag{
				Name:  "timeframe",
				Usage: "Candle timeframe, defaults to timeframes.primary",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Candles per symbol, defaults to gateway.candle_limit",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Parquet output path",
				Value:   filepath.Join("data", "candles.parquet"),
			},
		},
		Action: downloadAction,
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	gw, err := gateway.New(cfg, log)
	if err != nil {
		return err
	}

	symbols := cfg.TradingPairs
	if cmd.IsSet("symbol") {
		symbols = cmd.StringSlice("symbol")
	}

	timeframe := cfg.Timeframes.Primary
	if cmd.IsSet("timeframe") {
		timeframe = cmd.String("timeframe")
	}

	limit := cfg.Gateway.CandleLimit
	if cmd.IsSet("limit") {
		limit = int(cmd.Int("limit"))
	}

	writer := datasource.NewCandleWriter(cmd.String("output"))
	if err := writer.Initialize(); err != nil {
		return err
	}
	defer writer.Close() //nolint:errcheck

	for _, symbol := range symbols {
		callCtx, cancel := context.WithTimeout(ctx, cfg.Gateway.Timeout())
		candles, err := gw.FetchOHLCV(callCtx, symbol, timeframe, limit)
		cancel()

		if err != nil {
			return fmt.Errorf("failed to download %s: %w", symbol, err)
		}

		for _, candle := range candles {
			if err := writer.Write(candle); err != nil {
				return err
			}
		}

		log.Info("Downloaded candles", zap.String("symbol", symbol), zap.Int("candles", len(candles)))
	}

	path, err := writer.Finalize()
	if err != nil {
		return err
	}

	log.Info("Candles written", zap.String("path", path))

	return nil
}

const (
	schemaFileName       = "pilot-config.json"
	sampleConfigFileName = "pilot-config.yaml"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Write the config JSON schema and a sample config",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory the files are written to",
				Value: "config",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			dir := cmd.String("dir")

			if err := generateSchemaFile(dir); err != nil {
				return err
			}

			return generateSampleConfig(dir)
		},
	}
}

// generateSchemaFile writes the JSON schema of the config into dir.
func generateSchemaFile(dir string) error {
	schema, err := config.Schema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, schemaFileName), []byte(schema), 0644)
}

// generateSampleConfig writes the default config into dir unless a config
// file is already there. The file references the schema for editor support.
func generateSampleConfig(dir string) error {
	path := filepath.Join(dir, sampleConfigFileName)

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	data = append([]byte("# yaml-language-server: $schema="+schemaFileName+"\n"), data...)

	return os.WriteFile(path, data, 0644)
}
