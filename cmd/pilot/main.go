package main

import (
	"context"
	"log"
	"os"

	"github.com/rxtech-lab/argo-pilot/internal/config"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/internal/version"
	"github.com/urfave/cli/v3"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Path to the yaml config file. Defaults apply when omitted.",
}

var envFlag = &cli.StringFlag{
	Name:  "env",
	Usage: "Path to a .env file with BINANCE_API_KEY and BINANCE_API_SECRET",
	Value: ".env",
}

// loadConfig reads the config and builds the process logger from it.
// Offline commands do not need exchange credentials.
func loadConfig(cmd *cli.Command, offline bool) (config.Config, *logger.Logger, error) {
	load := config.LoadWithEnv
	if offline {
		load = config.LoadOffline
	}

	cfg, err := load(cmd.String("config"), cmd.String("env"))
	if err != nil {
		return config.Config{}, nil, err
	}

	appLogger, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, err
	}

	return cfg, appLogger, nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "pilot",
		Usage:   "Indicator driven crypto trading bot",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			runCommand(),
			backtestCommand(),
			monteCarloCommand(),
			downloadCommand(),
			configCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
