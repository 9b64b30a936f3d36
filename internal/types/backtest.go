package types

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BacktestTrade is the yaml friendly form of a ledger entry produced by a backtest.
type BacktestTrade struct {
	Timestamp string   `yaml:"timestamp"`
	Action    string   `yaml:"action"`
	Price     float64  `yaml:"price"`
	Size      float64  `yaml:"size"`
	StopLoss  *float64 `yaml:"stop_loss"`
	PnL       *float64 `yaml:"pnl"`
	Balance   float64  `yaml:"balance"`
}

type BacktestResult struct {
	InitialBalance float64         `yaml:"initial_balance"`
	FinalBalance   float64         `yaml:"final_balance"`
	TotalReturn    float64         `yaml:"total_return"`
	SharpeRatio    float64         `yaml:"sharpe_ratio"`
	MaxDrawdown    float64         `yaml:"max_drawdown"`
	WinRate        float64         `yaml:"win_rate"`
	ProfitFactor   float64         `yaml:"profit_factor"`
	Trades         []BacktestTrade `yaml:"trades"`
	EquityCurve    []float64       `yaml:"equity_curve"`
}

type ConfidenceIntervals struct {
	P5     float64 `yaml:"5th" json:"5th"`
	P25    float64 `yaml:"25th" json:"25th"`
	Median float64 `yaml:"median" json:"median"`
	P75    float64 `yaml:"75th" json:"75th"`
	P95    float64 `yaml:"95th" json:"95th"`
}

type BalanceDistribution struct {
	Mean float64 `yaml:"mean" json:"mean"`
	Std  float64 `yaml:"std" json:"std"`
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
}

type MonteCarloResult struct {
	Iterations               int                 `yaml:"iterations" json:"iterations"`
	WorstDrawdown            float64             `yaml:"worst_drawdown" json:"worst_drawdown"`
	AvgDrawdown              float64             `yaml:"avg_drawdown" json:"avg_drawdown"`
	ConfidenceIntervals      ConfidenceIntervals `yaml:"confidence_intervals" json:"confidence_intervals"`
	FinalBalanceDistribution BalanceDistribution `yaml:"final_balance_distribution" json:"final_balance_distribution"`
}

// BacktestReport is what the backtest command persists.
type BacktestReport struct {
	Symbol     string            `yaml:"symbol"`
	Backtest   BacktestResult    `yaml:"backtest"`
	MonteCarlo *MonteCarloResult `yaml:"monte_carlo,omitempty"`
}

// WriteBacktestReport writes the report to path as yaml.
func WriteBacktestReport(path string, report BacktestReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest report to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest report to file: %w", err)
	}

	return nil
}
