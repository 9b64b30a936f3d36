package backtest

import (
	"math"

	"github.com/rxtech-lab/argo-pilot/internal/risk"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/internal/utils"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
)

// ReturnsFromEquity returns the simple period over period changes of an equity curve.
func ReturnsFromEquity(equity []float64) []float64 {
	return utils.SimpleReturns(equity)
}

// SharpeRatio returns mean(returns)/std(returns)*sqrt(252).
// Fewer than two returns or a zero deviation yield 0.
func SharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	std := utils.StdDev(returns)
	if std == 0 {
		return 0
	}

	return utils.Mean(returns) / std * math.Sqrt(risk.TradingDaysPerYear)
}

// MaxDrawdown returns the largest peak to trough decline of equity in percent.
func MaxDrawdown(equity []float64) float64 {
	return utils.MaxDrawdown(equity)
}

// WinRate returns the share of closed trades with a positive pnl in percent.
func WinRate(entries []types.LedgerEntry) float64 {
	closed, wins := 0, 0

	for _, e := range entries {
		if !e.IsClosed() {
			continue
		}

		closed++

		if e.PnL.TakeOr(0) > 0 {
			wins++
		}
	}

	if closed == 0 {
		return 0
	}

	return float64(wins) / float64(closed) * 100
}

// ProfitFactor returns gross profit over gross loss of closed trades.
// Without any loss the factor is 0.
func ProfitFactor(entries []types.LedgerEntry) float64 {
	grossProfit, grossLoss := 0.0, 0.0

	for _, e := range entries {
		pnl := e.PnL.TakeOr(0)

		switch {
		case pnl > 0:
			grossProfit += pnl
		case pnl < 0:
			grossLoss += -pnl
		}
	}

	if grossLoss == 0 {
		return 0
	}

	return grossProfit / grossLoss
}

func buildResult(initial, final float64, equity []float64, entries []types.LedgerEntry) (types.BacktestResult, error) {
	result := types.BacktestResult{
		InitialBalance: initial,
		FinalBalance:   final,
		TotalReturn:    (final - initial) / initial * 100,
		SharpeRatio:    SharpeRatio(ReturnsFromEquity(equity)),
		MaxDrawdown:    MaxDrawdown(equity),
		WinRate:        WinRate(entries),
		ProfitFactor:   ProfitFactor(entries),
		Trades:         toBacktestTrades(entries),
		EquityCurve:    equity,
	}

	for name, v := range map[string]float64{
		"final_balance": result.FinalBalance,
		"total_return":  result.TotalReturn,
		"sharpe_ratio":  result.SharpeRatio,
		"max_drawdown":  result.MaxDrawdown,
		"profit_factor": result.ProfitFactor,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.BacktestResult{}, errors.Newf(errors.ErrCodeBacktestFailed, "%s is not finite", name)
		}
	}

	return result, nil
}
