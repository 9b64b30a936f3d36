package backtest

import (
	"math/rand"

	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/internal/utils"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
)

// DefaultIterations is the number of resampled equity curves when none is configured.
const DefaultIterations = 1000

// MonteCarlo bootstraps returns into iterations simulated equity curves.
//
// Each curve resamples len(returns) values with replacement and compounds them
// from initial. Drawdowns are aggregated over whole curves, percentiles and
// the balance distribution over the final value of each curve. The same seed
// always gives the same result.
func MonteCarlo(returns []float64, iterations int, initial float64, seed int64) (types.MonteCarloResult, error) {
	if len(returns) == 0 {
		return types.MonteCarloResult{}, errors.New(errors.ErrCodeMonteCarloFailed, "no returns to resample")
	}

	if iterations <= 0 {
		return types.MonteCarloResult{}, errors.Newf(errors.ErrCodeMonteCarloFailed, "iterations must be positive, got %d", iterations)
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible resampling, not security sensitive

	finals := make([]float64, iterations)
	drawdowns := make([]float64, iterations)
	curve := make([]float64, len(returns))

	for it := 0; it < iterations; it++ {
		equity := initial
		for k := range curve {
			equity *= 1 + returns[rng.Intn(len(returns))]
			curve[k] = equity
		}

		finals[it] = curve[len(curve)-1]
		drawdowns[it] = utils.MaxDrawdown(curve)
	}

	_, worst := utils.MinMax(drawdowns)
	lo, hi := utils.MinMax(finals)

	return types.MonteCarloResult{
		Iterations:    iterations,
		WorstDrawdown: worst,
		AvgDrawdown:   utils.Mean(drawdowns),
		ConfidenceIntervals: types.ConfidenceIntervals{
			P5:     utils.Percentile(finals, 5),
			P25:    utils.Percentile(finals, 25),
			Median: utils.Percentile(finals, 50),
			P75:    utils.Percentile(finals, 75),
			P95:    utils.Percentile(finals, 95),
		},
		FinalBalanceDistribution: types.BalanceDistribution{
			Mean: utils.Mean(finals),
			Std:  utils.StdDev(finals),
			Min:  lo,
			Max:  hi,
		},
	}, nil
}
