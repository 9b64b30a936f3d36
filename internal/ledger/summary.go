package ledger

import (
	"os"

	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Summary aggregates the closed trades of a ledger.
type Summary struct {
	Entries      int     `json:"entries" yaml:"entries"`
	ClosedTrades int     `json:"closed_trades" yaml:"closed_trades"`
	Wins         int     `json:"wins" yaml:"wins"`
	Losses       int     `json:"losses" yaml:"losses"`
	RealizedPnL  float64 `json:"realized_pnl" yaml:"realized_pnl"`
	// WinRate is in percent of closed trades
	WinRate float64 `json:"win_rate" yaml:"win_rate"`
}

// Summarize computes the summary of entries.
func Summarize(entries []types.LedgerEntry) Summary {
	summary := Summary{
		Entries:      len(entries),
		ClosedTrades: 0,
		Wins:         0,
		Losses:       0,
		RealizedPnL:  0,
		WinRate:      0,
	}

	pnls := make([]float64, 0, len(entries))

	for _, e := range entries {
		if !e.IsClosed() {
			continue
		}

		pnl := e.PnL.TakeOr(0)
		pnls = append(pnls, pnl)
		summary.ClosedTrades++

		switch {
		case pnl > 0:
			summary.Wins++
		case pnl < 0:
			summary.Losses++
		}
	}

	summary.RealizedPnL = decimalSum(pnls).InexactFloat64()

	if summary.ClosedTrades > 0 {
		summary.WinRate = float64(summary.Wins) / float64(summary.ClosedTrades) * 100
	}

	return summary
}

// WriteSummary writes the summary to path as yaml.
func WriteSummary(path string, summary Summary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to marshal ledger summary to YAML", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to write ledger summary", err)
	}

	return nil
}
