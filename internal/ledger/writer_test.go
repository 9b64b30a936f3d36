package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
)

type WriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

func (s *WriterTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "ledger_test_*")
	s.Require().NoError(err)
	s.tempDir = tempDir
}

func (s *WriterTestSuite) TearDownTest() {
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
}

func enter(id string, ts time.Time) types.LedgerEntry {
	return types.LedgerEntry{
		ID:        id,
		Timestamp: ts,
		Symbol:    "BTCUSDT",
		Action:    types.LedgerActionEnter,
		Side:      types.PositionSideLong,
		Price:     100,
		Size:      1.5,
		StopLoss:  optional.Some(96.0),
		PnL:       optional.None[float64](),
		Balance:   10000,
		Reason:    "",
	}
}

func exit(id string, ts time.Time, pnl float64) types.LedgerEntry {
	return types.LedgerEntry{
		ID:        id,
		Timestamp: ts,
		Symbol:    "BTCUSDT",
		Action:    types.LedgerActionExit,
		Side:      types.PositionSideLong,
		Price:     100 + pnl/1.5,
		Size:      1.5,
		StopLoss:  optional.None[float64](),
		PnL:       optional.Some(pnl),
		Balance:   10000 + pnl,
		Reason:    "take_profit",
	}
}

func (s *WriterTestSuite) TestNotInitialized() {
	w := NewWriter(filepath.Join(s.tempDir, "ledger.parquet"), logger.NewNopLogger())

	err := w.Append(enter("a", time.Now()))
	s.True(errors.HasCode(err, errors.ErrCodeLedgerNotInitialized))

	_, err = w.Entries()
	s.True(errors.HasCode(err, errors.ErrCodeLedgerNotInitialized))

	s.True(errors.HasCode(w.Flush(), errors.ErrCodeLedgerNotInitialized))
	s.NoError(w.Close())
}

func (s *WriterTestSuite) TestAppendAndEntries() {
	w := NewWriter("", logger.NewNopLogger())
	s.Require().NoError(w.Initialize())
	defer w.Close()

	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s.Require().NoError(w.Append(enter("a", ts)))
	s.Require().NoError(w.Record(exit("b", ts.Add(time.Hour), 30)))

	entries, err := w.Entries()
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	s.True(ts.Equal(entries[0].Timestamp))
	s.True(ts.Add(time.Hour).Equal(entries[1].Timestamp))

	expectedEnter, expectedExit := enter("a", ts), exit("b", ts, 30)
	expectedEnter.Timestamp, expectedExit.Timestamp = time.Time{}, time.Time{}
	entries[0].Timestamp, entries[1].Timestamp = time.Time{}, time.Time{}

	s.Equal(expectedEnter, entries[0])
	s.Equal(expectedExit, entries[1])

	count, err := w.Count()
	s.NoError(err)
	s.Equal(2, count)
	s.Empty(w.OutputPath())
}

func (s *WriterTestSuite) TestParquetRoundTrip() {
	outputPath := filepath.Join(s.tempDir, "nested", "ledger.parquet")
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	w := NewWriter(outputPath, logger.NewNopLogger())
	s.Require().NoError(w.Initialize())
	s.Require().NoError(w.Append(enter("a", ts)))
	s.Require().NoError(w.Append(exit("b", ts.Add(time.Hour), -12.5)))
	s.Require().NoError(w.Flush())
	s.Require().NoError(w.Close())

	s.FileExists(outputPath)

	reopened := NewWriter(outputPath, logger.NewNopLogger())
	s.Require().NoError(reopened.Initialize())
	defer reopened.Close()

	s.Require().NoError(reopened.Append(enter("c", ts.Add(2*time.Hour))))

	entries, err := reopened.Entries()
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("a", entries[0].ID)
	s.Equal("b", entries[1].ID)
	s.Equal("c", entries[2].ID)
	s.Equal(optional.Some(-12.5), entries[1].PnL)
}

func (s *WriterTestSuite) TestSummary() {
	w := NewWriter("", logger.NewNopLogger())
	s.Require().NoError(w.Initialize())
	defer w.Close()

	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, pnl := range []float64{0.1, 0.2, -0.05, 0} {
		s.Require().NoError(w.Append(enter("e", ts.Add(time.Duration(2*i)*time.Hour))))
		s.Require().NoError(w.Append(exit("x", ts.Add(time.Duration(2*i+1)*time.Hour), pnl)))
	}

	summary, err := w.Summary()
	s.Require().NoError(err)
	s.Equal(8, summary.Entries)
	s.Equal(4, summary.ClosedTrades)
	s.Equal(2, summary.Wins)
	s.Equal(1, summary.Losses)
	// decimal accumulation keeps 0.1 + 0.2 exact
	s.Equal(0.25, summary.RealizedPnL)
	s.Equal(50.0, summary.WinRate)

	path := filepath.Join(s.tempDir, "summary.yaml")
	s.Require().NoError(WriteSummary(path, summary))

	data, err := os.ReadFile(path)
	s.Require().NoError(err)

	var decoded Summary
	s.Require().NoError(yaml.Unmarshal(data, &decoded))
	s.Equal(summary, decoded)
}

func (s *WriterTestSuite) TestEmptySummary() {
	s.Equal(Summary{}, Summarize(nil))
}

func (s *WriterTestSuite) TestEntriesAreLogged() {
	core, logs := observer.New(zap.InfoLevel)
	w := NewWriter("", &logger.Logger{Logger: zap.New(core)})
	s.Require().NoError(w.Initialize())
	defer w.Close()

	s.Require().NoError(w.Append(exit("b", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 30)))

	entries := logs.FilterMessage("Ledger entry").All()
	s.Require().Len(entries, 1)

	fields := entries[0].ContextMap()
	s.Equal("b", fields["id"])
	s.Equal("exit", fields["action"])
	s.Equal(30.0, fields["pnl"])
	s.Nil(fields["stop_loss"])
	s.Equal("ledger", fields["component"])
}
