package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pilot/internal/logger"
	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Writer is the append-only trade ledger.
//
// Entries live in an in-memory DuckDB table. When an output path is set the
// table is exported to parquet after every append, and an existing file is
// loaded back on Initialize. Every entry is also logged with the ledger field names.
type Writer struct {
	db         *sql.DB
	outputPath string
	seq        int64
	mu         sync.Mutex
	logger     *logger.Logger
}

// NewWriter creates a new Writer. An empty outputPath keeps the ledger in memory only.
func NewWriter(outputPath string, log *logger.Logger) *Writer {
	return &Writer{
		db:         nil,
		outputPath: outputPath,
		seq:        0,
		mu:         sync.Mutex{},
		logger:     log.Component("ledger"),
	}
}

// Initialize sets up the ledger table.
func (w *Writer) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.outputPath != "" {
		dir := filepath.Dir(w.outputPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to create ledger directory", err)
		}
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to open DuckDB connection", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ledger (
			seq BIGINT,
			id TEXT,
			timestamp TIMESTAMP,
			symbol TEXT,
			action TEXT,
			side TEXT,
			price DOUBLE,
			size DOUBLE,
			stop_loss DOUBLE,
			pnl DOUBLE,
			balance DOUBLE,
			reason TEXT
		)
	`)
	if err != nil {
		db.Close()

		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to create ledger table", err)
	}

	if w.outputPath != "" {
		if _, statErr := os.Stat(w.outputPath); statErr == nil {
			_, err = db.Exec(fmt.Sprintf(`
				INSERT INTO ledger
				SELECT * FROM read_parquet('%s')
			`, w.outputPath))
			if err != nil {
				w.logger.Warn("Failed to load existing ledger, starting fresh",
					zap.String("path", w.outputPath),
					zap.Error(err),
				)
			}
		}
	}

	var maxSeq sql.NullInt64
	if err := db.QueryRow("SELECT MAX(seq) FROM ledger").Scan(&maxSeq); err != nil {
		db.Close()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to read ledger sequence", err)
	}

	w.db = db
	w.seq = maxSeq.Int64

	return nil
}

// Append persists an entry and exports the ledger.
func (w *Writer) Append(entry types.LedgerEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeLedgerNotInitialized, "ledger not initialized")
	}

	w.seq++

	_, err := w.db.Exec(`
		INSERT INTO ledger (seq, id, timestamp, symbol, action, side, price, size,
			stop_loss, pnl, balance, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, w.seq, entry.ID, entry.Timestamp.UTC(), entry.Symbol, string(entry.Action), string(entry.Side),
		entry.Price, entry.Size, nullable(entry.StopLoss), nullable(entry.PnL), entry.Balance, entry.Reason)
	if err != nil {
		w.seq--

		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to insert ledger entry", err)
	}

	w.logger.Info("Ledger entry", Fields(entry)...)

	if err := w.exportToParquet(); err != nil {
		return err
	}

	return nil
}

// Record implements lifecycle.Recorder.
func (w *Writer) Record(entry types.LedgerEntry) error {
	return w.Append(entry)
}

// Entries returns every entry in append order.
func (w *Writer) Entries() ([]types.LedgerEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return nil, errors.New(errors.ErrCodeLedgerNotInitialized, "ledger not initialized")
	}

	rows, err := w.db.Query(`
		SELECT id, timestamp, symbol, action, side, price, size, stop_loss, pnl, balance, reason
		FROM ledger
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query ledger", err)
	}
	defer rows.Close()

	entries := []types.LedgerEntry{}

	for rows.Next() {
		var (
			entry         types.LedgerEntry
			timestamp     time.Time
			action, side  string
			stopLoss, pnl sql.NullFloat64
		)

		if err := rows.Scan(&entry.ID, &timestamp, &entry.Symbol, &action, &side,
			&entry.Price, &entry.Size, &stopLoss, &pnl, &entry.Balance, &entry.Reason); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan ledger entry", err)
		}

		entry.Timestamp = timestamp.UTC()
		entry.Action = types.LedgerAction(action)
		entry.Side = types.PositionSide(side)
		entry.StopLoss = fromNullable(stopLoss)
		entry.PnL = fromNullable(pnl)

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate ledger", err)
	}

	return entries, nil
}

// Summary aggregates the exits of the ledger.
func (w *Writer) Summary() (Summary, error) {
	entries, err := w.Entries()
	if err != nil {
		return Summary{}, err
	}

	return Summarize(entries), nil
}

// Count returns the number of entries stored.
func (w *Writer) Count() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return 0, errors.New(errors.ErrCodeLedgerNotInitialized, "ledger not initialized")
	}

	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM ledger").Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count ledger entries", err)
	}

	return count, nil
}

// Flush forces an export to parquet.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeLedgerNotInitialized, "ledger not initialized")
	}

	return w.exportToParquet()
}

// OutputPath returns the parquet file path.
func (w *Writer) OutputPath() string {
	return w.outputPath
}

// Close releases database resources.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to close database", err)
		}

		w.db = nil
	}

	return nil
}

// exportToParquet exports the table to the output path, if any.
func (w *Writer) exportToParquet() error {
	if w.outputPath == "" {
		return nil
	}

	_, err := w.db.Exec(fmt.Sprintf(`
		COPY (SELECT * FROM ledger ORDER BY seq ASC)
		TO '%s' (FORMAT PARQUET)
	`, w.outputPath))
	if err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to export ledger to parquet", err)
	}

	return nil
}

// Fields returns the zap fields of a ledger entry. Absent values are logged as null.
func Fields(entry types.LedgerEntry) []zap.Field {
	return []zap.Field{
		zap.String("id", entry.ID),
		zap.Time("timestamp", entry.Timestamp),
		zap.String("symbol", entry.Symbol),
		zap.String("action", string(entry.Action)),
		zap.String("side", string(entry.Side)),
		zap.Float64("price", entry.Price),
		zap.Float64("size", entry.Size),
		optionalField("stop_loss", entry.StopLoss),
		optionalField("pnl", entry.PnL),
		zap.Float64("balance", entry.Balance),
		zap.String("reason", entry.Reason),
	}
}

func optionalField(key string, value optional.Option[float64]) zap.Field {
	if value.IsNone() {
		return zap.Any(key, nil)
	}

	return zap.Float64(key, value.Unwrap())
}

func nullable(value optional.Option[float64]) sql.NullFloat64 {
	if value.IsNone() {
		return sql.NullFloat64{Float64: 0, Valid: false}
	}

	return sql.NullFloat64{Float64: value.Unwrap(), Valid: true}
}

func fromNullable(value sql.NullFloat64) optional.Option[float64] {
	if !value.Valid {
		return optional.None[float64]()
	}

	return optional.Some(value.Float64)
}

// decimalSum adds values without accumulating float rounding error.
func decimalSum(values []float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}

	return total
}
