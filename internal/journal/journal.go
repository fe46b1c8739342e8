// Package journal provides an optional SQLite audit log of one processing
// run: every input record with its outcome, in processing order.
//
// The journal records what happened, not account state - every run still
// starts from an empty ledger. It exists so that rejected records (which are
// kept out of the primary output) can be investigated after the fact.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/strozynskiw/transponster/internal/engine"
)

//go:embed schema.sql
var schemaSQL string

// Journal is an append-only SQLite log of processed records.
type Journal struct {
	db    *sql.DB
	runID string
	seq   int64
}

// Open creates or opens the journal database at the given path.
// The runID stamps every row written by this journal; use a fresh token
// per run so multiple runs can share one database file.
func Open(path, runID string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite supports one writer at a time; keep a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db, runID: runID}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// RunID returns the run token this journal stamps rows with.
func (j *Journal) RunID() string {
	return j.runID
}

// Record appends one processed record with its outcome. perr is nil for
// records that were applied successfully.
func (j *Journal) Record(ctx context.Context, rec engine.Record, perr *engine.ProcessingError) error {
	j.seq++

	var amount sql.NullString
	if rec.Amount != nil {
		amount = sql.NullString{String: rec.Amount.String(), Valid: true}
	}

	outcome := "ok"
	var errorCode sql.NullString
	if perr != nil {
		outcome = "rejected"
		errorCode = sql.NullString{String: string(perr.Code), Valid: true}
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO records
		(run_id, seq, op, client, tx, amount, outcome, error_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		j.runID,
		j.seq,
		rec.Op.String(),
		rec.Client,
		rec.Tx,
		amount,
		outcome,
		errorCode,
	)
	if err != nil {
		return fmt.Errorf("journal record seq %d: %w", j.seq, err)
	}

	return nil
}

// Observer adapts the journal to the engine's observer hook. A journal
// write failure is logged and does not interrupt the stream - the journal
// is an audit aid, not part of the processing contract.
func (j *Journal) Observer() engine.Observer {
	return func(rec engine.Record, perr *engine.ProcessingError) {
		if err := j.Record(context.Background(), rec, perr); err != nil {
			slog.Error("journal write failed",
				"error", err,
				"op", rec.Op.String(),
				"client", rec.Client,
				"tx", rec.Tx,
			)
		}
	}
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
