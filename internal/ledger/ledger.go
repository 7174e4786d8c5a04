// Package ledger provides an append-only history of sync runs for
// auditing and the history command.
package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Run is one recorded reconciliation run.
type Run struct {
	RunID     string
	StartedAt time.Time
	DryRun    bool
	Created   int
	Updated   int
	Deleted   int
	Errors    []string
}

// Ledger records completed sync runs.
type Ledger struct {
	db *sql.DB
}

// New creates a new Ledger using the provided database connection
func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Record appends a run to the history.
func (l *Ledger) Record(run Run) error {
	var errorsJSON []byte
	if len(run.Errors) > 0 {
		var err error
		errorsJSON, err = json.Marshal(run.Errors)
		if err != nil {
			return fmt.Errorf("failed to marshal errors: %w", err)
		}
	}

	_, err := l.db.Exec(
		`INSERT INTO sync_runs (run_id, started_at, dry_run, created, updated, deleted, errors) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.StartedAt.UTC().Unix(), run.DryRun, run.Created, run.Updated, run.Deleted, string(errorsJSON),
	)
	return err
}

// Recent returns up to limit runs, newest first.
func (l *Ledger) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.Query(
		`SELECT run_id, started_at, dry_run, created, updated, deleted, errors FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt int64
		var errorsJSON sql.NullString
		if err := rows.Scan(&run.RunID, &startedAt, &run.DryRun, &run.Created, &run.Updated, &run.Deleted, &errorsJSON); err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(startedAt, 0).UTC()
		if errorsJSON.Valid && errorsJSON.String != "" {
			if err := json.Unmarshal([]byte(errorsJSON.String), &run.Errors); err != nil {
				return nil, fmt.Errorf("failed to unmarshal errors for run %s: %w", run.RunID, err)
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
