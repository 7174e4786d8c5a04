// Package db provides the database connection and schema for the
// shortsync run history.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection
type DB struct {
	*sql.DB
}

// Open opens the database and initializes the schema
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

// initSchema creates all required tables
func initSchema(db *sql.DB) error {
	// Sync runs - append-only history, one row per reconciliation run
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sync_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			started_at INTEGER NOT NULL,
			dry_run INTEGER NOT NULL,
			created INTEGER NOT NULL,
			updated INTEGER NOT NULL,
			deleted INTEGER NOT NULL,
			errors TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create sync_runs table: %w", err)
	}

	return nil
}
