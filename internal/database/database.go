// Package database provides the Postgres connection behind the call journal
package database

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pkg/errors"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// New opens and pings a database connection
func New(ctx context.Context, driver, dsn string) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &DB{DB: db}, nil
}

// Wrap adopts an already open connection
func Wrap(db *sql.DB) *DB {
	return &DB{DB: db}
}

// Migrate creates the journal table and its indexes
func (db *DB) Migrate(ctx context.Context) error {
	schema := `
	-- One row per signed GPay call and its verification outcome
	CREATE TABLE IF NOT EXISTS call_journal (
		id UUID PRIMARY KEY,
		operation VARCHAR(100) NOT NULL,
		path VARCHAR(255) NOT NULL,
		environment VARCHAR(255) NOT NULL,
		request_timestamp VARCHAR(32) NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		outcome VARCHAR(50) NOT NULL,
		error TEXT,
		started_at TIMESTAMP NOT NULL,
		duration_ms BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_call_journal_started ON call_journal(started_at);
	CREATE INDEX IF NOT EXISTS idx_call_journal_operation ON call_journal(operation);
	CREATE INDEX IF NOT EXISTS idx_call_journal_outcome ON call_journal(outcome);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	return nil
}
