package repository

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the shared database connection pool
type DB struct {
	*sql.DB
}

// NewDB opens and verifies a Postgres connection
func NewDB(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// EnsureSchema creates the run-history tables if they do not exist yet
func (db *DB) EnsureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sweep_runs (
			id UUID PRIMARY KEY,
			mode TEXT NOT NULL,
			phase TEXT NOT NULL,
			model TEXT NOT NULL,
			method TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			spec_yaml TEXT NOT NULL DEFAULT '',
			total_jobs INT NOT NULL DEFAULT 0,
			succeeded_jobs INT NOT NULL DEFAULT 0,
			failed_jobs INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			started_at TIMESTAMPTZ,
			completed_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS sweep_jobs (
			id UUID PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES sweep_runs(id),
			axis TEXT NOT NULL,
			epoch INT NOT NULL DEFAULT 0,
			output_dir TEXT NOT NULL,
			checkpoint_path TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			exit_code INT,
			duration_ms BIGINT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			finished_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS run_events (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES sweep_runs(id),
			at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			from_status TEXT,
			to_status TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			meta_json TEXT NOT NULL DEFAULT '{}'
		);
	`

	_, err := db.Exec(schema)
	return err
}
