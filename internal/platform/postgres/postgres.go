// Package postgres opens the shared database handle and bootstraps the
// schema. All three registries persist here when a URL is configured.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // database/sql driver
)

// Open connects, verifies the connection, and applies the schema.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the ledger tables when missing. Statements are
// idempotent so repeated startups are safe.
//
// The access_log table is append-only by contract: nothing in this codebase
// issues UPDATE or DELETE against it.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS consent_grants (
			grantor      UUID        NOT NULL,
			grantee      UUID        NOT NULL,
			access_level TEXT        NOT NULL,
			valid_from   TIMESTAMPTZ NOT NULL,
			valid_until  TIMESTAMPTZ NOT NULL,
			purpose      TEXT        NOT NULL,
			PRIMARY KEY (grantor, grantee)
		)`,
		`CREATE TABLE IF NOT EXISTS access_log (
			sequence    BIGSERIAL   PRIMARY KEY,
			patient     UUID        NOT NULL,
			accessor    UUID        NOT NULL,
			resource_id TEXT        NOT NULL,
			access_type TEXT        NOT NULL,
			ts          TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS access_log_patient_idx ON access_log (patient, sequence)`,
		`CREATE INDEX IF NOT EXISTS access_log_accessor_idx ON access_log (accessor, sequence)`,
		`CREATE TABLE IF NOT EXISTS integrity_records (
			content_id   TEXT        PRIMARY KEY,
			created_seq  BIGSERIAL,
			digest       TEXT        NOT NULL,
			content_type TEXT        NOT NULL,
			owner        UUID        NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS integrity_records_owner_idx ON integrity_records (owner, created_seq)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
