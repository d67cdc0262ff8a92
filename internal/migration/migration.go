package migration

import (
	"context"

	"biasdetect/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations for postgres and sqlite
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createReportsTable(ctx, db); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to create audit_reports table"))
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to create indexes"))
	}

	return nil
}

func (r *MigrationRunner) createReportsTable(ctx context.Context, db *sqlx.DB) error {
	timestampType := "TIMESTAMP WITH TIME ZONE"
	idType := "UUID"
	if db.DriverName() != "postgres" {
		timestampType = "DATETIME"
		idType = "TEXT"
	}

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_reports (
			id `+idType+` PRIMARY KEY,
			dataset_name TEXT NOT NULL,
			target_column TEXT NOT NULL,
			row_count INTEGER NOT NULL DEFAULT 0,
			bias_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
			payload TEXT NOT NULL,
			created_at `+timestampType+` NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_audit_reports_created_at ON audit_reports (created_at DESC)
	`)
	return err
}
