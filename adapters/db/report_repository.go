// Package db persists audit history through sqlx, on postgres or sqlite.
package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"biasdetect/domain/audit"
	"biasdetect/domain/core"
	"biasdetect/internal/errors"
	"biasdetect/internal/migration"
	"biasdetect/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects with the given driver ("postgres" or "sqlite") and applies migrations
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to connect to %s", driver)).WithCause(err)
	}
	if driver == "sqlite" {
		// One connection keeps :memory: databases alive and serializes writers.
		db.SetMaxOpenConns(1)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &reportRepository{db: db}
}

// Save inserts a report snapshot
func (r *reportRepository) Save(ctx context.Context, rec audit.ReportRecord) error {
	if rec.ID.IsEmpty() {
		return core.NewValidationError("id", core.ErrValidation, "report id is required")
	}

	query := r.db.Rebind(`INSERT INTO audit_reports (
		id, dataset_name, target_column, row_count, bias_percentage, payload, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.DatasetName, rec.TargetColumn, rec.RowCount, rec.BiasPercentage, string(rec.Payload), rec.CreatedAt,
	)
	if err != nil {
		return errors.DatabaseError("failed to save report").WithCause(err)
	}
	return nil
}

// Get retrieves a report by its ID
func (r *reportRepository) Get(ctx context.Context, id core.ID) (*audit.ReportRecord, error) {
	query := r.db.Rebind(`SELECT
		id, dataset_name, target_column, row_count, bias_percentage, payload, created_at
	FROM audit_reports WHERE id = ?`)

	var rec audit.ReportRecord
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound(fmt.Sprintf("report %s", id)).WithCause(core.ErrReportNotFound)
		}
		return nil, errors.DatabaseError("failed to get report").WithCause(err)
	}
	return &rec, nil
}

// List returns report summaries, newest first
func (r *reportRepository) List(ctx context.Context, limit, offset int) ([]audit.ReportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.Rebind(`SELECT
		id, dataset_name, target_column, row_count, bias_percentage, created_at
	FROM audit_reports ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)

	records := []audit.ReportRecord{}
	if err := r.db.SelectContext(ctx, &records, query, limit, offset); err != nil {
		return nil, errors.DatabaseError("failed to list reports").WithCause(err)
	}
	return records, nil
}
