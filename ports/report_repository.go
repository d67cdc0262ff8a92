package ports

import (
	"context"

	"biasdetect/domain/audit"
	"biasdetect/domain/core"
)

// ReportRepository stores snapshots of finished audit reports
type ReportRepository interface {
	Save(ctx context.Context, rec audit.ReportRecord) error
	// Get returns the full record, or an error matching core.ErrReportNotFound.
	Get(ctx context.Context, id core.ID) (*audit.ReportRecord, error)
	// List returns the newest records first, without their payload.
	List(ctx context.Context, limit, offset int) ([]audit.ReportRecord, error)
}
