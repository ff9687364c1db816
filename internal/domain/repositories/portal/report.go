package portal

import (
	"context"

	models "clientportal/internal/domain/models/portal"
)

// ReportRepository defines data access operations for reports.
// Reports are immutable, so there is no Update.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	Delete(ctx context.Context, id string) error

	// List returns one page ordered by created_at DESC, id DESC, plus the
	// total number of matching rows.
	List(ctx context.Context, filter models.ReportFilter, page models.PageRequest) ([]models.Report, int, error)

	// Count counts reports created within the range
	Count(ctx context.Context, r models.DateRange) (int, error)
}
