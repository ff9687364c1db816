package portal

import (
	"context"
	"io"

	"clientportal/internal/domain/models/portal"
)

// ReportService is the registry of monthly service reports.
type ReportService interface {
	CreateReport(ctx context.Context, actor portal.Actor, req *CreateReportRequest) (*portal.Report, error)
	DeleteReport(ctx context.Context, actor portal.Actor, id string) error

	// ListReports pages through reports newest first. A client only ever
	// sees its own reports.
	ListReports(ctx context.Context, actor portal.Actor, req *ListReportsRequest) (*portal.Page[portal.Report], error)

	OpenReport(ctx context.Context, actor portal.Actor, id string, mode OpenMode) (*portal.Report, io.ReadCloser, error)

	// Stats returns the dashboard counters (admin and support only)
	Stats(ctx context.Context, actor portal.Actor, r portal.DateRange) (*portal.DashboardStats, error)
}

// CreateReportRequest uploads one report PDF for a client.
type CreateReportRequest struct {
	OwnerID  string
	FileName string
	Size     int64
	Content  io.Reader
	Month    *string // YYYY-MM
	Service  *string // must name a catalog service
}

// ListReportsRequest carries listing filters and paging.
type ListReportsRequest struct {
	OwnerID *string
	Search  string
	Range   portal.DateRange
	Page    portal.PageRequest
}
