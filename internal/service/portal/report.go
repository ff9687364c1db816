package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"

	"clientportal/internal/catalog"
	"clientportal/internal/config"
	"clientportal/internal/domain"
	models "clientportal/internal/domain/models/portal"
	"clientportal/internal/domain/repositories"
	portalRepo "clientportal/internal/domain/repositories/portal"
	"clientportal/internal/domain/services"
	portalSvc "clientportal/internal/domain/services/portal"
	"clientportal/internal/storage"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type reportService struct {
	reportRepo portalRepo.ReportRepository
	clientRepo portalRepo.ClientRepository
	blobs      repositories.BlobStore
	catalog    *catalog.Registry
	gate       services.AccessGate
	opts       Options
	logger     *slog.Logger
}

// NewReportService creates the report registry service
func NewReportService(
	reportRepo portalRepo.ReportRepository,
	clientRepo portalRepo.ClientRepository,
	blobs repositories.BlobStore,
	catalog *catalog.Registry,
	gate services.AccessGate,
	opts Options,
	logger *slog.Logger,
) portalSvc.ReportService {
	return &reportService{
		reportRepo: reportRepo,
		clientRepo: clientRepo,
		blobs:      blobs,
		catalog:    catalog,
		gate:       gate,
		opts:       opts.withDefaults(),
		logger:     logger,
	}
}

// CreateReport stores a report PDF for a client, blob then row
func (s *reportService) CreateReport(ctx context.Context, actor models.Actor, req *portalSvc.CreateReportRequest) (*models.Report, error) {
	if err := s.gate.AuthorizeManage(actor, models.ClientScope{OwnerID: req.OwnerID}).Err(); err != nil {
		return nil, err
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	fileName := strings.TrimSpace(req.FileName)

	if _, err := s.clientRepo.GetByID(ctx, req.OwnerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("client %s does not exist", req.OwnerID)}
		}
		return nil, err
	}

	contentType, body, err := storage.Sniff(io.LimitReader(req.Content, req.Size))
	if err != nil {
		return nil, fmt.Errorf("read report upload: %w", err)
	}
	if !storage.IsPDF(contentType) {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("report must be a PDF (got %s)", contentType)}
	}

	key := storage.ReportKey(req.OwnerID, fileName)
	if err := s.blobs.Write(ctx, key, body, req.Size, "application/pdf"); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	report := &models.Report{
		OwnerID:    req.OwnerID,
		FileName:   fileName,
		StorageKey: key,
		Month:      req.Month,
		Service:    s.canonicalService(req.Service),
		SizeBytes:  req.Size,
		CreatedAt:  time.Now(),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		s.logger.Warn("orphaned blob after failed insert", "storage_key", key, "name", fileName, "error", err)
		return nil, err
	}

	s.logger.Info("report created",
		"id", report.ID,
		"owner_id", report.OwnerID,
		"file_name", report.FileName,
		"month", report.Month,
		"service", report.Service,
		"actor_id", actor.ID,
	)
	return report, nil
}

// DeleteReport removes the blob best-effort, then the row
func (s *reportService) DeleteReport(ctx context.Context, actor models.Actor, id string) error {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.AuthorizeManage(actor, report).Err(); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, report.StorageKey); err != nil {
		s.logger.Warn("report blob removal failed, deleting row anyway",
			"id", report.ID, "storage_key", report.StorageKey, "error", err)
	}

	if err := s.reportRepo.Delete(ctx, report.ID); err != nil {
		return err
	}

	s.logger.Info("report deleted", "id", report.ID, "owner_id", report.OwnerID, "actor_id", actor.ID)
	return nil
}

// ListReports pages through reports newest first. Clients are pinned to
// their own reports; asking for another owner is forbidden.
func (s *reportService) ListReports(ctx context.Context, actor models.Actor, req *portalSvc.ListReportsRequest) (*models.Page[models.Report], error) {
	page := req.Page
	page.ApplyDefaults()
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := req.Range.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	filter := models.ReportFilter{
		OwnerID: req.OwnerID,
		Search:  strings.TrimSpace(req.Search),
		Range:   req.Range,
	}
	if filter.OwnerID != nil && *filter.OwnerID == "" {
		filter.OwnerID = nil
	}

	// Clients without an explicit owner get their own reports
	if actor.Role == models.RoleClient && filter.OwnerID == nil {
		self := actor.ID
		filter.OwnerID = &self
	}
	if filter.OwnerID != nil {
		if err := s.gate.Authorize(actor, models.ClientScope{OwnerID: *filter.OwnerID}).Err(); err != nil {
			return nil, err
		}
	}

	items, total, err := s.reportRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	result := models.NewPage(items, total, page)
	return &result, nil
}

// OpenReport authorizes a read and opens the report's blob
func (s *reportService) OpenReport(ctx context.Context, actor models.Actor, id string, mode portalSvc.OpenMode) (*models.Report, io.ReadCloser, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.gate.Authorize(actor, report).Err(); err != nil {
		return nil, nil, err
	}

	rc, err := openBlob(ctx, s.blobs, report.StorageKey, report.OwnerID, mode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("report blob missing", "id", report.ID, "storage_key", report.StorageKey)
			return nil, nil, &domain.NotFoundError{Message: fmt.Sprintf("content of report %s not found", report.ID)}
		}
		if errors.Is(err, domain.ErrIntegrity) {
			s.logger.Error("report row points outside its owner's storage", "id", report.ID, "owner_id", report.OwnerID, "storage_key", report.StorageKey)
		}
		return nil, nil, err
	}
	return report, rc, nil
}

// Stats returns the dashboard counters
func (s *reportService) Stats(ctx context.Context, actor models.Actor, r models.DateRange) (*models.DashboardStats, error) {
	switch actor.Role {
	case models.RoleAdmin, models.RoleSupport:
	default:
		return nil, &domain.ForbiddenError{Message: "dashboard is restricted to staff"}
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	stats := &models.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.reportRepo.Count(gctx, r)
		stats.TotalReports = n
		return err
	})
	g.Go(func() error {
		n, err := s.clientRepo.CountActive(gctx, r)
		stats.ActiveClients = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *reportService) validateCreateRequest(req *portalSvc.CreateReportRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.FileName,
			validation.Required,
			validation.RuneLength(1, config.MaxFileNameLength),
		),
		validation.Field(&req.Content, validation.Required),
		validation.Field(&req.Size,
			validation.Required.Error("file is empty"),
			validation.Min(int64(1)).Error("file is empty"),
			validation.Max(s.opts.MaxUploadBytes).Error(fmt.Sprintf("file exceeds the %d byte limit", s.opts.MaxUploadBytes)),
		),
		validation.Field(&req.Month,
			validation.NilOrNotEmpty,
			validation.Match(monthPattern).Error("month must be formatted YYYY-MM"),
		),
		validation.Field(&req.Service,
			validation.NilOrNotEmpty,
			validation.By(s.knownService),
		),
	)
}

func (s *reportService) knownService(value interface{}) error {
	svc, ok := value.(*string)
	if !ok || svc == nil {
		return nil
	}
	if _, found := s.catalog.Lookup(*svc); !found {
		return fmt.Errorf("unknown service %q", *svc)
	}
	return nil
}

// canonicalService stores the catalog display name whatever spelling was sent
func (s *reportService) canonicalService(svc *string) *string {
	if svc == nil {
		return nil
	}
	if entry, ok := s.catalog.Lookup(*svc); ok {
		name := entry.Name
		return &name
	}
	return svc
}
