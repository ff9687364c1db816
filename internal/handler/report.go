package handler

import (
	"log/slog"
	"net/http"

	"clientportal/internal/config"
	portalSvc "clientportal/internal/domain/services/portal"
	"clientportal/internal/httputil"
)

// ReportHandler handles report registry HTTP requests
type ReportHandler struct {
	reportService  portalSvc.ReportService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService portalSvc.ReportService, maxUploadBytes int64, logger *slog.Logger) *ReportHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = config.DefaultMaxUploadBytes
	}
	return &ReportHandler{
		reportService:  reportService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// MyReports pages through the caller's own reports
// GET /api/me/reports?search=&page=&page_size=
func (h *ReportHandler) MyReports(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req, ok := parseListReports(w, r)
	if !ok {
		return
	}
	self := actor.ID
	req.OwnerID = &self

	page, err := h.reportService.ListReports(r.Context(), actor, req)
	if err != nil {
		handleReadError(w, actor, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// ListReports pages through every report, optionally for one owner
// GET /api/admin/reports?search=&owner_id=&start_date=&end_date=&page=&page_size=
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req, ok := parseListReports(w, r)
	if !ok {
		return
	}
	req.OwnerID = httputil.OptionalQuery(r, "owner_id")

	page, err := h.reportService.ListReports(r.Context(), actor, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// CreateReport uploads a report PDF for a client.
// POST /api/admin/reports
//
// Form fields: owner_id, month (YYYY-MM, optional), service (optional), file
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if !parseMultipart(w, r, h.maxUploadBytes+multipartMemory) {
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["file"]
	if len(headers) != 1 {
		httputil.RespondError(w, http.StatusBadRequest, "exactly one file is required")
		return
	}
	parts, err := openParts(headers)
	if err != nil {
		h.logger.Error("failed to open uploaded report", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	defer closeParts(parts)

	var ownerID string
	if v := formValue(r, "owner_id"); v != nil {
		ownerID = *v
	}

	report, err := h.reportService.CreateReport(r.Context(), actor, &portalSvc.CreateReportRequest{
		OwnerID:  ownerID,
		FileName: headers[0].Filename,
		Size:     headers[0].Size,
		Content:  parts[0],
		Month:    formValue(r, "month"),
		Service:  formValue(r, "service"),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, report)
}

// DeleteReport removes a report and its PDF
// DELETE /api/admin/reports/{id}
func (h *ReportHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Report ID")
	if !ok {
		return
	}

	if err := h.reportService.DeleteReport(r.Context(), actor, id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// Download streams a report as an attachment
// GET /api/reports/{id}/download
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.open(w, r, portalSvc.OpenDownload)
}

// Preview streams a report inline
// GET /api/reports/{id}/preview
func (h *ReportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	h.open(w, r, portalSvc.OpenPreview)
}

func (h *ReportHandler) open(w http.ResponseWriter, r *http.Request, mode portalSvc.OpenMode) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Report ID")
	if !ok {
		return
	}

	report, rc, err := h.reportService.OpenReport(r.Context(), actor, id, mode)
	if err != nil {
		handleReadError(w, actor, err)
		return
	}

	serveBlob(w, h.logger, rc, servedBlob{
		name:        report.FileName,
		contentType: "application/pdf",
		size:        report.SizeBytes,
		inline:      mode == portalSvc.OpenPreview,
	})
}

// Stats returns the dashboard counters
// GET /api/admin/stats?start_date=&end_date=
func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	dr, err := httputil.ParseDateRange(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.reportService.Stats(r.Context(), actor, dr)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}

func parseListReports(w http.ResponseWriter, r *http.Request) (*portalSvc.ListReportsRequest, bool) {
	page, err := httputil.ParsePageRequest(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	dr, err := httputil.ParseDateRange(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &portalSvc.ListReportsRequest{
		Search: r.URL.Query().Get("search"),
		Range:  dr,
		Page:   page,
	}, true
}
