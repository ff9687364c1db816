package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientportal/internal/domain"
	models "clientportal/internal/domain/models/portal"
	portalSvc "clientportal/internal/domain/services/portal"
	"clientportal/internal/storage"
)

const pdfBody = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

func reportRequest(owner, name string) *portalSvc.CreateReportRequest {
	return &portalSvc.CreateReportRequest{
		OwnerID:  owner,
		FileName: name,
		Size:     int64(len(pdfBody)),
		Content:  strings.NewReader(pdfBody),
	}
}

// addReport inserts a report row directly with a fixed creation time
func (h *harness) addReport(owner, name string, created time.Time) *models.Report {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	r := &models.Report{
		ID:         h.db.nextID("rep"),
		OwnerID:    owner,
		FileName:   name,
		StorageKey: storage.ReportKey(owner, name),
		SizeBytes:  1,
		CreatedAt:  created,
	}
	h.db.reports[r.ID] = r
	return r
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestReports_TenantIsolationEndToEnd(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	report, err := h.reports.CreateReport(ctx, admin, reportRequest("42", "enero.pdf"))
	require.NoError(t, err)

	t.Run("owner lists and downloads", func(t *testing.T) {
		page, err := h.reports.ListReports(ctx, client42, &portalSvc.ListReportsRequest{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, report.ID, page.Items[0].ID)
		assert.Equal(t, "Ana Torres", page.Items[0].OwnerName)

		got, rc, err := h.reports.OpenReport(ctx, client42, report.ID, portalSvc.OpenDownload)
		require.NoError(t, err)
		body, _ := io.ReadAll(rc)
		rc.Close()
		assert.Equal(t, pdfBody, string(body))
		assert.Equal(t, "enero.pdf", got.FileName)
	})

	t.Run("other client sees nothing", func(t *testing.T) {
		page, err := h.reports.ListReports(ctx, client43, &portalSvc.ListReportsRequest{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 0, page.Total)
	})

	t.Run("other client cannot download", func(t *testing.T) {
		for _, mode := range []portalSvc.OpenMode{portalSvc.OpenDownload, portalSvc.OpenPreview} {
			_, _, err := h.reports.OpenReport(ctx, client43, report.ID, mode)
			assert.ErrorIs(t, err, domain.ErrForbidden)
		}
	})

	t.Run("other client cannot filter by foreign owner", func(t *testing.T) {
		_, err := h.reports.ListReports(ctx, client43, &portalSvc.ListReportsRequest{OwnerID: strPtr("42")})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("staff see every owner", func(t *testing.T) {
		page, err := h.reports.ListReports(ctx, support, &portalSvc.ListReportsRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
	})
}

func TestCreateReport_Validation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*portalSvc.CreateReportRequest)
	}{
		{"missing owner", func(r *portalSvc.CreateReportRequest) { r.OwnerID = "" }},
		{"missing file name", func(r *portalSvc.CreateReportRequest) { r.FileName = "" }},
		{"long file name", func(r *portalSvc.CreateReportRequest) { r.FileName = strings.Repeat("x", 256) }},
		{"empty file", func(r *portalSvc.CreateReportRequest) { r.Size = 0 }},
		{"bad month", func(r *portalSvc.CreateReportRequest) { r.Month = strPtr("2025-13") }},
		{"month without dash", func(r *portalSvc.CreateReportRequest) { r.Month = strPtr("202501") }},
		{"empty month", func(r *portalSvc.CreateReportRequest) { r.Month = strPtr("") }},
		{"unknown service", func(r *portalSvc.CreateReportRequest) { r.Service = strPtr("Cardiologia") }},
		{"owner does not exist", func(r *portalSvc.CreateReportRequest) { r.OwnerID = "999" }},
		{"not a pdf", func(r *portalSvc.CreateReportRequest) {
			body := "plain text, not a report"
			r.Content = strings.NewReader(body)
			r.Size = int64(len(body))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, Options{})
			req := reportRequest("42", "informe.pdf")
			tc.mutate(req)

			_, err := h.reports.CreateReport(ctx, admin, req)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, h.db.reports)
			assert.Empty(t, h.blobs.Keys(""))
		})
	}

	t.Run("oversize", func(t *testing.T) {
		h := newHarness(t, Options{MaxUploadBytes: 16})
		_, err := h.reports.CreateReport(ctx, admin, reportRequest("42", "informe.pdf"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("only admins create", func(t *testing.T) {
		h := newHarness(t, Options{})
		for _, actor := range []models.Actor{client42, support} {
			_, err := h.reports.CreateReport(ctx, actor, reportRequest("42", "informe.pdf"))
			assert.ErrorIs(t, err, domain.ErrForbidden)
		}
	})
}

func TestCreateReport_StoresMetadata(t *testing.T) {
	h := newHarness(t, Options{})
	req := reportRequest("42", " marzo.pdf ")
	req.Month = strPtr("2025-03")
	req.Service = strPtr("odontologia")

	report, err := h.reports.CreateReport(context.Background(), admin, req)
	require.NoError(t, err)

	assert.Equal(t, "marzo.pdf", report.FileName)
	assert.Equal(t, "2025-03", *report.Month)
	require.NotNil(t, report.Service)
	assert.Equal(t, "Odontología", *report.Service)
	assert.Equal(t, int64(len(pdfBody)), report.SizeBytes)
	assert.True(t, strings.HasPrefix(report.StorageKey, storage.ReportPrefix+"/42/"))
	assert.Equal(t, []string{report.StorageKey}, h.blobs.Keys(storage.ReportPrefix+"/"))
}

func TestCreateReport_FailedInsertLeavesOrphanedBlob(t *testing.T) {
	h := newHarness(t, Options{})
	h.db.failReportCreate = errors.New("connection reset")

	_, err := h.reports.CreateReport(context.Background(), admin, reportRequest("42", "informe.pdf"))
	require.Error(t, err)
	assert.Empty(t, h.db.reports)
	assert.Len(t, h.blobs.Keys(storage.ReportPrefix+"/"), 1)
}

func TestListReports_PagesAreDisjointAndOrdered(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	// Repeated timestamps exercise the id tie-break
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		h.addReport("42", fmt.Sprintf("r%02d.pdf", i), base.Add(time.Duration(i/3)*time.Hour))
	}

	seen := map[string]bool{}
	var all []models.Report
	for p := 1; p <= 3; p++ {
		page, err := h.reports.ListReports(ctx, client42, &portalSvc.ListReportsRequest{
			Page: models.PageRequest{Page: p, PageSize: 10},
		})
		require.NoError(t, err)
		assert.Equal(t, 25, page.Total)
		assert.Equal(t, p < 3, page.HasMore)
		for _, r := range page.Items {
			assert.False(t, seen[r.ID], "report %s repeated across pages", r.ID)
			seen[r.ID] = true
		}
		all = append(all, page.Items...)
	}
	assert.Len(t, all, 25)

	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt), "not newest first at %d", i)
	}
}

func TestListReports_DefaultsAndLimits(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		h.addReport("42", fmt.Sprintf("r%02d.pdf", i), time.Now())
	}

	page, err := h.reports.ListReports(ctx, admin, &portalSvc.ListReportsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, models.DefaultPageSize, page.PageSize)
	assert.Len(t, page.Items, models.DefaultPageSize)
	assert.True(t, page.HasMore)

	_, err = h.reports.ListReports(ctx, admin, &portalSvc.ListReportsRequest{
		Page: models.PageRequest{Page: 1, PageSize: models.MaxPageSize + 1},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	beyond, err := h.reports.ListReports(ctx, admin, &portalSvc.ListReportsRequest{
		Page: models.PageRequest{Page: 9, PageSize: 10},
	})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 12, beyond.Total)
	assert.False(t, beyond.HasMore)
}

func TestListReports_Search(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	now := time.Now()

	h.addReport("42", "Balance Enero.pdf", now)
	h.addReport("43", "balance febrero.pdf", now)
	h.addReport("43", "cierre.pdf", now)

	page, err := h.reports.ListReports(ctx, admin, &portalSvc.ListReportsRequest{Search: "BALANCE"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	// Staff search also matches the owner's company
	page, err = h.reports.ListReports(ctx, admin, &portalSvc.ListReportsRequest{Search: "hospital sur"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	// A client's search stays within its own reports
	page, err = h.reports.ListReports(ctx, client42, &portalSvc.ListReportsRequest{Search: "balance"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Balance Enero.pdf", page.Items[0].FileName)

	page, err = h.reports.ListReports(ctx, client42, &portalSvc.ListReportsRequest{Search: "hospital sur"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListReports_DateRangeIsInclusive(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	h.addReport("42", "before.pdf", time.Date(2025, 2, 28, 23, 59, 0, 0, time.UTC))
	h.addReport("42", "first.pdf", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	h.addReport("42", "last.pdf", time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC))
	h.addReport("42", "after.pdf", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	list := func(r models.DateRange) []string {
		page, err := h.reports.ListReports(ctx, admin, &portalSvc.ListReportsRequest{Range: r})
		require.NoError(t, err)
		names := make([]string, len(page.Items))
		for i, item := range page.Items {
			names[i] = item.FileName
		}
		return names
	}

	assert.Equal(t, []string{"last.pdf", "first.pdf"}, list(models.DateRange{Start: day(2025, 3, 1), End: day(2025, 3, 31)}))
	assert.Equal(t, []string{"after.pdf", "last.pdf", "first.pdf"}, list(models.DateRange{Start: day(2025, 3, 1)}))
	assert.Equal(t, []string{"before.pdf"}, list(models.DateRange{End: day(2025, 2, 28)}))

	_, err := h.reports.ListReports(ctx, admin, &portalSvc.ListReportsRequest{
		Range: models.DateRange{Start: day(2025, 4, 1), End: day(2025, 3, 1)},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteReport(t *testing.T) {
	ctx := context.Background()

	t.Run("removes row and blob", func(t *testing.T) {
		h := newHarness(t, Options{})
		report, err := h.reports.CreateReport(ctx, admin, reportRequest("42", "a.pdf"))
		require.NoError(t, err)

		require.NoError(t, h.reports.DeleteReport(ctx, admin, report.ID))
		assert.Empty(t, h.db.reports)
		assert.Empty(t, h.blobs.Keys(""))
	})

	t.Run("blob failure does not block row removal", func(t *testing.T) {
		h := newHarness(t, Options{})
		report, err := h.reports.CreateReport(ctx, admin, reportRequest("42", "a.pdf"))
		require.NoError(t, err)
		h.blobs.failDelete[report.StorageKey] = true

		require.NoError(t, h.reports.DeleteReport(ctx, admin, report.ID))
		assert.Empty(t, h.db.reports)
	})

	t.Run("clients cannot delete", func(t *testing.T) {
		h := newHarness(t, Options{})
		report := h.addReport("42", "a.pdf", time.Now())
		assert.ErrorIs(t, h.reports.DeleteReport(ctx, client42, report.ID), domain.ErrForbidden)
		assert.Len(t, h.db.reports, 1)
	})

	t.Run("unknown id", func(t *testing.T) {
		h := newHarness(t, Options{})
		assert.ErrorIs(t, h.reports.DeleteReport(ctx, admin, "missing"), domain.ErrNotFound)
	})
}

func TestOpenReport_MissingBlob(t *testing.T) {
	h := newHarness(t, Options{})
	report := h.addReport("42", "a.pdf", time.Now())

	_, _, err := h.reports.OpenReport(context.Background(), client42, report.ID, portalSvc.OpenPreview)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStats(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	h.addReport("42", "a.pdf", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	h.addReport("43", "b.pdf", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))
	h.db.clients["admin-1"] = &models.Client{ID: "admin-1", Name: "Admin", Role: models.RoleAdmin}

	stats, err := h.reports.Stats(ctx, admin, models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalReports)
	assert.Equal(t, 2, stats.ActiveClients)

	stats, err = h.reports.Stats(ctx, support, models.DateRange{Start: day(2025, 4, 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalReports)
	assert.Equal(t, 0, stats.ActiveClients)

	_, err = h.reports.Stats(ctx, client42, models.DateRange{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
