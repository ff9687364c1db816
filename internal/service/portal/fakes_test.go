package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"clientportal/internal/catalog"
	"clientportal/internal/domain"
	models "clientportal/internal/domain/models/portal"
	"clientportal/internal/domain/repositories"
	"clientportal/internal/service/auth"
	"clientportal/internal/storage"
)

// fakeDB is an in-memory stand-in for the relational store shared by the
// fake repositories below.
type fakeDB struct {
	mu      sync.Mutex
	seq     int
	clients map[string]*models.Client
	folders map[string]*models.Folder
	files   map[string]*models.File
	reports map[string]*models.Report

	failFileCreate   error
	failReportCreate error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		clients: map[string]*models.Client{},
		folders: map[string]*models.Folder{},
		files:   map[string]*models.File{},
		reports: map[string]*models.Report{},
	}
}

func (db *fakeDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%04d", prefix, db.seq)
}

func notFound(kind, id string) error {
	return &domain.NotFoundError{Message: fmt.Sprintf("%s %s not found", kind, id)}
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// --- folders

type fakeFolderRepo struct{ db *fakeDB }

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.clients[folder.OwnerID]; !ok {
		return fmt.Errorf("folder owner or parent missing: %w", domain.ErrNotFound)
	}
	folder.ID = r.db.nextID("fld")
	cp := *folder
	r.db.folders[folder.ID] = &cp
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.folders[id]
	if !ok {
		return nil, notFound("folder", id)
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFolderRepo) GetByName(ctx context.Context, ownerID string, parentID *string, name string) (*models.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, f := range r.db.folders {
		if f.OwnerID == ownerID && samePtr(f.ParentID, parentID) && f.Name == name {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.folders[folder.ID]; !ok {
		return notFound("folder", folder.ID)
	}
	cp := *folder
	r.db.folders[folder.ID] = &cp
	return nil
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.folders[id]; !ok {
		return notFound("folder", id)
	}
	delete(r.db.folders, id)
	return nil
}

func (r *fakeFolderRepo) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]models.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Folder{}
	for _, f := range r.db.folders {
		if f.OwnerID == ownerID && samePtr(f.ParentID, parentID) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeFolderRepo) CountChildren(ctx context.Context, id string) (int, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var folders, files int
	for _, f := range r.db.folders {
		if f.ParentID != nil && *f.ParentID == id {
			folders++
		}
	}
	for _, f := range r.db.files {
		if f.FolderID != nil && *f.FolderID == id {
			files++
		}
	}
	return folders, files, nil
}

// --- files

type fakeFileRepo struct{ db *fakeDB }

func (r *fakeFileRepo) Create(ctx context.Context, file *models.File) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failFileCreate != nil {
		return r.db.failFileCreate
	}
	for _, f := range r.db.files {
		if f.StorageKey == file.StorageKey {
			return &domain.ConflictError{Message: "storage key in use", ResourceType: "file"}
		}
	}
	file.ID = r.db.nextID("file")
	cp := *file
	r.db.files[file.ID] = &cp
	return nil
}

func (r *fakeFileRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.files[id]
	if !ok {
		return nil, notFound("file", id)
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFileRepo) GetByName(ctx context.Context, ownerID string, folderID *string, name string) (*models.File, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, f := range r.db.files {
		if f.OwnerID == ownerID && samePtr(f.FolderID, folderID) && f.FileName == name {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeFileRepo) Update(ctx context.Context, file *models.File) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.files[file.ID]; !ok {
		return notFound("file", file.ID)
	}
	cp := *file
	r.db.files[file.ID] = &cp
	return nil
}

func (r *fakeFileRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.files[id]; !ok {
		return notFound("file", id)
	}
	delete(r.db.files, id)
	return nil
}

func (r *fakeFileRepo) ListByFolder(ctx context.Context, ownerID string, folderID *string) ([]models.File, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.File{}
	for _, f := range r.db.files {
		if f.OwnerID == ownerID && samePtr(f.FolderID, folderID) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FileName != out[j].FileName {
			return out[i].FileName < out[j].FileName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// --- reports

type fakeReportRepo struct{ db *fakeDB }

func (r *fakeReportRepo) Create(ctx context.Context, report *models.Report) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failReportCreate != nil {
		return r.db.failReportCreate
	}
	report.ID = r.db.nextID("rep")
	cp := *report
	r.db.reports[report.ID] = &cp
	return nil
}

func (r *fakeReportRepo) GetByID(ctx context.Context, id string) (*models.Report, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rep, ok := r.db.reports[id]
	if !ok {
		return nil, notFound("report", id)
	}
	cp := r.withOwner(*rep)
	return &cp, nil
}

func (r *fakeReportRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.reports[id]; !ok {
		return notFound("report", id)
	}
	delete(r.db.reports, id)
	return nil
}

func (r *fakeReportRepo) List(ctx context.Context, filter models.ReportFilter, page models.PageRequest) ([]models.Report, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	search := strings.ToLower(filter.Search)
	var matched []models.Report
	for _, rep := range r.db.reports {
		rep := r.withOwner(*rep)
		if filter.OwnerID != nil && rep.OwnerID != *filter.OwnerID {
			continue
		}
		if !filter.Range.Contains(rep.CreatedAt) {
			continue
		}
		if search != "" {
			hit := strings.Contains(strings.ToLower(rep.FileName), search)
			if filter.OwnerID == nil {
				hit = hit || strings.Contains(strings.ToLower(rep.OwnerName), search)
				if rep.OwnerCompany != nil {
					hit = hit || strings.Contains(strings.ToLower(*rep.OwnerCompany), search)
				}
			}
			if !hit {
				continue
			}
		}
		matched = append(matched, rep)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *fakeReportRepo) Count(ctx context.Context, dr models.DateRange) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, rep := range r.db.reports {
		if dr.Contains(rep.CreatedAt) {
			n++
		}
	}
	return n, nil
}

func (r *fakeReportRepo) withOwner(rep models.Report) models.Report {
	if c, ok := r.db.clients[rep.OwnerID]; ok {
		rep.OwnerName = c.Name
		rep.OwnerCompany = c.Company
	}
	return rep
}

// --- clients

type fakeClientRepo struct{ db *fakeDB }

func (r *fakeClientRepo) Create(ctx context.Context, client *models.Client) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.clients[client.ID]; ok {
		return &domain.ConflictError{Message: "client exists", ResourceType: "client", ResourceID: client.ID}
	}
	cp := *client
	r.db.clients[client.ID] = &cp
	return nil
}

func (r *fakeClientRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.clients[id]
	if !ok || c.DeletedAt != nil {
		return nil, notFound("client", id)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) List(ctx context.Context, filter models.ClientFilter, page models.PageRequest) ([]models.Client, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	search := strings.ToLower(filter.Search)
	var matched []models.Client
	for _, c := range r.db.clients {
		if c.Role != models.RoleClient || c.DeletedAt != nil {
			continue
		}
		if search != "" {
			fields := []string{c.Name, c.Email}
			for _, p := range []*string{c.Company, c.TaxID} {
				if p != nil {
					fields = append(fields, *p)
				}
			}
			hit := false
			for _, f := range fields {
				if strings.Contains(strings.ToLower(f), search) {
					hit = true
				}
			}
			if !hit {
				continue
			}
		}
		matched = append(matched, *c)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	total := len(matched)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)
	return matched[start:end], total, nil
}

func (r *fakeClientRepo) CountActive(ctx context.Context, dr models.DateRange) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, c := range r.db.clients {
		if c.Role == models.RoleClient && c.DeletedAt == nil && dr.Contains(c.CreatedAt) {
			n++
		}
	}
	return n, nil
}

// --- transactions and blobs

// fakeTx snapshots folders and files and restores them when fn fails
type fakeTx struct {
	db *fakeDB
}

func (tx fakeTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	tx.db.mu.Lock()
	folders := make(map[string]models.Folder, len(tx.db.folders))
	for id, f := range tx.db.folders {
		folders[id] = *f
	}
	files := make(map[string]models.File, len(tx.db.files))
	for id, f := range tx.db.files {
		files[id] = *f
	}
	tx.db.mu.Unlock()

	if err := fn(ctx); err != nil {
		tx.db.mu.Lock()
		defer tx.db.mu.Unlock()
		tx.db.folders = make(map[string]*models.Folder, len(folders))
		for id, f := range folders {
			tx.db.folders[id] = &f
		}
		tx.db.files = make(map[string]*models.File, len(files))
		for id, f := range files {
			tx.db.files[id] = &f
		}
		return err
	}
	return nil
}

// flakyBlobs fails Delete for the listed keys with a transport error and
// runs afterDelete hooks once a key is gone
type flakyBlobs struct {
	*storage.MemoryStore
	failDelete  map[string]bool
	afterDelete map[string]func()
}

var errBlobUnavailable = errors.New("object store unavailable")

func (b *flakyBlobs) Delete(ctx context.Context, key string) error {
	if b.failDelete[key] {
		return errBlobUnavailable
	}
	if err := b.MemoryStore.Delete(ctx, key); err != nil {
		return err
	}
	if hook, ok := b.afterDelete[key]; ok {
		delete(b.afterDelete, key)
		hook()
	}
	return nil
}

// --- harness

var (
	admin    = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
	support  = models.Actor{ID: "support-1", Role: models.RoleSupport}
	client42 = models.Actor{ID: "42", Role: models.RoleClient}
	client43 = models.Actor{ID: "43", Role: models.RoleClient}
)

type harness struct {
	db      *fakeDB
	blobs   *flakyBlobs
	tree    *treeService
	reports *reportService
	clients *clientService
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	db := newFakeDB()
	blobs := &flakyBlobs{
		MemoryStore: storage.NewMemoryStore(),
		failDelete:  map[string]bool{},
		afterDelete: map[string]func(){},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := auth.NewOwnerGate()

	registry, err := catalog.NewRegistry()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	folderRepo := &fakeFolderRepo{db: db}
	fileRepo := &fakeFileRepo{db: db}
	clientRepo := &fakeClientRepo{db: db}
	reportRepo := &fakeReportRepo{db: db}

	h := &harness{
		db:      db,
		blobs:   blobs,
		tree:    NewTreeService(folderRepo, fileRepo, clientRepo, blobs, fakeTx{db: db}, gate, opts, logger).(*treeService),
		reports: NewReportService(reportRepo, clientRepo, blobs, registry, gate, opts, logger).(*reportService),
		clients: NewClientService(clientRepo, gate, logger).(*clientService),
	}
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	h.addClient("42", "Ana Torres", "Clinica Norte", base)
	h.addClient("43", "Luis Pardo", "Hospital Sur", base.Add(time.Hour))
	return h
}

func (h *harness) addClient(id, name, company string, created time.Time) {
	c := company
	h.db.clients[id] = &models.Client{
		ID:        id,
		Name:      name,
		Email:     strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Company:   &c,
		Role:      models.RoleClient,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// addFolder inserts a folder row directly, bypassing the service
func (h *harness) addFolder(owner string, parent *string, name string) *models.Folder {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	f := &models.Folder{ID: h.db.nextID("fld"), OwnerID: owner, ParentID: parent, Name: name}
	h.db.folders[f.ID] = f
	return f
}

func strPtr(s string) *string { return &s }
