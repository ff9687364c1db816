package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"clientportal/internal/auth"
	"clientportal/internal/domain"
	models "clientportal/internal/domain/models/portal"
	portalRepo "clientportal/internal/domain/repositories/portal"
	portalSvc "clientportal/internal/domain/services/portal"
	"clientportal/internal/repository/postgres"
)

const demoPassword = "portal-demo-123"

type demoUser struct {
	auth.PortalUser
	company    string
	taxID      string
	clientType string
}

func demoUsers() []demoUser {
	return []demoUser{
		{PortalUser: auth.PortalUser{Email: "admin@portal.local", Password: demoPassword, Name: "Portal Admin", Role: models.RoleAdmin}},
		{PortalUser: auth.PortalUser{Email: "soporte@portal.local", Password: demoPassword, Name: "Soporte", Role: models.RoleSupport}},
		{
			PortalUser: auth.PortalUser{Email: "ana.torres@clinicanorte.local", Password: demoPassword, Name: "Ana Torres", Role: models.RoleClient},
			company:    "Clinica Norte",
			taxID:      "20100000001",
			clientType: "clinic",
		},
		{
			PortalUser: auth.PortalUser{Email: "luis.pardo@hospitalsur.local", Password: demoPassword, Name: "Luis Pardo", Role: models.RoleClient},
			company:    "Hospital Sur",
			taxID:      "20100000002",
			clientType: "hospital",
		},
	}
}

// provisionUsers creates the auth users (when an admin client is available)
// and their client rows. Existing rows are left alone.
func provisionUsers(ctx context.Context, admin *auth.AdminClient, clients portalRepo.ClientRepository, users []demoUser) ([]*models.Client, error) {
	seeded := make([]*models.Client, 0, len(users))
	for _, u := range users {
		id := uuid.NewString()
		if admin != nil {
			var err error
			id, err = admin.EnsureUser(ctx, u.PortalUser)
			if err != nil {
				return nil, fmt.Errorf("ensure auth user %s: %w", u.Email, err)
			}
		}

		now := time.Now()
		client := &models.Client{
			ID:        id,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if u.company != "" {
			client.Company = stringPtr(u.company)
			client.TaxID = stringPtr(u.taxID)
			client.ClientType = stringPtr(u.clientType)
		}

		if err := clients.Create(ctx, client); err != nil {
			var conflict *domain.ConflictError
			if !errors.As(err, &conflict) {
				return nil, fmt.Errorf("create client %s: %w", u.Email, err)
			}
			if admin == nil {
				// The stored row has an id we cannot recover without the auth user
				log.Printf("  ↪ %s already present, skipping", u.Email)
				continue
			}
			log.Printf("  ↪ %s already present", u.Email)
		} else {
			log.Printf("  ✓ %s (%s, id %s)", u.Email, u.Role, client.ID)
		}
		seeded = append(seeded, client)
	}
	return seeded, nil
}

// clearPortalData deletes every row; children first
func clearPortalData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	for _, table := range []string{tables.Reports, tables.Files, tables.Folders, tables.Clients} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		log.Printf("  ✓ Cleared %s", table)
	}
	return nil
}

type portalSeeder struct {
	tree      portalSvc.TreeService
	reports   portalSvc.ReportService
	withBlobs bool
}

var demoFolders = []struct {
	name     string
	children []string
}{
	{name: "Contratos", children: []string{"2024", "2025"}},
	{name: "Facturas"},
	{name: "Resultados"},
}

// minimalPDF is a one-page blank document
const minimalPDF = "%PDF-1.4\n1 0 obj<</Type/Catalog/Pages 2 0 R>>endobj\n" +
	"2 0 obj<</Type/Pages/Kids[3 0 R]/Count 1>>endobj\n" +
	"3 0 obj<</Type/Page/Parent 2 0 R/MediaBox[0 0 612 792]>>endobj\n" +
	"trailer<</Root 1 0 R>>\n%%EOF\n"

func (s *portalSeeder) seed(ctx context.Context, users []*models.Client) error {
	staff := models.Actor{ID: "seed", Role: models.RoleAdmin}
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			staff.ID = u.ID
		}
	}

	for _, u := range users {
		if u.Role != models.RoleClient {
			continue
		}
		log.Printf("📁 Seeding tree for %s", u.DisplayName())
		root, err := s.tree.ListChildren(ctx, staff, u.ID, nil)
		if err != nil {
			return fmt.Errorf("list root of %s: %w", u.Email, err)
		}
		present := make(map[string]bool, len(root.Folders))
		for _, f := range root.Folders {
			present[f.Name] = true
		}

		for _, f := range demoFolders {
			if present[f.name] {
				log.Printf("  ↪ %s already present, skipping", f.name)
				continue
			}
			parent, err := s.tree.CreateFolder(ctx, staff, &portalSvc.CreateFolderRequest{OwnerID: u.ID, Name: f.name})
			if err != nil {
				return fmt.Errorf("create folder %s: %w", f.name, err)
			}
			for _, child := range f.children {
				if _, err := s.tree.CreateFolder(ctx, staff, &portalSvc.CreateFolderRequest{
					OwnerID:  u.ID,
					ParentID: &parent.ID,
					Name:     child,
				}); err != nil {
					return fmt.Errorf("create folder %s/%s: %w", f.name, child, err)
				}
			}

			if s.withBlobs && f.name == "Facturas" {
				welcome := []byte("Bienvenido al portal de clientes.\n")
				if _, err := s.tree.UploadFiles(ctx, staff, &portalSvc.UploadFilesRequest{
					OwnerID:  u.ID,
					FolderID: &parent.ID,
					Files: []models.UploadedFile{
						{Name: "LEEME.txt", Size: int64(len(welcome)), Content: bytes.NewReader(welcome)},
					},
				}); err != nil {
					return fmt.Errorf("upload welcome file: %w", err)
				}
			}
		}

		if s.withBlobs {
			month := time.Now().Format("2006-01")
			if _, err := s.reports.CreateReport(ctx, staff, &portalSvc.CreateReportRequest{
				OwnerID:  u.ID,
				FileName: "informe-" + month + ".pdf",
				Size:     int64(len(minimalPDF)),
				Content:  bytes.NewReader([]byte(minimalPDF)),
				Month:    &month,
				Service:  stringPtr("Odontología"),
			}); err != nil {
				return fmt.Errorf("create report: %w", err)
			}
		}
	}
	return nil
}

func stringPtr(s string) *string {
	return &s
}
