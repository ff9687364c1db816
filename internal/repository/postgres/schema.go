package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the portal tables and indexes if they do not exist.
//
// Folder and file rows cascade from their owner and parent folder. The
// emptiness rule for folder deletion is enforced by the service layer, the
// cascade only guarantees no dangling rows survive.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Clients + ` (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			company TEXT,
			tax_id TEXT UNIQUE,
			client_type TEXT,
			role TEXT NOT NULL DEFAULT 'client' CHECK (role IN ('admin', 'client', 'support')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL REFERENCES ` + tables.Clients + `(id) ON DELETE CASCADE,
			parent_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL CHECK (length(name) > 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (parent_id IS NULL OR parent_id <> id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Files + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL REFERENCES ` + tables.Clients + `(id) ON DELETE CASCADE,
			folder_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE CASCADE,
			file_name VARCHAR(255) NOT NULL CHECK (length(file_name) > 0),
			storage_key TEXT NOT NULL UNIQUE,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			content_type TEXT NOT NULL DEFAULT 'application/octet-stream',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Reports + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL REFERENCES ` + tables.Clients + `(id) ON DELETE CASCADE,
			file_name VARCHAR(255) NOT NULL,
			storage_key TEXT NOT NULL UNIQUE,
			month CHAR(7),
			service TEXT,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Index("folders_owner_parent") + ` ON ` + tables.Folders + `(owner_id, parent_id, name)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Index("files_owner_folder") + ` ON ` + tables.Files + `(owner_id, folder_id, file_name)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Index("reports_owner_created") + ` ON ` + tables.Reports + `(owner_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Index("reports_created") + ` ON ` + tables.Reports + `(created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Index("clients_role_created") + ` ON ` + tables.Clients + `(role, created_at DESC) WHERE deleted_at IS NULL`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run schema statement: %w", err)
		}
	}
	return nil
}

// DropSchema drops every portal table (children first).
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	all := tables.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+all[i]+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", all[i], err)
		}
	}
	return nil
}
