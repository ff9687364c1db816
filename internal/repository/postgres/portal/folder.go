package portal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"clientportal/internal/domain"
	models "clientportal/internal/domain/models/portal"
	portalRepo "clientportal/internal/domain/repositories/portal"
	"clientportal/internal/repository/postgres"
)

const folderColumns = `id, owner_id, parent_id, name, created_at, updated_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) portalRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, parent_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.OwnerID,
		folder.ParentID,
		folder.Name,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder owner or parent missing: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidInputError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// GetByName finds a folder by exact name among its siblings
func (r *PostgresFolderRepository) GetByName(ctx context.Context, ownerID string, parentID *string, name string) (*models.Folder, error) {
	// IS NOT DISTINCT FROM matches NULL parents (root level) as equal
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND name = $3
		LIMIT 1
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, ownerID, parentID, name))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get folder by name: %w", err)
	}
	return folder, nil
}

// Update updates a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.UpdatedAt,
		folder.ID,
	)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", folder.ID)}
	}

	return nil
}

// Delete deletes a folder
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
	}

	return nil
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE owner_id = $1 AND parent_id IS NULL
			ORDER BY name ASC, id ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, ownerID)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE owner_id = $1 AND parent_id = $2
			ORDER BY name ASC, id ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, ownerID, *parentID)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folder children: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// CountChildren counts direct child folders and files of a folder
func (r *PostgresFolderRepository) CountChildren(ctx context.Context, id string) (int, int, error) {
	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %s WHERE parent_id = $1),
			(SELECT COUNT(*) FROM %s WHERE folder_id = $1)
	`, r.tables.Folders, r.tables.Files)

	var folders, files int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&folders, &files); err != nil {
		return 0, 0, fmt.Errorf("count folder children: %w", err)
	}
	return folders, files, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.OwnerID,
		&folder.ParentID,
		&folder.Name,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
