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

const fileColumns = `id, owner_id, folder_id, file_name, storage_key, size_bytes, content_type, created_at, updated_at`

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) portalRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a file row after its blob has been written
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, folder_id, file_name, storage_key, size_bytes, content_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.OwnerID,
		file.FolderID,
		file.FileName,
		file.StorageKey,
		file.SizeBytes,
		file.ContentType,
		file.CreatedAt,
		file.UpdatedAt,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("storage key %q already in use", file.StorageKey),
				ResourceType: "file",
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("file owner or folder missing: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, fileColumns, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidInputError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("file %s not found", id)}
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return file, nil
}

// GetByName finds a file by exact name in a folder
func (r *PostgresFileRepository) GetByName(ctx context.Context, ownerID string, folderID *string, name string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2 AND file_name = $3
		LIMIT 1
	`, fileColumns, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, ownerID, folderID, name))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file by name: %w", err)
	}
	return file, nil
}

// Update writes file metadata. The storage key never changes.
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, file_name = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, file.FolderID, file.FileName, file.UpdatedAt, file.ID)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("file %s not found", file.ID)}
	}
	return nil
}

// Delete deletes a file row
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("file %s not found", id)}
	}
	return nil
}

// ListByFolder lists files directly inside a folder
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, ownerID string, folderID *string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2
		ORDER BY file_name ASC, id ASC
	`, fileColumns, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID, folderID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

func scanFile(row rowScanner) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.OwnerID,
		&file.FolderID,
		&file.FileName,
		&file.StorageKey,
		&file.SizeBytes,
		&file.ContentType,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}
