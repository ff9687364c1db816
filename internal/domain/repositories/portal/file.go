package portal

import (
	"context"

	models "clientportal/internal/domain/models/portal"
)

// FileRepository defines data access operations for project files
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id string) (*models.File, error)

	// GetByName finds a file by exact name in a folder. Returns nil, nil when absent.
	GetByName(ctx context.Context, ownerID string, folderID *string, name string) (*models.File, error)

	Update(ctx context.Context, file *models.File) error
	Delete(ctx context.Context, id string) error

	// ListByFolder lists files directly inside a folder (nil = root) ordered by name
	ListByFolder(ctx context.Context, ownerID string, folderID *string) ([]models.File, error)
}
