package portal

import (
	"context"

	models "clientportal/internal/domain/models/portal"
)

// FolderRepository defines data access operations for folders.
// Lookups by ID are not owner-filtered; callers authorize the loaded row.
type FolderRepository interface {
	// Create inserts a folder and fills in ID and timestamps
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// GetByName finds a sibling by exact name. Returns nil, nil when absent.
	GetByName(ctx context.Context, ownerID string, parentID *string, name string) (*models.Folder, error)

	// Update writes name, parent and updated_at
	Update(ctx context.Context, folder *models.Folder) error

	// Delete deletes a folder row
	Delete(ctx context.Context, id string) error

	// ListChildren lists immediate child folders ordered by name
	ListChildren(ctx context.Context, ownerID string, parentID *string) ([]models.Folder, error)

	// CountChildren counts direct child folders and files
	CountChildren(ctx context.Context, id string) (folders int, files int, err error)
}
