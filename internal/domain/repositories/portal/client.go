package portal

import (
	"context"

	models "clientportal/internal/domain/models/portal"
)

// ClientRepository defines data access operations for portal users
type ClientRepository interface {
	// Create inserts a client row. ID must already be set (it is the auth user id).
	Create(ctx context.Context, client *models.Client) error

	// GetByID retrieves a non-deleted client
	GetByID(ctx context.Context, id string) (*models.Client, error)

	// List returns non-deleted clients with role client, newest first
	List(ctx context.Context, filter models.ClientFilter, page models.PageRequest) ([]models.Client, int, error)

	// CountActive counts non-deleted clients with role client created within the range
	CountActive(ctx context.Context, r models.DateRange) (int, error)
}
