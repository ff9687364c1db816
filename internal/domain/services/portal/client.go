package portal

import (
	"context"

	"clientportal/internal/domain/models/portal"
)

// ClientService is the admin client directory.
type ClientService interface {
	ListClients(ctx context.Context, actor portal.Actor, search string, page portal.PageRequest) (*portal.Page[portal.Client], error)
	GetClient(ctx context.Context, actor portal.Actor, id string) (*portal.Client, error)
}
