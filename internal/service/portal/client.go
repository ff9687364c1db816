package portal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"clientportal/internal/domain"
	models "clientportal/internal/domain/models/portal"
	portalRepo "clientportal/internal/domain/repositories/portal"
	"clientportal/internal/domain/services"
	portalSvc "clientportal/internal/domain/services/portal"
)

type clientService struct {
	clientRepo portalRepo.ClientRepository
	gate       services.AccessGate
	logger     *slog.Logger
}

// NewClientService creates the client directory service
func NewClientService(clientRepo portalRepo.ClientRepository, gate services.AccessGate, logger *slog.Logger) portalSvc.ClientService {
	return &clientService{
		clientRepo: clientRepo,
		gate:       gate,
		logger:     logger,
	}
}

// ListClients pages through active clients, newest first (staff only)
func (s *clientService) ListClients(ctx context.Context, actor models.Actor, search string, page models.PageRequest) (*models.Page[models.Client], error) {
	switch actor.Role {
	case models.RoleAdmin, models.RoleSupport:
	default:
		return nil, &domain.ForbiddenError{Message: "client directory is restricted to staff"}
	}

	page.ApplyDefaults()
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	items, total, err := s.clientRepo.List(ctx, models.ClientFilter{Search: strings.TrimSpace(search)}, page)
	if err != nil {
		return nil, err
	}
	result := models.NewPage(items, total, page)
	return &result, nil
}

// GetClient returns one client. Clients may only read themselves.
func (s *clientService) GetClient(ctx context.Context, actor models.Actor, id string) (*models.Client, error) {
	if err := s.gate.Authorize(actor, models.ClientScope{OwnerID: id}).Err(); err != nil {
		return nil, err
	}
	return s.clientRepo.GetByID(ctx, id)
}
