package handler

import (
	"log/slog"
	"net/http"

	"clientportal/internal/catalog"
	"clientportal/internal/httputil"
)

// CatalogHandler serves the report service catalog
type CatalogHandler struct {
	registry *catalog.Registry
	logger   *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(registry *catalog.Registry, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		registry: registry,
		logger:   logger,
	}
}

// ServiceTypesResponse lists the service categories in display order
type ServiceTypesResponse struct {
	Services []catalog.Service `json:"services"`
}

// GetServiceTypes returns every service a report can be filed under
// GET /api/service-types
func (h *CatalogHandler) GetServiceTypes(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, ServiceTypesResponse{Services: h.registry.List()})
}
