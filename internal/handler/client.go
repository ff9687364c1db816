package handler

import (
	"log/slog"
	"net/http"

	portalSvc "clientportal/internal/domain/services/portal"
	"clientportal/internal/httputil"
)

// ClientHandler serves the client directory
type ClientHandler struct {
	clientService portalSvc.ClientService
	logger        *slog.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService portalSvc.ClientService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// ListClients pages through active clients
// GET /api/admin/clients?search=&page=&page_size=
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	page, err := httputil.ParsePageRequest(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.clientService.ListClients(r.Context(), actor, r.URL.Query().Get("search"), page)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// GetClient returns one client
// GET /api/admin/clients/{id}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Client ID")
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(r.Context(), actor, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, client)
}
