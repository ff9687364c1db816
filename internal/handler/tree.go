package handler

import (
	"log/slog"
	"net/http"

	portalSvc "clientportal/internal/domain/services/portal"
	"clientportal/internal/httputil"
)

// TreeHandler handles HTTP requests for browsing a client's tree
type TreeHandler struct {
	treeService portalSvc.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService portalSvc.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// MyTree lists one level of the caller's own tree
// GET /api/me/tree?folder_id=
func (h *TreeHandler) MyTree(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	contents, err := h.treeService.ListChildren(r.Context(), actor, actor.ID, httputil.OptionalQuery(r, "folder_id"))
	if err != nil {
		handleReadError(w, actor, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, contents)
}

// ClientTree lists one level of a client's tree for staff
// GET /api/admin/clients/{id}/tree?folder_id=
func (h *TreeHandler) ClientTree(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	clientID, ok := PathParam(w, r, "id", "Client ID")
	if !ok {
		return
	}

	contents, err := h.treeService.ListChildren(r.Context(), actor, clientID, httputil.OptionalQuery(r, "folder_id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, contents)
}

// Breadcrumbs returns the root..folder trail
// GET /api/folders/{id}/breadcrumbs
func (h *TreeHandler) Breadcrumbs(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	folderID, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	crumbs, err := h.treeService.Breadcrumbs(r.Context(), actor, &folderID)
	if err != nil {
		handleReadError(w, actor, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, crumbs)
}

// BatchDelete deletes a multi-select of folders and files
// POST /api/admin/batch-delete
func (h *TreeHandler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req portalSvc.BatchDeleteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.treeService.DeleteBatch(r.Context(), actor, req.Items)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
