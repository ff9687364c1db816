package handler

import (
	"log/slog"
	"net/http"

	portalSvc "clientportal/internal/domain/services/portal"
	"clientportal/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	treeService portalSvc.TreeService
	logger      *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(treeService portalSvc.TreeService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// CreateFolder creates a folder in a client's tree
// POST /api/admin/clients/{id}/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	clientID, ok := PathParam(w, r, "id", "Client ID")
	if !ok {
		return
	}

	var req portalSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.OwnerID = clientID

	folder, err := h.treeService.CreateFolder(r.Context(), actor, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// RenameFolder renames a folder
// PATCH /api/admin/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	var req portalSvc.RenameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.treeService.RenameFolder(r.Context(), actor, id, req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder (must be empty)
// DELETE /api/admin/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	if err := h.treeService.DeleteFolder(r.Context(), actor, id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
