package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"clientportal/internal/config"
	"clientportal/internal/domain"
	models "clientportal/internal/domain/models/portal"
	portalSvc "clientportal/internal/domain/services/portal"
	"clientportal/internal/httputil"
)

// FileHandler handles project file HTTP requests
type FileHandler struct {
	treeService    portalSvc.TreeService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(treeService portalSvc.TreeService, maxUploadBytes int64, logger *slog.Logger) *FileHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = config.DefaultMaxUploadBytes
	}
	return &FileHandler{
		treeService:    treeService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// UploadFilesResponse lists the files stored by an upload
type UploadFilesResponse struct {
	Files []models.File `json:"files"`
}

// UploadFiles stores one or more files in a client's folder.
// POST /api/admin/clients/{id}/files
//
// Form fields:
//   - folder_id: optional target folder (empty = root)
//   - files: one or more file parts
//
// A name collision stops the upload with 409; files stored before it are
// listed under "uploaded" in the problem body.
func (h *FileHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	clientID, ok := PathParam(w, r, "id", "Client ID")
	if !ok {
		return
	}

	limit := h.maxUploadBytes*config.MaxFilesPerUpload + multipartMemory
	if !parseMultipart(w, r, limit) {
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "No files provided")
		return
	}

	parts, err := openParts(headers)
	if err != nil {
		h.logger.Error("failed to open uploaded file", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	defer closeParts(parts)

	uploads := make([]models.UploadedFile, len(headers))
	for i, fh := range headers {
		uploads[i] = models.UploadedFile{Name: fh.Filename, Size: fh.Size, Content: parts[i]}
	}

	stored, err := h.treeService.UploadFiles(r.Context(), actor, &portalSvc.UploadFilesRequest{
		OwnerID:  clientID,
		FolderID: formValue(r, "folder_id"),
		Files:    uploads,
	})
	if err != nil {
		var conflictErr *domain.ConflictError
		if errors.As(err, &conflictErr) {
			httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
				"resource_type": conflictErr.ResourceType,
				"resource_id":   conflictErr.ResourceID,
				"uploaded":      stored,
			})
			return
		}
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, UploadFilesResponse{Files: stored})
}

// RenameFile changes a file's display name
// PATCH /api/admin/files/{id}
func (h *FileHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	var req portalSvc.RenameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	file, err := h.treeService.RenameFile(r.Context(), actor, id, req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile deletes a file and its blob
// DELETE /api/admin/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	if err := h.treeService.DeleteFile(r.Context(), actor, id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// Download streams a file as an attachment
// GET /api/files/{id}/download
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.open(w, r, portalSvc.OpenDownload)
}

// Preview streams a file inline
// GET /api/files/{id}/preview
func (h *FileHandler) Preview(w http.ResponseWriter, r *http.Request) {
	h.open(w, r, portalSvc.OpenPreview)
}

func (h *FileHandler) open(w http.ResponseWriter, r *http.Request, mode portalSvc.OpenMode) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	file, rc, err := h.treeService.OpenFile(r.Context(), actor, id, mode)
	if err != nil {
		handleReadError(w, actor, err)
		return
	}

	serveBlob(w, h.logger, rc, servedBlob{
		name:        file.FileName,
		contentType: file.ContentType,
		size:        file.SizeBytes,
		inline:      mode == portalSvc.OpenPreview,
	})
}
