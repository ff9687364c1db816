package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"clientportal/internal/domain"
	models "clientportal/internal/domain/models/portal"
	"clientportal/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	var notEmptyErr *domain.NotEmptyError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &notEmptyErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, notEmptyErr.Error(), map[string]interface{}{
			"folder_id":   notEmptyErr.FolderID,
			"folder_name": notEmptyErr.FolderName,
		})
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrIntegrity):
		slog.Default().Error("data integrity violation", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	default:
		slog.Default().Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleReadError is handleError for routes a client can reach: a client
// denied access to someone else's resource gets the same 404 as a missing one.
func handleReadError(w http.ResponseWriter, actor models.Actor, err error) {
	if actor.Role == models.RoleClient && errors.Is(err, domain.ErrForbidden) {
		httputil.RespondError(w, http.StatusNotFound, "resource not found")
		return
	}
	handleError(w, err)
}

// requireActor reads the authenticated actor or writes a 401
func requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := httputil.GetActor(r)
	if !ok || actor.ID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return models.Actor{}, false
	}
	return actor, true
}

// PathParam reads a required path value or writes a 400
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return v, true
}
