package httputil

import (
	"context"
	"net/http"

	models "clientportal/internal/domain/models/portal"
)

// Context key type to avoid collisions
type contextKey string

const (
	actorKey contextKey = "actor"
)

// WithActor adds the authenticated actor to the request context
func WithActor(r *http.Request, actor models.Actor) *http.Request {
	ctx := context.WithValue(r.Context(), actorKey, actor)
	return r.WithContext(ctx)
}

// GetActor retrieves the actor from context. ok is false on unauthenticated
// requests.
func GetActor(r *http.Request) (models.Actor, bool) {
	actor, ok := r.Context().Value(actorKey).(models.Actor)
	return actor, ok
}
