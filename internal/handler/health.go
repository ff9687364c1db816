package handler

import (
	"context"
	"net/http"
	"time"

	"clientportal/internal/httputil"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness probes
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a health handler; db may be nil
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck reports service and database status
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			httputil.RespondJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	httputil.RespondJSON(w, http.StatusOK, status)
}
