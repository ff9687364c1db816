package middleware

import (
	"net/http"
	"strings"

	models "clientportal/internal/domain/models/portal"
	"clientportal/internal/httputil"
)

// RequireRole rejects requests under prefix whose actor has none of the
// given roles. Other paths pass through untouched.
func RequireRole(prefix string, roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			actor, ok := httputil.GetActor(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !allowed[actor.Role] {
				httputil.RespondError(w, http.StatusForbidden, "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
