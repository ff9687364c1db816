package middleware

import (
	"net/http"
	"strings"

	"clientportal/internal/auth"
	"clientportal/internal/httputil"
)

// publicPaths skip authentication
var publicPaths = map[string]bool{
	"/health": true,
}

// AuthMiddleware validates the bearer token and puts the portal actor on
// the request context. Pre-flight requests and public paths pass through.
func AuthMiddleware(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing or malformed Authorization header")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			actor, err := claims.Actor()
			if err != nil {
				httputil.RespondError(w, http.StatusForbidden, "account has no valid portal role")
				return
			}

			next.ServeHTTP(w, httputil.WithActor(r, actor))
		})
	}
}
