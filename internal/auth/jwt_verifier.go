package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"clientportal/internal/domain"
	"clientportal/internal/domain/models"
)

// allowedAlgorithms blocks algorithm confusion (e.g. HS256 signed with a public key)
var allowedAlgorithms = []string{"RS256", "ES256"}

// SupabaseJWTVerifier implements JWTVerifier using JWKS from Supabase.
type SupabaseJWTVerifier struct {
	keyfunc jwt.Keyfunc
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// NewJWTVerifier creates a verifier backed by the JWKS endpoint. Keys are
// cached and refreshed in the background until Close.
func NewJWTVerifier(jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return &SupabaseJWTVerifier{
		keyfunc: jwks.Keyfunc,
		cancel:  cancel,
		logger:  logger,
	}, nil
}

// NewStaticVerifier verifies tokens against a fixed key function. Used by
// tests and by deployments that pin a key instead of fetching JWKS.
func NewStaticVerifier(kf jwt.Keyfunc, logger *slog.Logger) JWTVerifier {
	return &SupabaseJWTVerifier{keyfunc: kf, logger: logger}
}

// VerifyToken validates a JWT token and extracts Supabase claims.
func (v *SupabaseJWTVerifier) VerifyToken(tokenString string) (*models.SupabaseClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SupabaseClaims{}, v.keyfunc,
		jwt.WithValidMethods(allowedAlgorithms),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.SupabaseClaims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	// Reject anonymous sessions
	if claims.Role != "authenticated" || claims.IsAnonymous {
		v.logger.Warn("token has invalid role",
			"role", claims.Role,
			"anonymous", claims.IsAnonymous,
			"user_id", claims.Subject,
		)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close stops the background JWKS refresh
func (v *SupabaseJWTVerifier) Close() error {
	if v.cancel != nil {
		v.cancel()
	}
	v.logger.Info("JWT verifier closed")
	return nil
}
