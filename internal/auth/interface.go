package auth

import "clientportal/internal/domain/models"

// JWTVerifier validates bearer tokens issued by the identity provider.
type JWTVerifier interface {
	// VerifyToken validates a JWT and returns its claims. Any failure
	// (bad signature, expiry, anonymous session) is domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Close releases any resources held by the verifier
	Close() error
}
