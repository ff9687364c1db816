package models

import (
	"github.com/golang-jwt/jwt/v5"

	"clientportal/internal/domain/models/portal"
)

// SupabaseClaims represents the JWT claims structure from Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims                          // sub, iss, aud, exp, iat
	Email                string                   `json:"email"`
	AppMetadata          map[string]interface{}   `json:"app_metadata"`
	UserMetadata         map[string]interface{}   `json:"user_metadata"`
	Role                 string                   `json:"role"` // Postgres role: "authenticated" or "anon"
	AAL                  string                   `json:"aal"`
	AMR                  []map[string]interface{} `json:"amr"`
	SessionID            string                   `json:"session_id"`
	IsAnonymous          bool                     `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}

// PortalRole reads the portal role from app_metadata.role.
// app_metadata is only writable with the service key, so users cannot
// promote themselves. Missing role means client; unknown values fail.
func (c *SupabaseClaims) PortalRole() (portal.Role, error) {
	raw, _ := c.AppMetadata["role"].(string)
	return portal.ParseRole(raw)
}

// Actor builds the portal actor for these claims.
func (c *SupabaseClaims) Actor() (portal.Actor, error) {
	role, err := c.PortalRole()
	if err != nil {
		return portal.Actor{}, err
	}
	return portal.Actor{ID: c.GetUserID(), Role: role}, nil
}
