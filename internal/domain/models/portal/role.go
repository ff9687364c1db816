package portal

import (
	"fmt"
	"strings"
)

// Role is the closed set of portal roles.
type Role int

const (
	// RoleClient is a tenant: reads its own folders, files and reports.
	RoleClient Role = iota
	// RoleAdmin manages every client's files and reports.
	RoleAdmin
	// RoleSupport is a read-only operator across all tenants.
	RoleSupport
)

// ParseRole maps a stored or token role string to a Role.
// An empty string is treated as a client, matching the default for new users.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "client", "cliente":
		return RoleClient, nil
	case "admin":
		return RoleAdmin, nil
	case "support", "super-admin":
		return RoleSupport, nil
	default:
		return RoleClient, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleAdmin:
		return "admin"
	case RoleSupport:
		return "support"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// MarshalText implements encoding.TextMarshaler so roles serialize as strings.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
