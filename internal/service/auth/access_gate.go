package auth

import (
	"clientportal/internal/domain/models/portal"
	"clientportal/internal/domain/services"
)

// OwnerGate implements AccessGate from the actor's role and the resource's
// owner id alone. It never touches storage: callers load the row first and
// hand it over, so the check is the same for lists, previews and downloads.
type OwnerGate struct{}

// NewOwnerGate creates the ownership-based access gate
func NewOwnerGate() *OwnerGate {
	return &OwnerGate{}
}

var _ services.AccessGate = (*OwnerGate)(nil)

// Authorize decides read access.
//   - Admin: every resource.
//   - Support: every resource, read only.
//   - Client: only resources it owns.
func (g *OwnerGate) Authorize(actor portal.Actor, resource portal.Resource) services.Decision {
	if actor.ID == "" {
		return services.Deny("anonymous actor")
	}
	switch actor.Role {
	case portal.RoleAdmin, portal.RoleSupport:
		return services.Allow()
	case portal.RoleClient:
		return ownerOnly(actor, resource)
	default:
		return services.Deny("unknown role %s", actor.Role)
	}
}

// AuthorizeManage decides write access. Only admins mutate trees and reports.
func (g *OwnerGate) AuthorizeManage(actor portal.Actor, resource portal.Resource) services.Decision {
	if actor.ID == "" {
		return services.Deny("anonymous actor")
	}
	switch actor.Role {
	case portal.RoleAdmin:
		return services.Allow()
	case portal.RoleSupport, portal.RoleClient:
		return services.Deny("role %s cannot modify %s %s", actor.Role, resource.ResourceType(), resource.ResourceID())
	default:
		return services.Deny("unknown role %s", actor.Role)
	}
}

func ownerOnly(actor portal.Actor, resource portal.Resource) services.Decision {
	if resource.ResourceOwnerID() != actor.ID {
		return services.Deny("access denied to %s %s", resource.ResourceType(), resource.ResourceID())
	}
	return services.Allow()
}
