package services

import (
	"fmt"

	"clientportal/internal/domain"
	"clientportal/internal/domain/models/portal"
)

// Decision is the outcome of an access check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny builds a negative decision with a reason suitable for logs.
func Deny(format string, args ...any) Decision {
	return Decision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// Err converts a denial into a *domain.ForbiddenError; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &domain.ForbiddenError{Message: d.Reason}
}

// AccessGate decides whether an actor may act on a resource.
// The only inputs are the actor's id and role and the resource's owner id.
// Services call it on every read and mutation, not only on lists.
type AccessGate interface {
	// Authorize decides read access (list, preview, download)
	Authorize(actor portal.Actor, resource portal.Resource) Decision

	// AuthorizeManage decides write access (create, rename, upload, delete)
	AuthorizeManage(actor portal.Actor, resource portal.Resource) Decision
}
