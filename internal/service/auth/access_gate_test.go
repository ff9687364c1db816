package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientportal/internal/domain"
	"clientportal/internal/domain/models/portal"
)

func TestAuthorize(t *testing.T) {
	gate := NewOwnerGate()
	report := &portal.Report{ID: "r1", OwnerID: "42"}
	folder := &portal.Folder{ID: "f1", OwnerID: "42"}

	tests := []struct {
		name     string
		actor    portal.Actor
		resource portal.Resource
		allowed  bool
	}{
		{"owner reads own report", portal.Actor{ID: "42", Role: portal.RoleClient}, report, true},
		{"other client denied", portal.Actor{ID: "43", Role: portal.RoleClient}, report, false},
		{"other client denied folder", portal.Actor{ID: "43", Role: portal.RoleClient}, folder, false},
		{"admin reads any", portal.Actor{ID: "1", Role: portal.RoleAdmin}, report, true},
		{"support reads any", portal.Actor{ID: "2", Role: portal.RoleSupport}, folder, true},
		{"client scope self", portal.Actor{ID: "42", Role: portal.RoleClient}, portal.ClientScope{OwnerID: "42"}, true},
		{"client scope other", portal.Actor{ID: "42", Role: portal.RoleClient}, portal.ClientScope{OwnerID: "43"}, false},
		{"anonymous denied", portal.Actor{Role: portal.RoleAdmin}, report, false},
		{"unknown role denied", portal.Actor{ID: "42", Role: portal.Role(99)}, report, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := gate.Authorize(tt.actor, tt.resource)
			assert.Equal(t, tt.allowed, d.Allowed)
			if tt.allowed {
				assert.NoError(t, d.Err())
			} else {
				assert.NotEmpty(t, d.Reason)
				assert.True(t, errors.Is(d.Err(), domain.ErrForbidden))
			}
		})
	}
}

func TestAuthorizeManage(t *testing.T) {
	gate := NewOwnerGate()
	file := &portal.File{ID: "file-1", OwnerID: "42"}

	assert.True(t, gate.AuthorizeManage(portal.Actor{ID: "1", Role: portal.RoleAdmin}, file).Allowed)
	assert.False(t, gate.AuthorizeManage(portal.Actor{ID: "42", Role: portal.RoleClient}, file).Allowed)
	assert.False(t, gate.AuthorizeManage(portal.Actor{ID: "2", Role: portal.RoleSupport}, file).Allowed)

	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, gate.AuthorizeManage(portal.Actor{ID: "42", Role: portal.RoleClient}, file).Err(), &forbidden)
	assert.Contains(t, forbidden.Message, "file-1")
}

// Client 42's report is visible to 42 and denied to 43, whatever the caller
// asks for.
func TestTenantIsolationAcrossResourceKinds(t *testing.T) {
	gate := NewOwnerGate()
	owner := portal.Actor{ID: "42", Role: portal.RoleClient}
	intruder := portal.Actor{ID: "43", Role: portal.RoleClient}

	resources := []portal.Resource{
		&portal.Report{ID: "r", OwnerID: "42"},
		&portal.File{ID: "f", OwnerID: "42"},
		&portal.Folder{ID: "d", OwnerID: "42"},
		portal.ClientScope{OwnerID: "42"},
	}
	for _, res := range resources {
		assert.True(t, gate.Authorize(owner, res).Allowed, res.ResourceType())
		assert.False(t, gate.Authorize(intruder, res).Allowed, res.ResourceType())
	}
}
