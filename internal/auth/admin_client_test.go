package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "clientportal/internal/domain/models/portal"
)

// fakeAdminAPI mimics the user endpoints of the Supabase Admin API
type fakeAdminAPI struct {
	mu      sync.Mutex
	users   []UserResponse
	created []CreateUserRequest
}

func (f *fakeAdminAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("apikey") != "service-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/admin/users":
		_ = json.NewEncoder(w).Encode(listUsersResponse{Users: f.users})
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/admin/users":
		var req CreateUserRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.created = append(f.created, req)
		user := UserResponse{ID: "uid-" + req.Email, Email: req.Email}
		f.users = append(f.users, user)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(user)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestEnsureUser_CreatesOnceWithRole(t *testing.T) {
	api := &fakeAdminAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	client := NewAdminClient(srv.URL, "service-key")
	ctx := context.Background()
	user := PortalUser{Email: "admin@example.com", Password: "pw", Name: "Admin", Role: models.RoleAdmin}

	id, err := client.EnsureUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "uid-admin@example.com", id)

	again, err := client.EnsureUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	require.Len(t, api.created, 1)
	assert.Equal(t, "admin", api.created[0].AppMetadata["role"])
	assert.True(t, api.created[0].EmailConfirm)
}

func TestAdminClient_ErrorsCarryStatus(t *testing.T) {
	api := &fakeAdminAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	_, err := NewAdminClient(srv.URL, "wrong").EnsureUser(context.Background(), PortalUser{Email: "x@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestDeleteUserByEmail_MissingIsNoop(t *testing.T) {
	srv := httptest.NewServer(&fakeAdminAPI{})
	defer srv.Close()

	assert.NoError(t, NewAdminClient(srv.URL, "service-key").DeleteUserByEmail(context.Background(), "ghost@example.com"))
}

func TestEnsureUser_RejectsBadEmail(t *testing.T) {
	api := &fakeAdminAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	_, err := NewAdminClient(srv.URL, "service-key").EnsureUser(context.Background(), PortalUser{Email: "not-an-email"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email")
	assert.Empty(t, api.created)
}
