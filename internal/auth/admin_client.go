package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	models "clientportal/internal/domain/models/portal"
)

// AdminClient calls the Supabase Admin API. It is used by the seed command
// to provision portal users, never on the request path.
type AdminClient struct {
	supabaseURL string
	serviceKey  string
	httpClient  *http.Client
}

// NewAdminClient creates a new Supabase Admin API client.
// Requires the service role key (SUPABASE_KEY) for elevated permissions.
func NewAdminClient(supabaseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		supabaseURL: supabaseURL,
		serviceKey:  serviceKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateUserRequest is the payload for creating a new user
type CreateUserRequest struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// UserResponse is a user as returned by the Admin API
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type listUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// PortalUser describes a user to provision
type PortalUser struct {
	Email    string
	Password string
	Name     string
	Role     models.Role
}

// EnsureUser returns the id of the user with this email, creating it
// (confirmed, with the portal role in app_metadata) when absent.
func (c *AdminClient) EnsureUser(ctx context.Context, u PortalUser) (string, error) {
	if err := validation.Validate(u.Email, validation.Required, is.EmailFormat); err != nil {
		return "", fmt.Errorf("invalid email %q: %w", u.Email, err)
	}

	id, err := c.findUserIDByEmail(ctx, u.Email)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	payload := CreateUserRequest{
		Email:        u.Email,
		Password:     u.Password,
		EmailConfirm: true,
		AppMetadata:  map[string]interface{}{"role": u.Role.String()},
		UserMetadata: map[string]interface{}{"name": u.Name},
	}

	var created UserResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/admin/users", payload, &created, http.StatusOK, http.StatusCreated); err != nil {
		return "", fmt.Errorf("create user %s: %w", u.Email, err)
	}
	return created.ID, nil
}

// DeleteUserByEmail deletes a user. A missing user is not an error.
func (c *AdminClient) DeleteUserByEmail(ctx context.Context, email string) error {
	id, err := c.findUserIDByEmail(ctx, email)
	if err != nil || id == "" {
		return err
	}
	if err := c.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+id, nil, nil, http.StatusOK, http.StatusNoContent); err != nil {
		return fmt.Errorf("delete user %s: %w", email, err)
	}
	return nil
}

// findUserIDByEmail returns "" when no user has this email
func (c *AdminClient) findUserIDByEmail(ctx context.Context, email string) (string, error) {
	var list listUsersResponse
	if err := c.do(ctx, http.MethodGet, "/auth/v1/admin/users?per_page=1000", nil, &list, http.StatusOK); err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}
	for _, user := range list.Users {
		if user.Email == email {
			return user.ID, nil
		}
	}
	return "", nil
}

func (c *AdminClient) do(ctx context.Context, method, path string, body, dest interface{}, okStatus ...int) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.supabaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	accepted := false
	for _, s := range okStatus {
		if resp.StatusCode == s {
			accepted = true
		}
	}
	if !accepted {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	if dest != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
