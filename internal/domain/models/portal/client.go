package portal

import "time"

// Client is a tenant of the portal. Folders, files and reports are scoped
// by owner_id = Client.ID.
type Client struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Email      string     `json:"email" db:"email"`
	Company    *string    `json:"company,omitempty" db:"company"`
	TaxID      *string    `json:"tax_id,omitempty" db:"tax_id"`
	ClientType *string    `json:"client_type,omitempty" db:"client_type"`
	Role       Role       `json:"role" db:"role"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// DisplayName prefers the company name when one is set.
func (c *Client) DisplayName() string {
	if c.Company != nil && *c.Company != "" {
		return *c.Company
	}
	return c.Name
}
