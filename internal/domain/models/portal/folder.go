package portal

import (
	"time"
)

type Folder struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ParentID  *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot returns true if the folder sits at the top of its owner's forest.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
