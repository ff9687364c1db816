package portal

import (
	"time"
)

// Report is a monthly service report. Reports have no folder and are
// immutable once uploaded.
type Report struct {
	ID         string    `json:"id" db:"id"`
	OwnerID    string    `json:"owner_id" db:"owner_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	StorageKey string    `json:"-" db:"storage_key"`
	Month      *string   `json:"month,omitempty" db:"month"`     // YYYY-MM
	Service    *string   `json:"service,omitempty" db:"service"` // service category name
	SizeBytes  int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Joined from the owner row for admin listings, not stored on the report
	OwnerName    string  `json:"owner_name,omitempty"`
	OwnerCompany *string `json:"owner_company,omitempty"`
}
