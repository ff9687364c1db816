package portal

import (
	"time"
)

// File is a project file uploaded into a client's folder tree.
type File struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	FolderID    *string   `json:"folder_id" db:"folder_id"` // NULL = root level
	FileName    string    `json:"file_name" db:"file_name"`
	StorageKey  string    `json:"-" db:"storage_key"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	ContentType string    `json:"content_type" db:"content_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
