package portal

import (
	"fmt"
	"io"
)

// ItemType distinguishes folders from files in batch operations.
type ItemType string

const (
	ItemTypeFolder ItemType = "folder"
	ItemTypeFile   ItemType = "file"
)

// BatchItem is one entry in a multi-select delete.
type BatchItem struct {
	Type ItemType `json:"type"`
	ID   string   `json:"id"`
}

// Validate checks the item type is known and the id is set.
func (b BatchItem) Validate() error {
	switch b.Type {
	case ItemTypeFolder, ItemTypeFile:
	default:
		return fmt.Errorf("invalid item type %q (supported: folder, file)", b.Type)
	}
	if b.ID == "" {
		return fmt.Errorf("item id is required")
	}
	return nil
}

// Crumb is one step of a breadcrumb trail.
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FolderContents is the view of a single level of a client's tree.
// Folders come before files, each sorted by name ascending.
type FolderContents struct {
	Folder      *Folder  `json:"folder"` // nil at root level
	Breadcrumbs []Crumb  `json:"breadcrumbs"`
	Folders     []Folder `json:"folders"`
	Files       []File   `json:"files"`
}

// UploadedFile is one file of an upload batch. Size is the declared size
// in bytes; Content must yield exactly that many bytes.
type UploadedFile struct {
	Name    string
	Size    int64
	Content io.Reader
}
