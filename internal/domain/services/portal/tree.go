package portal

import (
	"context"
	"io"

	"clientportal/internal/domain/models/portal"
)

// TreeService manages each client's folder/file forest.
// Every call takes the acting user explicitly.
type TreeService interface {
	// ListChildren returns one level of ownerID's tree (folderID nil = root)
	ListChildren(ctx context.Context, actor portal.Actor, ownerID string, folderID *string) (*portal.FolderContents, error)

	// Breadcrumbs returns the path from the root down to folderID; empty for nil
	Breadcrumbs(ctx context.Context, actor portal.Actor, folderID *string) ([]portal.Crumb, error)

	CreateFolder(ctx context.Context, actor portal.Actor, req *CreateFolderRequest) (*portal.Folder, error)
	RenameFolder(ctx context.Context, actor portal.Actor, id, name string) (*portal.Folder, error)
	RenameFile(ctx context.Context, actor portal.Actor, id, name string) (*portal.File, error)

	// UploadFiles stores files in order and stops at the first name collision.
	// Files stored before the collision are kept and returned with the error.
	UploadFiles(ctx context.Context, actor portal.Actor, req *UploadFilesRequest) ([]portal.File, error)

	DeleteFolder(ctx context.Context, actor portal.Actor, id string) error
	DeleteFile(ctx context.Context, actor portal.Actor, id string) error

	// DeleteBatch checks every folder is empty before deleting anything
	DeleteBatch(ctx context.Context, actor portal.Actor, items []portal.BatchItem) (*BatchDeleteResult, error)

	// OpenFile streams a file's bytes. The caller must close the reader.
	OpenFile(ctx context.Context, actor portal.Actor, id string, mode OpenMode) (*portal.File, io.ReadCloser, error)
}

// OpenMode selects how a blob is delivered.
type OpenMode int

const (
	// OpenDownload serves the blob as an attachment.
	OpenDownload OpenMode = iota
	// OpenPreview serves the blob inline and requires it to exist.
	OpenPreview
)

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	OwnerID  string  `json:"-"`
	ParentID *string `json:"parent_id,omitempty"` // null for root
	Name     string  `json:"name"`
}

// RenameRequest is the body of a folder or file rename.
type RenameRequest struct {
	Name string `json:"name"`
}

// UploadFilesRequest uploads one or more files into a folder.
type UploadFilesRequest struct {
	OwnerID  string
	FolderID *string
	Files    []portal.UploadedFile
}

// BatchDeleteRequest is the body of a multi-select delete.
type BatchDeleteRequest struct {
	Items []portal.BatchItem `json:"items"`
}

// BatchDeleteResult reports what a batch delete removed.
type BatchDeleteResult struct {
	DeletedFolders int `json:"deleted_folders"`
	DeletedFiles   int `json:"deleted_files"`
	// BlobFailures counts file blobs that could not be removed; their rows were still deleted
	BlobFailures int `json:"blob_failures"`
}
