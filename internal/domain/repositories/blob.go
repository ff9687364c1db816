package repositories

import (
	"context"
	"io"
)

// BlobInfo describes a stored object.
type BlobInfo struct {
	Size        int64
	ContentType string
}

// BlobStore is the private object store holding file and report bytes.
// Keys are namespaced by owner. Read and Delete wrap domain.ErrNotFound
// when the key does not exist.
type BlobStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Read(ctx context.Context, key string) (io.ReadCloser, *BlobInfo, error)
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}
