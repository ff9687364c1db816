package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"clientportal/internal/domain"
	"clientportal/internal/domain/repositories"
)

type memoryBlob struct {
	data        []byte
	contentType string
}

// MemoryStore implements BlobStore in process memory. Used for tests and
// the memory storage driver; contents are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob)}
}

var _ repositories.BlobStore = (*MemoryStore)(nil)

func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[key]
	return ok, nil
}

// Read returns a reader over a copy of the blob.
func (s *MemoryStore) Read(ctx context.Context, key string) (io.ReadCloser, *repositories.BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return nil, nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
	}
	data := bytes.Clone(blob.data)
	return io.NopCloser(bytes.NewReader(data)), &repositories.BlobInfo{
		Size:        int64(len(data)),
		ContentType: blob.contentType,
	}, nil
}

// Write stores r under key, replacing any previous blob. A size >= 0 must
// match the number of bytes read.
func (s *MemoryStore) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read blob: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("blob %s: declared size %d, read %d bytes", key, size, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = memoryBlob{data: data, contentType: contentType}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
	}
	delete(s.blobs, key)
	return nil
}

// Keys lists stored keys with the given prefix, sorted.
func (s *MemoryStore) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
