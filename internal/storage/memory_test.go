package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientportal/internal/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Write(ctx, "projects/a/1/plan.txt", strings.NewReader("hello"), 5, "text/plain"))

	ok, err := store.Exists(ctx, "projects/a/1/plan.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, info, err := store.Read(ctx, "projects/a/1/plan.txt")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "text/plain", info.ContentType)

	require.NoError(t, store.Delete(ctx, "projects/a/1/plan.txt"))
	ok, err = store.Exists(ctx, "projects/a/1/plan.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreMissingKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, _, err := store.Read(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = store.Delete(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStoreSizeMismatch(t *testing.T) {
	store := NewMemoryStore()
	err := store.Write(context.Background(), "k", strings.NewReader("abc"), 10, "")
	require.Error(t, err)

	ok, _ := store.Exists(context.Background(), "k")
	assert.False(t, ok)
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	assert.ErrorIs(t, store.Write(ctx, "k", strings.NewReader("x"), 1, ""), context.Canceled)
}

func TestMemoryStoreKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, k := range []string{"reports/b/1/x.pdf", "projects/a/2/y", "projects/a/1/x"} {
		require.NoError(t, store.Write(ctx, k, strings.NewReader(""), 0, ""))
	}
	assert.Equal(t, []string{"projects/a/1/x", "projects/a/2/y"}, store.Keys("projects/"))
}
