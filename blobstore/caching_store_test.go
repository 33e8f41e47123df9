package blobstore

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/hupe1980/fire/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBlob struct {
	Blob
	mu    sync.Mutex
	reads int
}

func (c *countingBlob) ReadAt(p []byte, off int64) (int, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.Blob.ReadAt(p, off)
}

type countingStore struct {
	*MemoryStore
	blobs map[string]*countingBlob
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.MemoryStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	cb := &countingBlob{Blob: b}
	s.blobs[name] = cb
	return cb, nil
}

func TestCachingStore_ReadAt(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i % 251)
	}

	inner := &countingStore{MemoryStore: NewMemoryStore(), blobs: map[string]*countingBlob{}}
	inner.Put("test", data)

	c := cache.NewLRUBlockCache(1<<20, nil)
	store := NewCachingStore(inner, c, 256)

	ctx := context.Background()
	blob, err := store.Open(ctx, "test")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(1024), blob.Size())

	// Spans blocks 0 and 1.
	buf := make([]byte, 100)
	n, err := blob.ReadAt(buf, 200)
	require.NoError(t, err)
	require.Equal(t, 100, n)
	assert.Equal(t, data[200:300], buf)

	readsAfterFirst := inner.blobs["test"].reads
	assert.Equal(t, 1, readsAfterFirst, "contiguous missing blocks are fetched in one request")

	n, err = blob.ReadAt(buf, 210)
	require.NoError(t, err)
	require.Equal(t, 100, n)
	assert.Equal(t, data[210:310], buf)
	assert.Equal(t, readsAfterFirst, inner.blobs["test"].reads)

	// Tail read.
	buf = make([]byte, 64)
	n, err = blob.ReadAt(buf, 1000)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 24, n)
	assert.Equal(t, data[1000:], buf[:n])

	_, err = blob.ReadAt(buf, 1024)
	assert.ErrorIs(t, err, io.EOF)

	hits, misses := c.Stats()
	assert.Positive(t, hits)
	assert.Positive(t, misses)
}

func TestCachingStore_CreateInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	inner.Put("a", []byte("old-data"))

	c := cache.NewLRUBlockCache(1<<20, nil)
	store := NewCachingStore(inner, c, 4)

	b, err := store.Open(ctx, "a")
	require.NoError(t, err)
	buf := make([]byte, 3)
	_, err = b.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "old", string(buf))
	require.NoError(t, b.Close())

	w, err := store.Create(ctx, "a")
	require.NoError(t, err)
	_, err = w.Write([]byte("new-data"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	b, err = store.Open(ctx, "a")
	require.NoError(t, err)
	_, err = b.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "new", string(buf))
}

func TestCachingStore_CanceledContext(t *testing.T) {
	inner := NewMemoryStore()
	inner.Put("a", []byte("abc"))
	store := NewCachingStore(inner, cache.NewLRUBlockCache(1<<10, nil), 0)

	ctx, cancel := context.WithCancel(context.Background())
	b, err := store.Open(ctx, "a")
	require.NoError(t, err)
	cancel()

	_, err = b.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, context.Canceled)
}
