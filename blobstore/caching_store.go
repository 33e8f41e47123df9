package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/fire/internal/cache"
	"golang.org/x/sync/errgroup"
)

// DefaultCacheBlockSize is the block size used when none is given.
const DefaultCacheBlockSize = 64 << 10

// CachingStore wraps a BlobStore and adds block-level read caching.
// Blobs are immutable once committed, so writes pass straight through and
// only invalidate blocks of the name being replaced.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to DefaultCacheBlockSize if <= 0.
func NewCachingStore(inner BlobStore, c cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultCacheBlockSize
	}
	return &CachingStore{
		inner:     inner,
		cache:     c,
		blockSize: blockSize,
	}
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		ctx:       ctx,
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	s.invalidate(name)
	return s.inner.Create(ctx, name)
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(key cache.CacheKey) bool {
		return key.Path == name
	})
}

// CachingBlob wraps a Blob and uses the block cache for reads.
type CachingBlob struct {
	ctx       context.Context
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off >= b.Size() {
		return 0, io.EOF
	}
	if err := b.ctx.Err(); err != nil {
		return 0, err
	}

	startBlock := off / b.blockSize
	endBlock := (off + int64(len(p)) - 1) / b.blockSize

	if err := b.fillCache(startBlock, endBlock); err != nil {
		return 0, err
	}

	totalRead := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize

		intersectStart := max(blkStart, off)
		intersectEnd := min(blkStart+b.blockSize, off+int64(len(p)))
		if intersectEnd <= intersectStart {
			continue
		}

		blockData, err := b.fetchBlock(blk)
		if err != nil {
			return totalRead, err
		}

		srcOffset := intersectStart - blkStart
		if srcOffset >= int64(len(blockData)) {
			break
		}
		dstOffset := intersectStart - off
		copySize := min(intersectEnd-intersectStart, int64(len(blockData))-srcOffset)

		totalRead += copy(p[dstOffset:dstOffset+copySize], blockData[srcOffset:])
	}

	if totalRead < len(p) {
		return totalRead, io.EOF
	}
	return totalRead, nil
}

func (b *CachingBlob) key(blk int64) cache.CacheKey {
	return cache.CacheKey{Path: b.name, Block: uint64(blk)}
}

// fillCache loads the blocks in the given range, fetching contiguous runs
// of missing blocks in single backend requests.
func (b *CachingBlob) fillCache(startBlock, endBlock int64) error {
	type run struct{ start, count int64 }
	var missing []run

	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(b.ctx, b.key(blk)); ok {
			continue
		}
		if n := len(missing); n > 0 && missing[n-1].start+missing[n-1].count == blk {
			missing[n-1].count++
			continue
		}
		missing = append(missing, run{start: blk, count: 1})
	}

	g, ctx := errgroup.WithContext(b.ctx)
	g.SetLimit(16)

	for _, r := range missing {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			byteStart := r.start * b.blockSize
			byteSize := min(r.count*b.blockSize, b.Size()-byteStart)
			if byteSize <= 0 {
				return nil
			}

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			valid := buf[:n]

			for i := int64(0); i < r.count; i++ {
				lo := i * b.blockSize
				if lo >= int64(len(valid)) {
					break
				}
				hi := min(lo+b.blockSize, int64(len(valid)))
				// Copy so a single block does not pin the whole run buffer.
				b.cache.Set(b.ctx, b.key(r.start+i), append([]byte(nil), valid[lo:hi]...))
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *CachingBlob) fetchBlock(blk int64) ([]byte, error) {
	if data, ok := b.cache.Get(b.ctx, b.key(blk)); ok {
		return data, nil
	}

	// Not cached (evicted or rejected by the cache): read directly.
	offset := blk * b.blockSize
	size := min(b.blockSize, b.Size()-offset)
	if size <= 0 {
		return nil, nil
	}
	buf := make([]byte, size)
	n, err := b.inner.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

var _ BlobStore = (*CachingStore)(nil)
