package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/fire/internal/resource"
)

// LRUBlockCache keeps the most recently read blocks up to a byte limit.
type LRUBlockCache struct {
	mu     sync.Mutex
	limit  int64
	used   int64
	blocks map[CacheKey]*list.Element
	order  *list.List // front is most recent
	rc     *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type block struct {
	key  CacheKey
	data []byte
}

// NewLRUBlockCache creates a cache holding at most limit bytes. If rc is
// non-nil every cached byte is charged against its memory budget.
func NewLRUBlockCache(limit int64, rc *resource.Controller) *LRUBlockCache {
	return &LRUBlockCache{
		limit:  limit,
		blocks: make(map[CacheKey]*list.Element),
		order:  list.New(),
		rc:     rc,
	}
}

func (c *LRUBlockCache) Get(_ context.Context, key CacheKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.blocks[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.order.MoveToFront(el)
	return el.Value.(*block).data, true
}

// Set stores b under key. Blocks larger than the limit, or blocks the
// resource controller refuses to account for, are dropped silently.
func (c *LRUBlockCache) Set(_ context.Context, key CacheKey, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.blocks[key]; ok {
		c.evict(el)
	}

	n := int64(len(b))
	if n > c.limit {
		return
	}
	for c.used+n > c.limit {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.evict(oldest)
	}
	if !c.rc.TryAcquireMemory(n) {
		return
	}

	c.blocks[key] = c.order.PushFront(&block{key: key, data: b})
	c.used += n
}

func (c *LRUBlockCache) Invalidate(match func(key CacheKey) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if match(el.Value.(*block).key) {
			c.evict(el)
		}
		el = next
	}
}

// DropBlob removes every cached block of the named blob.
func (c *LRUBlockCache) DropBlob(path string) {
	c.Invalidate(func(k CacheKey) bool { return k.Path == path })
}

// Close empties the cache and returns its memory to the controller.
func (c *LRUBlockCache) Close() error {
	c.Invalidate(func(CacheKey) bool { return true })
	return nil
}

func (c *LRUBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the number of cached bytes.
func (c *LRUBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Len returns the number of cached blocks.
func (c *LRUBlockCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRUBlockCache) evict(el *list.Element) {
	b := c.order.Remove(el).(*block)
	delete(c.blocks, b.key)
	n := int64(len(b.data))
	c.used -= n
	c.rc.ReleaseMemory(n)
}

var _ BlockCache = (*LRUBlockCache)(nil)
