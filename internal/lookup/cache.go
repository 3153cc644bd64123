package lookup

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Entry is one memoized lookup. Found is false for remembered misses.
type Entry struct {
	Found    bool     `json:"found"`
	Author   string   `json:"author,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
}

// Cache memoizes lookups by key. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(key string) (Entry, bool)
	Set(key string, e Entry, ttl time.Duration)
	Len() int
	Clear() error
}

// MemoryCache is a size-bounded in-process cache with per-entry expiry.
// Admission and eviction follow ristretto's TinyLFU policy, so a full cache
// keeps frequently used keys rather than strictly the most recent ones.
type MemoryCache struct {
	c *ristretto.Cache[string, Entry]
}

// NewMemoryCache creates a cache holding at most size entries.
func NewMemoryCache(size int) (*MemoryCache, error) {
	size = max(size, 1)
	c, err := ristretto.NewCache(&ristretto.Config[string, Entry]{
		NumCounters:        int64(size) * 10,
		MaxCost:            int64(size),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &MemoryCache{c: c}, nil
}

// Get returns the entry for key if present and unexpired.
func (c *MemoryCache) Get(key string) (Entry, bool) {
	return c.c.Get(key)
}

// Set stores e under key. A non-positive ttl never expires. The write is
// visible to Get once Set returns, unless the admission policy dropped it.
func (c *MemoryCache) Set(key string, e Entry, ttl time.Duration) {
	c.c.SetWithTTL(key, e, 1, max(ttl, 0))
	c.c.Wait()
}

// Len returns the number of stored entries. Expired entries count until
// the background sweep removes them.
func (c *MemoryCache) Len() int {
	return int(c.c.MaxCost() - c.c.RemainingCost())
}

// Clear drops every entry.
func (c *MemoryCache) Clear() error {
	c.c.Clear()
	return nil
}

// Close stops the cache's background goroutines.
func (c *MemoryCache) Close() error {
	c.c.Close()
	return nil
}
