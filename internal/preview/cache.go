package preview

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 100

type cacheKey struct {
	path  string
	mtime int64
}

// Cache memoizes expensive parse results keyed by (path, mtime), so a
// changed file misses automatically. Eviction is least-recently-used and
// bounded. Callers complete a Get before issuing the corresponding Put;
// the cache never hands out a reference that a later Put invalidates.
type Cache struct {
	lru *lru.Cache[cacheKey, string]
}

func NewCache(size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, _ := lru.New[cacheKey, string](size)
	return &Cache{lru: c}
}

// Get returns the cached content for path at mtime, if present.
func (c *Cache) Get(path string, mtime time.Time) (string, bool) {
	return c.lru.Get(cacheKey{path: path, mtime: mtime.UnixNano()})
}

// Put stores content for path at mtime.
func (c *Cache) Put(path string, mtime time.Time, content string) {
	c.lru.Add(cacheKey{path: path, mtime: mtime.UnixNano()}, content)
}

// Len reports the number of cached previews.
func (c *Cache) Len() int { return c.lru.Len() }
