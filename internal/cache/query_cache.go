package cache

import (
	"sync"
	"time"

	"github.com/spec-kit/user-directory/internal/domain"
)

// TTL pairs the two lifetimes of a cached listing. An entry expires at
// whichever deadline passes first.
type TTL struct {
	Absolute time.Duration
	Sliding  time.Duration
}

type entry struct {
	value          domain.PagedResult
	absoluteExpiry time.Time
	slidingExpiry  time.Time
	sliding        time.Duration
}

func (e *entry) expired(now time.Time) bool {
	return !now.Before(e.absoluteExpiry) || !now.Before(e.slidingExpiry)
}

// Stats counts cache outcomes since construction.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// QueryCache memoizes listing results keyed by query shape.
type QueryCache struct {
	mu         sync.Mutex
	entries    map[domain.ShapeKey]*entry
	generation uint64
	stats      Stats
	now        func() time.Time
}

// NewQueryCache constructs an empty cache using the wall clock.
func NewQueryCache() *QueryCache {
	return &QueryCache{
		entries: make(map[domain.ShapeKey]*entry),
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (c *QueryCache) WithClock(now func() time.Time) *QueryCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get returns a copy of the cached result for shape. A hit extends the
// sliding deadline; an expired entry is evicted and reported as a miss.
func (c *QueryCache) Get(shape domain.QueryShape) (domain.PagedResult, bool) {
	key := shape.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return domain.PagedResult{}, false
	}
	now := c.now()
	if e.expired(now) {
		delete(c.entries, key)
		c.stats.Evictions++
		c.stats.Misses++
		return domain.PagedResult{}, false
	}
	e.slidingExpiry = now.Add(e.sliding)
	c.stats.Hits++
	return e.value.Clone(), true
}

// Put stores result for shape, replacing any previous entry.
func (c *QueryCache) Put(shape domain.QueryShape, result domain.PagedResult, ttl TTL) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(shape.Key(), result, ttl)
}

// PutIfCurrent stores result only if no invalidation happened since gen was
// read, so a listing computed before a mutation is never cached after it.
func (c *QueryCache) PutIfCurrent(gen uint64, shape domain.QueryShape, result domain.PagedResult, ttl TTL) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.store(shape.Key(), result, ttl)
	return true
}

func (c *QueryCache) store(key domain.ShapeKey, result domain.PagedResult, ttl TTL) {
	now := c.now()
	c.entries[key] = &entry{
		value:          result.Clone(),
		absoluteExpiry: now.Add(ttl.Absolute),
		slidingExpiry:  now.Add(ttl.Sliding),
		sliding:        ttl.Sliding,
	}
}

// Generation identifies the current invalidation epoch.
func (c *QueryCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// InvalidateAll drops every entry and starts a new generation.
func (c *QueryCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Evictions += uint64(len(c.entries))
	c.entries = make(map[domain.ShapeKey]*entry)
	c.generation++
}

// Prune removes expired entries and returns how many were dropped.
func (c *QueryCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.stats.Evictions += uint64(removed)
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit/miss/eviction counters.
func (c *QueryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
