// Package cache holds the short-TTL response cache that fronts the
// aggregation orchestrator, with stale-serve fallback when a refresh
// fails.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Status reports how a GetOrFetch call was satisfied; it maps directly to
// the X-Cache response header.
type Status string

const (
	StatusHit   Status = "HIT"
	StatusMiss  Status = "MISS"
	StatusStale Status = "STALE"
)

type entry struct {
	value    any
	storedAt time.Time
}

// ResponseCache is a process-wide cache keyed by logical endpoint.
// Stores are whole-value replacements, so concurrent check-then-fetch
// races cost at most a duplicate producer run, never corrupt data.
type ResponseCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxEntries int
	now        func() time.Time
}

// NewResponseCache creates a cache bounded at maxEntries; once exceeded,
// the oldest quarter of entries is evicted. Keys are low-cardinality, so
// FIFO-ish eviction is enough.
func NewResponseCache(maxEntries int) *ResponseCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &ResponseCache{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// GetOrFetch returns the cached value when it is younger than ttl.
// Otherwise it invokes producer; on success the result replaces the
// entry, on failure an expired previous value is served marked STALE.
// Only when there is nothing to fall back on does the error propagate.
func (c *ResponseCache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, producer func(context.Context) (any, error)) (any, Status, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && c.now().Sub(e.storedAt) < ttl {
		v := e.value
		c.mu.Unlock()
		return v, StatusHit, nil
	}
	c.mu.Unlock()

	// The producer runs outside the lock: a lost race between two
	// concurrent misses is a harmless duplicate upstream fetch.
	v, err := producer(ctx)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if e, ok := c.entries[key]; ok {
			return e.value, StatusStale, nil
		}
		return nil, StatusMiss, err
	}

	c.mu.Lock()
	c.entries[key] = &entry{value: v, storedAt: c.now()}
	if len(c.entries) > c.maxEntries {
		c.evictOldest()
	}
	c.mu.Unlock()
	return v, StatusMiss, nil
}

// Peek returns the current entry regardless of age.
func (c *ResponseCache) Peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Len returns the number of stored entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest drops the oldest ~25% of entries. Caller holds the lock.
func (c *ResponseCache) evictOldest() {
	type aged struct {
		key      string
		storedAt time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, storedAt: e.storedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].storedAt.Before(all[j].storedAt) })

	drop := len(all) / 4
	if drop < 1 {
		drop = 1
	}
	for _, a := range all[:drop] {
		delete(c.entries, a.key)
	}
}
