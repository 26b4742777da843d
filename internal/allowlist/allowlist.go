// Package allowlist maintains the top-N-by-market-cap symbol set used to
// gate noisy and illiquid listings out of aggregated responses. The gate
// fails open: when no ranking data can be had, nothing is filtered.
package allowlist

import (
	"context"
	"sync"
	"time"

	"DerivPulse/internal/domain/repository"
	pkgcache "DerivPulse/pkg/cache"
	"DerivPulse/pkg/logger"
)

var warmStartKey = pkgcache.GenerateKey("allowlist", "top-symbols")

// Cache is the time-cached allowlist. Refreshes are lazy: the first
// caller past the TTL pays for the ranking call, and a refresh failure
// keeps serving the previous set rather than regressing to empty.
type Cache struct {
	source repository.RankingSource
	store  pkgcache.Service // optional warm-start store, may be nil
	log    *logger.Logger

	size    int
	minSize int
	ttl     time.Duration
	now     func() time.Time

	mu        sync.Mutex
	symbols   map[string]struct{}
	fetchedAt time.Time
}

// Option configures Cache.
type Option func(*Cache)

// WithWarmStore persists the set across restarts via a cache service.
func WithWarmStore(store pkgcache.Service) Option {
	return func(c *Cache) { c.store = store }
}

// New creates the allowlist cache. size is the N of top-N; minSize guards
// against truncated ranking responses replacing a good set.
func New(source repository.RankingSource, log *logger.Logger, size, minSize int, ttl time.Duration, opts ...Option) *Cache {
	if size <= 0 {
		size = 500
	}
	if minSize <= 0 {
		minSize = size / 5
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c := &Cache{
		source:  source,
		log:     log,
		size:    size,
		minSize: minSize,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TopSymbols returns the current allowlist set. An empty set means the
// gate is disabled, never "block everything".
func (c *Cache) TopSymbols(ctx context.Context) map[string]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.symbols != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.symbols
	}

	if c.symbols == nil {
		c.warmStart(ctx)
		if c.symbols != nil && c.now().Sub(c.fetchedAt) < c.ttl {
			return c.symbols
		}
	}

	fresh, err := c.source.TopSymbols(ctx, c.size)
	if err != nil {
		c.log.Warn("allowlist refresh failed, keeping previous set",
			logger.Int("previous", len(c.symbols)),
			logger.Error(err))
		if c.symbols != nil {
			return c.symbols
		}
		return map[string]struct{}{}
	}

	if len(fresh) < c.minSize {
		c.log.Warn("allowlist response implausibly small, keeping previous set",
			logger.Int("got", len(fresh)),
			logger.Int("min", c.minSize))
		if c.symbols != nil {
			return c.symbols
		}
		return map[string]struct{}{}
	}

	set := make(map[string]struct{}, len(fresh))
	for _, s := range fresh {
		set[s] = struct{}{}
	}
	c.symbols = set
	c.fetchedAt = c.now()
	c.persist(ctx, fresh)

	c.log.Info("allowlist refreshed", logger.Int("symbols", len(set)))
	return c.symbols
}

// warmStart loads the last persisted set so restarts do not hammer the
// ranking API. Caller holds the lock.
func (c *Cache) warmStart(ctx context.Context) {
	if c.store == nil {
		return
	}
	var symbols []string
	if err := pkgcache.GetJSON(ctx, c.store, warmStartKey, &symbols); err != nil {
		return
	}
	if len(symbols) < c.minSize {
		return
	}
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	c.symbols = set
	c.fetchedAt = c.now()
}

func (c *Cache) persist(ctx context.Context, symbols []string) {
	if c.store == nil {
		return
	}
	if err := pkgcache.SetJSON(ctx, c.store, warmStartKey, symbols, c.ttl); err != nil {
		c.log.Debug("allowlist warm store write failed", logger.Error(err))
	}
}
