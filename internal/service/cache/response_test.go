package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestCache(max int) (*ResponseCache, *time.Time) {
	c := NewResponseCache(max)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestGetOrFetchTimeline(t *testing.T) {
	c, now := newTestCache(16)
	ctx := context.Background()
	ttl := 30 * time.Second

	calls := 0
	ok := func(context.Context) (any, error) {
		calls++
		return fmt.Sprintf("cycle-%d", calls), nil
	}
	failing := func(context.Context) (any, error) {
		calls++
		return nil, errors.New("all sources down")
	}

	// t=0: miss triggers the producer
	v, st, err := c.GetOrFetch(ctx, "funding", ttl, ok)
	if err != nil || st != StatusMiss || v != "cycle-1" {
		t.Fatalf("t=0: v=%v status=%s err=%v", v, st, err)
	}

	// t=10s: within TTL, producer must not run
	*now = now.Add(10 * time.Second)
	v, st, err = c.GetOrFetch(ctx, "funding", ttl, failing)
	if err != nil || st != StatusHit || v != "cycle-1" {
		t.Fatalf("t=10s: v=%v status=%s err=%v", v, st, err)
	}
	if calls != 1 {
		t.Fatalf("producer ran on a fresh hit")
	}

	// t=35s: expired, producer fails, previous value served STALE
	*now = now.Add(25 * time.Second)
	v, st, err = c.GetOrFetch(ctx, "funding", ttl, failing)
	if err != nil || st != StatusStale || v != "cycle-1" {
		t.Fatalf("t=35s: v=%v status=%s err=%v", v, st, err)
	}

	// recovery: next successful producer replaces the entry
	v, st, err = c.GetOrFetch(ctx, "funding", ttl, ok)
	if err != nil || st != StatusMiss || v != "cycle-3" {
		t.Fatalf("recovery: v=%v status=%s err=%v", v, st, err)
	}
}

func TestGetOrFetchErrorWithoutFallback(t *testing.T) {
	c, _ := newTestCache(16)
	boom := errors.New("boom")
	_, st, err := c.GetOrFetch(context.Background(), "k", time.Second, func(context.Context) (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) || st != StatusMiss {
		t.Fatalf("status=%s err=%v, want MISS with the producer error", st, err)
	}
}

func TestEvictionDropsOldestQuarter(t *testing.T) {
	c, now := newTestCache(8)
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		key := fmt.Sprintf("k%d", i)
		*now = now.Add(time.Second)
		_, _, err := c.GetOrFetch(ctx, key, time.Hour, func(context.Context) (any, error) {
			return i, nil
		})
		if err != nil {
			t.Fatalf("store %s: %v", key, err)
		}
	}

	// 9 entries with max 8: the oldest quarter (2) must be gone
	if got := c.Len(); got != 7 {
		t.Fatalf("len = %d after eviction, want 7", got)
	}
	if _, ok := c.Peek("k0"); ok {
		t.Fatalf("oldest entry survived eviction")
	}
	if _, ok := c.Peek("k8"); !ok {
		t.Fatalf("newest entry evicted")
	}
}
