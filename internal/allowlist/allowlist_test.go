package allowlist

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	pkgcache "DerivPulse/pkg/cache"
	"DerivPulse/pkg/logger"
)

type fakeRanking struct {
	symbols []string
	err     error
	calls   int
}

func (f *fakeRanking) TopSymbols(ctx context.Context, limit int) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.symbols) > limit {
		return f.symbols[:limit], nil
	}
	return f.symbols, nil
}

func manySymbols(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("SYM%d", i)
	}
	return out
}

func testLogger() *logger.Logger {
	l, _ := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	return l
}

func TestTopSymbolsRefreshAndCache(t *testing.T) {
	src := &fakeRanking{symbols: manySymbols(500)}
	c := New(src, testLogger(), 500, 100, 30*time.Minute)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	set := c.TopSymbols(context.Background())
	if len(set) != 500 || src.calls != 1 {
		t.Fatalf("len=%d calls=%d", len(set), src.calls)
	}

	// within TTL: served from cache
	now = now.Add(10 * time.Minute)
	_ = c.TopSymbols(context.Background())
	if src.calls != 1 {
		t.Fatalf("refreshed within TTL, calls=%d", src.calls)
	}

	// past TTL: refresh
	now = now.Add(25 * time.Minute)
	_ = c.TopSymbols(context.Background())
	if src.calls != 2 {
		t.Fatalf("no refresh past TTL, calls=%d", src.calls)
	}
}

func TestTopSymbolsKeepsPreviousOnFailure(t *testing.T) {
	src := &fakeRanking{symbols: manySymbols(500)}
	c := New(src, testLogger(), 500, 100, 30*time.Minute)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	first := c.TopSymbols(context.Background())
	if len(first) != 500 {
		t.Fatalf("initial load failed")
	}

	src.err = errors.New("ranking api down")
	now = now.Add(time.Hour)
	second := c.TopSymbols(context.Background())
	if len(second) != 500 {
		t.Fatalf("regressed to %d symbols on transient failure", len(second))
	}
}

func TestTopSymbolsFailOpenWithoutData(t *testing.T) {
	src := &fakeRanking{err: errors.New("no key")}
	c := New(src, testLogger(), 500, 100, 30*time.Minute)

	set := c.TopSymbols(context.Background())
	if len(set) != 0 {
		t.Fatalf("expected empty fail-open set, got %d", len(set))
	}
}

func TestWarmStoreRoundTrip(t *testing.T) {
	store := pkgcache.NewMemoryCache()
	defer store.Close()

	src := &fakeRanking{symbols: manySymbols(500)}
	first := New(src, testLogger(), 500, 100, 30*time.Minute, WithWarmStore(store))
	if got := first.TopSymbols(context.Background()); len(got) != 500 {
		t.Fatalf("initial load: %d", len(got))
	}

	// a fresh instance with a dead ranking source starts from the store
	second := New(&fakeRanking{err: errors.New("down")}, testLogger(), 500, 100, 30*time.Minute, WithWarmStore(store))
	if got := second.TopSymbols(context.Background()); len(got) != 500 {
		t.Fatalf("warm start: %d", len(got))
	}
}

func TestTopSymbolsRejectsTruncatedResponse(t *testing.T) {
	src := &fakeRanking{symbols: manySymbols(500)}
	c := New(src, testLogger(), 500, 100, 30*time.Minute)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.TopSymbols(context.Background())

	// a truncated page must not replace the good set
	src.symbols = manySymbols(7)
	now = now.Add(time.Hour)
	set := c.TopSymbols(context.Background())
	if len(set) != 500 {
		t.Fatalf("truncated response replaced good set: %d", len(set))
	}
}
