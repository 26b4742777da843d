package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"DerivPulse/internal/aggregate"
	"DerivPulse/internal/allowlist"
	"DerivPulse/internal/domain/models"
	svccache "DerivPulse/internal/service/cache"
	"DerivPulse/internal/source"
	"DerivPulse/pkg/logger"
)

type fakeAdapter struct {
	name     string
	records  []models.NormalizedRecord
	err      error
	calls    int
	ctxAware bool
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context, kind models.Kind) ([]models.NormalizedRecord, error) {
	f.calls++
	if f.ctxAware {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return f.records, f.err
}

type fakeRanking struct {
	symbols []string
}

func (f *fakeRanking) TopSymbols(ctx context.Context, limit int) ([]string, error) {
	return f.symbols, nil
}

func testLogger() *logger.Logger {
	l, _ := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	return l
}

func newService(t *testing.T, adapters []*fakeAdapter, opts ...Option) *MarketService {
	t.Helper()
	ttl := TTLConfig{Funding: 30 * time.Second, OpenInterest: time.Minute, Tickers: 15 * time.Second}
	return newServiceWithTTL(t, adapters, ttl, opts...)
}

func newServiceWithTTL(t *testing.T, adapters []*fakeAdapter, ttl TTLConfig, opts ...Option) *MarketService {
	t.Helper()
	reg := source.NewRegistry()
	for _, a := range adapters {
		reg.Register(a)
	}
	orch := aggregate.New(reg, nil, testLogger())
	return NewMarketService(orch, svccache.NewResponseCache(16), nil, testLogger(), ttl, opts...)
}

func TestGetMarketsFiltersAndMeta(t *testing.T) {
	a := &fakeAdapter{name: "binance", records: []models.NormalizedRecord{
		{Symbol: "BTC", Exchange: "binance", AssetClass: models.AssetCrypto, FundingRate8h: 0.0001},
		{Symbol: "ETH", Exchange: "binance", AssetClass: models.AssetCrypto, FundingRate8h: 0.0002},
	}}
	b := &fakeAdapter{name: "gateio", records: []models.NormalizedRecord{
		{Symbol: "AAPL", Exchange: "gateio", AssetClass: models.AssetStocks, FundingRate8h: 0.0003},
	}}
	c := &fakeAdapter{name: "bybit", err: errors.New("timeout")}
	svc := newService(t, []*fakeAdapter{a, b, c})

	resp, status, err := svc.GetMarkets(context.Background(), models.KindFunding, &models.MarketsQuery{AssetClass: "all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != svccache.StatusMiss {
		t.Fatalf("first call status = %s, want MISS", status)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("data = %d records, want 3", len(resp.Data))
	}
	if resp.Meta.TotalExchanges != 3 || resp.Meta.ActiveExchanges != 2 || resp.Meta.TotalEntries != 3 {
		t.Fatalf("meta = %+v", resp.Meta)
	}

	// symbol filter
	resp, _, _ = svc.GetMarkets(context.Background(), models.KindFunding, &models.MarketsQuery{Symbol: "btc", AssetClass: "all"})
	if len(resp.Data) != 1 || resp.Data[0].Symbol != "BTC" {
		t.Fatalf("symbol filter: %+v", resp.Data)
	}

	// assetClass filter
	resp, _, _ = svc.GetMarkets(context.Background(), models.KindFunding, &models.MarketsQuery{AssetClass: "stocks"})
	if len(resp.Data) != 1 || resp.Data[0].Symbol != "AAPL" {
		t.Fatalf("assetClass filter: %+v", resp.Data)
	}
	if resp.Meta.TotalEntries != 1 {
		t.Fatalf("totalEntries = %d after filter, want 1", resp.Meta.TotalEntries)
	}

	// limit
	resp, _, _ = svc.GetMarkets(context.Background(), models.KindFunding, &models.MarketsQuery{AssetClass: "all", Limit: 2})
	if len(resp.Data) != 2 {
		t.Fatalf("limit: got %d records", len(resp.Data))
	}
}

func TestGetMarketsCachesCycle(t *testing.T) {
	a := &fakeAdapter{name: "binance", records: []models.NormalizedRecord{
		{Symbol: "BTC", Exchange: "binance", AssetClass: models.AssetCrypto},
	}}
	svc := newService(t, []*fakeAdapter{a})

	_, status, _ := svc.GetMarkets(context.Background(), models.KindTickers, &models.MarketsQuery{AssetClass: "all"})
	if status != svccache.StatusMiss {
		t.Fatalf("first status = %s", status)
	}
	// different filters share the cached cycle
	_, status, _ = svc.GetMarkets(context.Background(), models.KindTickers, &models.MarketsQuery{Symbol: "BTC", AssetClass: "all"})
	if status != svccache.StatusHit {
		t.Fatalf("second status = %s, want HIT", status)
	}
	if a.calls != 1 {
		t.Fatalf("adapter called %d times, want 1", a.calls)
	}
}

func TestGetMarketsTotalFailureDegrades(t *testing.T) {
	a := &fakeAdapter{name: "binance", err: errors.New("down")}
	b := &fakeAdapter{name: "bybit", err: errors.New("down")}
	svc := newService(t, []*fakeAdapter{a, b})

	resp, _, err := svc.GetMarkets(context.Background(), models.KindFunding, &models.MarketsQuery{AssetClass: "all"})
	if err != nil {
		t.Fatalf("total failure must not error: %v", err)
	}
	if len(resp.Data) != 0 {
		t.Fatalf("data = %d, want 0", len(resp.Data))
	}
	if len(resp.Health) != 2 {
		t.Fatalf("health = %d entries, want 2", len(resp.Health))
	}
	for _, h := range resp.Health {
		if h.Status != models.HealthError {
			t.Fatalf("health %s = %s, want error", h.Name, h.Status)
		}
	}
	if resp.Meta.ActiveExchanges != 0 {
		t.Fatalf("activeExchanges = %d", resp.Meta.ActiveExchanges)
	}
}

func TestClientDisconnectDoesNotCancelCycle(t *testing.T) {
	a := &fakeAdapter{name: "binance", ctxAware: true, records: []models.NormalizedRecord{
		{Symbol: "BTC", Exchange: "binance", AssetClass: models.AssetCrypto},
	}}
	svc := newService(t, []*fakeAdapter{a})

	// The requesting client is already gone when the cycle starts.
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	resp, status, err := svc.GetMarkets(cancelled, models.KindFunding, &models.MarketsQuery{AssetClass: "all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != svccache.StatusMiss {
		t.Fatalf("status = %s, want MISS", status)
	}
	if len(resp.Data) != 1 || resp.Meta.ActiveExchanges != 1 {
		t.Fatalf("cycle inherited the client cancellation: data=%d meta=%+v", len(resp.Data), resp.Meta)
	}

	// A later healthy request must see the populated cycle, not a
	// cached empty one.
	resp, status, err = svc.GetMarkets(context.Background(), models.KindFunding, &models.MarketsQuery{AssetClass: "all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != svccache.StatusHit || len(resp.Data) != 1 {
		t.Fatalf("status=%s data=%d, want HIT with 1 record", status, len(resp.Data))
	}
}

func TestAllErrorCycleNotCached(t *testing.T) {
	a := &fakeAdapter{name: "binance", err: errors.New("down")}
	svc := newService(t, []*fakeAdapter{a})

	resp, status, err := svc.GetMarkets(context.Background(), models.KindFunding, &models.MarketsQuery{AssetClass: "all"})
	if err != nil {
		t.Fatalf("total failure must not error: %v", err)
	}
	if status != svccache.StatusMiss || len(resp.Data) != 0 {
		t.Fatalf("status=%s data=%d, want degraded MISS", status, len(resp.Data))
	}

	// Source recovers; the next request must re-run the cycle instead
	// of serving the failed one from cache.
	a.err = nil
	a.records = []models.NormalizedRecord{
		{Symbol: "BTC", Exchange: "binance", AssetClass: models.AssetCrypto},
	}
	resp, status, err = svc.GetMarkets(context.Background(), models.KindFunding, &models.MarketsQuery{AssetClass: "all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != svccache.StatusMiss {
		t.Fatalf("status = %s, want MISS after recovery", status)
	}
	if len(resp.Data) != 1 || resp.Meta.ActiveExchanges != 1 {
		t.Fatalf("recovered cycle not served: data=%d meta=%+v", len(resp.Data), resp.Meta)
	}
	if a.calls != 2 {
		t.Fatalf("adapter called %d times, want 2", a.calls)
	}
}

func TestTotalFailureServesStalePreviousCycle(t *testing.T) {
	a := &fakeAdapter{name: "binance", records: []models.NormalizedRecord{
		{Symbol: "BTC", Exchange: "binance", AssetClass: models.AssetCrypto},
	}}
	ttl := TTLConfig{Funding: time.Nanosecond, OpenInterest: time.Minute, Tickers: 15 * time.Second}
	svc := newServiceWithTTL(t, []*fakeAdapter{a}, ttl)

	_, status, err := svc.GetMarkets(context.Background(), models.KindFunding, &models.MarketsQuery{AssetClass: "all"})
	if err != nil || status != svccache.StatusMiss {
		t.Fatalf("first call status=%s err=%v", status, err)
	}

	a.err = errors.New("down")
	a.records = nil
	time.Sleep(time.Millisecond)

	resp, status, err := svc.GetMarkets(context.Background(), models.KindFunding, &models.MarketsQuery{AssetClass: "all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != svccache.StatusStale {
		t.Fatalf("status = %s, want STALE", status)
	}
	if len(resp.Data) != 1 || resp.Data[0].Symbol != "BTC" {
		t.Fatalf("previous cycle not served: %+v", resp.Data)
	}
}

func TestAllowlistGatesCryptoOnly(t *testing.T) {
	a := &fakeAdapter{name: "binance", records: []models.NormalizedRecord{
		{Symbol: "BTC", Exchange: "binance", AssetClass: models.AssetCrypto},
		{Symbol: "OBSCURECOIN", Exchange: "binance", AssetClass: models.AssetCrypto},
		{Symbol: "AAPL", Exchange: "binance", AssetClass: models.AssetStocks},
	}}
	allow := allowlist.New(&fakeRanking{symbols: []string{"BTC", "ETH"}}, testLogger(), 2, 1, time.Hour)
	svc := newService(t, []*fakeAdapter{a}, WithAllowlist(allow))

	resp, _, err := svc.GetMarkets(context.Background(), models.KindFunding, &models.MarketsQuery{AssetClass: "all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := map[string]bool{}
	for _, r := range resp.Data {
		got[r.Symbol] = true
	}
	if !got["BTC"] || !got["AAPL"] || got["OBSCURECOIN"] {
		t.Fatalf("allowlist gate wrong: %+v", resp.Data)
	}
}

func TestHealthReflectsLastCycle(t *testing.T) {
	a := &fakeAdapter{name: "binance", records: []models.NormalizedRecord{
		{Symbol: "BTC", Exchange: "binance", AssetClass: models.AssetCrypto},
	}}
	svc := newService(t, []*fakeAdapter{a})

	if len(svc.Health()) != 0 {
		t.Fatalf("health before any cycle must be empty")
	}
	_, _, _ = svc.GetMarkets(context.Background(), models.KindFunding, &models.MarketsQuery{AssetClass: "all"})
	h := svc.Health()
	if len(h) != 1 || h[0].Name != "binance" || h[0].Status != models.HealthOK {
		t.Fatalf("health = %+v", h)
	}
}
