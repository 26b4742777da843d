package aggregate

import (
	"context"
	"errors"
	"testing"

	"DerivPulse/internal/domain/models"
	"DerivPulse/internal/source"
	"DerivPulse/pkg/logger"
)

type fakeAdapter struct {
	name    string
	records []models.NormalizedRecord
	err     error
	panics  bool
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context, kind models.Kind) ([]models.NormalizedRecord, error) {
	if f.panics {
		panic("adapter bug")
	}
	return f.records, f.err
}

func rec(symbol, exchange string) models.NormalizedRecord {
	return models.NormalizedRecord{Symbol: symbol, Exchange: exchange, AssetClass: models.AssetCrypto}
}

func testOrchestrator(adapters ...source.Adapter) *Orchestrator {
	log, _ := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	return New(source.NewRegistry(adapters...), nil, log)
}

func TestRunAllFailureIsolation(t *testing.T) {
	a := &fakeAdapter{name: "a", records: []models.NormalizedRecord{
		rec("BTC", "a"), rec("ETH", "a"), rec("SOL", "a"), rec("DOGE", "a"), rec("XRP", "a"),
	}}
	b := &fakeAdapter{name: "b", err: errors.New("timeout")}
	c := &fakeAdapter{name: "c"}

	res := testOrchestrator(a, b, c).RunAll(context.Background(), models.KindFunding)

	if len(res.Data) != 5 {
		t.Fatalf("data length = %d, want 5", len(res.Data))
	}
	if len(res.Health) != 3 {
		t.Fatalf("health length = %d, want 3", len(res.Health))
	}

	ha, hb, hc := res.Health[0], res.Health[1], res.Health[2]
	if ha.Name != "a" || ha.Status != models.HealthOK || ha.Count != 5 {
		t.Fatalf("health[a] = %+v", ha)
	}
	if hb.Name != "b" || hb.Status != models.HealthError || hb.Count != 0 || hb.Error != "timeout" {
		t.Fatalf("health[b] = %+v", hb)
	}
	if hc.Name != "c" || hc.Status != models.HealthEmpty || hc.Count != 0 {
		t.Fatalf("health[c] = %+v", hc)
	}
}

func TestRunAllHealthCardinality(t *testing.T) {
	for n := 0; n <= 6; n++ {
		adapters := make([]source.Adapter, 0, n)
		for i := 0; i < n; i++ {
			// every adapter fails
			adapters = append(adapters, &fakeAdapter{name: string(rune('a' + i)), err: errors.New("down")})
		}
		res := testOrchestrator(adapters...).RunAll(context.Background(), models.KindTickers)
		if len(res.Health) != n {
			t.Fatalf("n=%d: health length = %d", n, len(res.Health))
		}
		if len(res.Data) != 0 {
			t.Fatalf("n=%d: data from failing adapters", n)
		}
	}
}

func TestRunAllRegistrationOrderMerge(t *testing.T) {
	first := &fakeAdapter{name: "first", records: []models.NormalizedRecord{rec("BTC", "first")}}
	second := &fakeAdapter{name: "second", records: []models.NormalizedRecord{rec("BTC", "second")}}

	// run repeatedly: merge order must be registration order, not
	// completion order
	for i := 0; i < 20; i++ {
		res := testOrchestrator(first, second).RunAll(context.Background(), models.KindFunding)
		if len(res.Data) != 2 {
			t.Fatalf("data length = %d", len(res.Data))
		}
		if res.Data[0].Exchange != "first" || res.Data[1].Exchange != "second" {
			t.Fatalf("merge order broken: %s, %s", res.Data[0].Exchange, res.Data[1].Exchange)
		}
	}
}

func TestRunAllPanicIsolated(t *testing.T) {
	ok := &fakeAdapter{name: "ok", records: []models.NormalizedRecord{rec("BTC", "ok")}}
	bad := &fakeAdapter{name: "bad", panics: true}

	res := testOrchestrator(ok, bad).RunAll(context.Background(), models.KindFunding)
	if len(res.Data) != 1 {
		t.Fatalf("panicking adapter dropped healthy records")
	}
	if res.Health[1].Status != models.HealthError || res.Health[1].Error == "" {
		t.Fatalf("panic not recorded as error health: %+v", res.Health[1])
	}
}
