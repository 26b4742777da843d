// Package usecase wires the aggregation pipeline behind the HTTP surface:
// response cache in front, orchestrator behind, allowlist gate and
// snapshot export on the refresh path.
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"DerivPulse/internal/aggregate"
	"DerivPulse/internal/allowlist"
	"DerivPulse/internal/domain/models"
	"DerivPulse/internal/domain/repository"
	svccache "DerivPulse/internal/service/cache"
	"DerivPulse/pkg/logger"
)

// TTLConfig holds the per-kind freshness window of the response cache.
type TTLConfig struct {
	Funding      time.Duration
	OpenInterest time.Duration
	Tickers      time.Duration
}

// MarketService serves the aggregated market endpoints. One cached
// aggregation per kind; request-level filters are applied after the
// cache so every query shape shares the same upstream fetch.
type MarketService struct {
	orchestrator *aggregate.Orchestrator
	cache        *svccache.ResponseCache
	allow        *allowlist.Cache
	metrics      repository.Metrics
	snapshots    repository.SnapshotPublisher
	log          *logger.Logger
	ttl          TTLConfig

	mu         sync.RWMutex
	lastHealth []models.SourceHealth
}

// Option configures MarketService.
type Option func(*MarketService)

// WithAllowlist enables the top-by-market-cap gate on crypto records.
func WithAllowlist(allow *allowlist.Cache) Option {
	return func(s *MarketService) { s.allow = allow }
}

// WithSnapshotPublisher exports each refreshed cycle to the message bus.
func WithSnapshotPublisher(p repository.SnapshotPublisher) Option {
	return func(s *MarketService) { s.snapshots = p }
}

// NewMarketService creates the market service.
func NewMarketService(orchestrator *aggregate.Orchestrator, cache *svccache.ResponseCache, metrics repository.Metrics, log *logger.Logger, ttl TTLConfig, opts ...Option) *MarketService {
	s := &MarketService{
		orchestrator: orchestrator,
		cache:        cache,
		metrics:      metrics,
		log:          log,
		ttl:          ttl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTLFor returns the response cache TTL for a kind.
func (s *MarketService) TTLFor(kind models.Kind) time.Duration {
	switch kind {
	case models.KindOpenInterest:
		return s.ttl.OpenInterest
	case models.KindTickers:
		return s.ttl.Tickers
	default:
		return s.ttl.Funding
	}
}

// degradedCycle routes an all-error cycle through the cache's error path
// so it is never stored over a servable previous entry.
type degradedCycle struct {
	res *models.AggregationResult
}

func (e *degradedCycle) Error() string { return "all sources failed" }

// allError reports whether every source in the cycle failed. An empty
// health array means no sources are registered, not a failed cycle.
func allError(health []models.SourceHealth) bool {
	if len(health) == 0 {
		return false
	}
	for _, h := range health {
		if h.Status != models.HealthError {
			return false
		}
	}
	return true
}

// GetMarkets returns the aggregated dataset for a kind with the query's
// filters applied. The returned status reflects how the shared cycle was
// satisfied, not the filtered view.
func (s *MarketService) GetMarkets(ctx context.Context, kind models.Kind, q *models.MarketsQuery) (*models.MarketsResponse, svccache.Status, error) {
	v, status, err := s.cache.GetOrFetch(ctx, "markets:"+string(kind), s.TTLFor(kind), func(ctx context.Context) (any, error) {
		// The cycle is shared across clients and must outlive the
		// requesting one: a client disconnect cancels its request
		// context, never the in-flight aggregation. Adapters stay
		// bounded by the HTTP client's per-attempt deadlines.
		res := s.refresh(context.WithoutCancel(ctx), kind)
		if allError(res.Health) {
			return nil, &degradedCycle{res: res}
		}
		return res, nil
	})

	var res *models.AggregationResult
	if err != nil {
		var dc *degradedCycle
		if !errors.As(err, &dc) {
			return nil, status, err
		}
		res = dc.res
	} else if r, ok := v.(*models.AggregationResult); ok {
		res = r
	}
	if res == nil {
		res = &models.AggregationResult{Data: []models.NormalizedRecord{}, Health: []models.SourceHealth{}}
	}

	data := filterRecords(res.Data, q)
	active := 0
	for _, h := range res.Health {
		if h.Status != models.HealthError {
			active++
		}
	}

	return &models.MarketsResponse{
		Data:   data,
		Health: res.Health,
		Meta: models.Meta{
			TotalExchanges:  len(res.Health),
			ActiveExchanges: active,
			TotalEntries:    len(data),
			Timestamp:       time.Now().UTC(),
		},
	}, status, nil
}

// Health returns the health array of the most recent cycle of any kind.
func (s *MarketService) Health() []models.SourceHealth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastHealth == nil {
		return []models.SourceHealth{}
	}
	return s.lastHealth
}

// refresh runs one full aggregation cycle. It never fails: total source
// failure is an empty dataset with all-error health, served as HTTP 200.
func (s *MarketService) refresh(ctx context.Context, kind models.Kind) *models.AggregationResult {
	res := s.orchestrator.RunAll(ctx, kind)
	res.Data = s.applyAllowlist(ctx, res.Data)

	s.mu.Lock()
	s.lastHealth = res.Health
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordRecords(string(kind), len(res.Data))
	}
	s.publishSnapshot(kind, &res)
	return &res
}

// applyAllowlist drops crypto records outside the top-by-market-cap set.
// Other asset classes pass through, and an empty set disables the gate.
func (s *MarketService) applyAllowlist(ctx context.Context, records []models.NormalizedRecord) []models.NormalizedRecord {
	if s.allow == nil {
		return records
	}
	allowed := s.allow.TopSymbols(ctx)
	if len(allowed) == 0 {
		return records
	}
	kept := records[:0]
	for _, r := range records {
		if r.AssetClass == models.AssetCrypto {
			if _, ok := allowed[r.Symbol]; !ok {
				continue
			}
		}
		kept = append(kept, r)
	}
	return kept
}

// publishSnapshot exports the cycle asynchronously. Broker trouble is
// logged and never reaches a request.
func (s *MarketService) publishSnapshot(kind models.Kind, res *models.AggregationResult) {
	if s.snapshots == nil {
		return
	}
	snap := *res
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.snapshots.PublishSnapshot(ctx, kind, &snap); err != nil {
			s.log.Warn("snapshot publish failed",
				logger.String("kind", string(kind)),
				logger.Error(err))
		}
	}()
}

func filterRecords(records []models.NormalizedRecord, q *models.MarketsQuery) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, 0, len(records))
	symbol := strings.ToUpper(strings.TrimSpace(q.Symbol))
	class := q.AssetClass
	for _, r := range records {
		if symbol != "" && r.Symbol != symbol {
			continue
		}
		if class != "" && class != "all" && string(r.AssetClass) != class {
			continue
		}
		out = append(out, r)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
