package repository

import (
	"context"

	"DerivPulse/internal/domain/models"
)

// Metrics records operational telemetry for sources, caches, and cycles.
type Metrics interface {
	RecordSourceResult(source, status string)
	RecordSourceLatency(source string, seconds float64)
	RecordCacheResult(endpoint, result string)
	RecordRecords(kind string, count int)
}

// SnapshotPublisher exports finished aggregation cycles to the message bus
// for the out-of-process snapshot/backfill job. Implementations must never
// block a request path on broker availability.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, kind models.Kind, res *models.AggregationResult) error
	Close() error
}

// RankingSource returns the top-N symbols ordered by market capitalization.
type RankingSource interface {
	TopSymbols(ctx context.Context, limit int) ([]string, error)
}
