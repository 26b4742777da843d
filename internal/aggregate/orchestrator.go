// Package aggregate fans a fetch cycle out to every registered source
// adapter and merges the results with per-source health telemetry.
package aggregate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"DerivPulse/internal/domain/models"
	"DerivPulse/internal/domain/repository"
	"DerivPulse/internal/source"
	"DerivPulse/pkg/logger"
)

// Orchestrator runs all configured adapters concurrently and isolates
// their failures: one misbehaving source can neither fail the cycle nor
// remove another source's records. RunAll never returns an error; total
// failure is an empty data slice with all-error health.
type Orchestrator struct {
	registry *source.Registry
	metrics  repository.Metrics
	log      *logger.Logger
}

func New(registry *source.Registry, metrics repository.Metrics, log *logger.Logger) *Orchestrator {
	return &Orchestrator{registry: registry, metrics: metrics, log: log}
}

type adapterOutcome struct {
	records []models.NormalizedRecord
	health  models.SourceHealth
}

// RunAll invokes every adapter concurrently for the given kind and waits
// for all of them to settle. Records are concatenated in adapter
// registration order; the health slice always has one entry per adapter.
func (o *Orchestrator) RunAll(ctx context.Context, kind models.Kind) models.AggregationResult {
	adapters := o.registry.Adapters()
	outcomes := make([]adapterOutcome, len(adapters))

	var wg sync.WaitGroup
	for i, a := range adapters {
		wg.Add(1)
		go func(i int, a source.Adapter) {
			defer wg.Done()
			outcomes[i] = o.runOne(ctx, a, kind)
		}(i, a)
	}
	wg.Wait()

	result := models.AggregationResult{
		Data:   make([]models.NormalizedRecord, 0, 256),
		Health: make([]models.SourceHealth, len(adapters)),
	}
	for i, out := range outcomes {
		result.Health[i] = out.health
		if out.health.Status != models.HealthError {
			result.Data = append(result.Data, out.records...)
		}
	}
	return result
}

func (o *Orchestrator) runOne(ctx context.Context, a source.Adapter, kind models.Kind) (out adapterOutcome) {
	start := time.Now()
	name := a.Name()

	defer func() {
		if r := recover(); r != nil {
			out = adapterOutcome{health: models.SourceHealth{
				Name:      name,
				Status:    models.HealthError,
				LatencyMs: time.Since(start).Milliseconds(),
				Error:     fmt.Sprintf("panic: %v", r),
			}}
			o.observe(out.health)
		}
	}()

	records, err := a.Fetch(ctx, kind)
	latency := time.Since(start)

	if err != nil {
		out = adapterOutcome{health: models.SourceHealth{
			Name:      name,
			Status:    models.HealthError,
			LatencyMs: latency.Milliseconds(),
			Error:     err.Error(),
		}}
		o.log.Warn("source failed",
			logger.String("source", name),
			logger.String("kind", string(kind)),
			logger.Error(err))
		o.observe(out.health)
		return out
	}

	status := models.HealthOK
	if len(records) == 0 {
		status = models.HealthEmpty
	}
	out = adapterOutcome{
		records: records,
		health: models.SourceHealth{
			Name:      name,
			Status:    status,
			Count:     len(records),
			LatencyMs: latency.Milliseconds(),
		},
	}
	o.observe(out.health)
	return out
}

func (o *Orchestrator) observe(h models.SourceHealth) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordSourceResult(h.Name, string(h.Status))
	o.metrics.RecordSourceLatency(h.Name, float64(h.LatencyMs)/1000)
}
