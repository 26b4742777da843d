package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	sourceRequests *prometheus.CounterVec
	sourceLatency  *prometheus.HistogramVec
	cacheRequests  *prometheus.CounterVec
	records        *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		sourceRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "derivpulse_source_requests_total",
				Help: "Total fetch attempts per source by outcome",
			},
			[]string{"source", "status"},
		),
		sourceLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "derivpulse_source_latency_seconds",
				Help:    "Fetch duration per source in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		cacheRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "derivpulse_cache_requests_total",
				Help: "Response cache lookups by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),
		records: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "derivpulse_records",
				Help: "Records produced by the last aggregation cycle per kind",
			},
			[]string{"kind"},
		),
	}
}

// RecordSourceResult records a fetch outcome for a source.
func (r *Recorder) RecordSourceResult(source, status string) {
	r.sourceRequests.WithLabelValues(source, status).Inc()
}

// RecordSourceLatency records fetch duration for a source in seconds.
func (r *Recorder) RecordSourceLatency(source string, seconds float64) {
	r.sourceLatency.WithLabelValues(source).Observe(seconds)
}

// RecordCacheResult records a cache lookup result for an endpoint.
func (r *Recorder) RecordCacheResult(endpoint, result string) {
	r.cacheRequests.WithLabelValues(endpoint, result).Inc()
}

// RecordRecords records the record count of the last cycle for a kind.
func (r *Recorder) RecordRecords(kind string, count int) {
	r.records.WithLabelValues(kind).Set(float64(count))
}
