// Package metrics provides Prometheus metrics for the digest pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsdigest"

var (
	// ItemsIngested counts new items stored per source.
	ItemsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_ingested_total",
			Help:      "Number of new items stored per source",
		},
		[]string{"source"},
	)

	// SourceFailures counts feed sources that could not be fetched or parsed.
	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Number of failed source fetches",
		},
		[]string{"source"},
	)

	// EnrichmentOutcomes counts enrichment results by outcome.
	EnrichmentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_total",
			Help:      "Enrichment results by outcome",
		},
		[]string{"outcome"},
	)

	// EnrichmentAttempts observes how many model calls an item needed.
	EnrichmentAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "enrichment_attempts",
			Help:      "Model calls per enriched item",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
	)

	// ChunksSent counts delivered message chunks.
	ChunksSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_sent_total",
			Help:      "Number of message chunks sent",
		},
	)

	// Deliveries counts digest deliveries by status.
	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Digest deliveries by status",
		},
		[]string{"status"},
	)

	// PipelineRuns counts pipeline runs by trigger and status.
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by trigger and status",
		},
		[]string{"trigger", "status"},
	)

	// PipelineDuration measures full pipeline runs.
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"trigger"},
	)
)

// RecordIngested adds n new items for source.
func RecordIngested(source string, n int) {
	if n > 0 {
		ItemsIngested.WithLabelValues(source).Add(float64(n))
	}
}

// RecordSourceFailure records one failed source.
func RecordSourceFailure(source string) {
	SourceFailures.WithLabelValues(source).Inc()
}

// RecordEnrichment records the outcome of one item.
func RecordEnrichment(outcome string, attempts int) {
	EnrichmentOutcomes.WithLabelValues(outcome).Inc()
	EnrichmentAttempts.Observe(float64(attempts))
}

// RecordRun records a finished pipeline run.
func RecordRun(trigger, status string, seconds float64) {
	PipelineRuns.WithLabelValues(trigger, status).Inc()
	PipelineDuration.WithLabelValues(trigger).Observe(seconds)
}

// DeliveryObserver feeds chunk and delivery counters.
type DeliveryObserver struct{}

// ChunkSent records one sent chunk.
func (DeliveryObserver) ChunkSent() {
	ChunksSent.Inc()
}

// DeliveryFinished records the delivery status.
func (DeliveryObserver) DeliveryFinished(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	Deliveries.WithLabelValues(status).Inc()
}
