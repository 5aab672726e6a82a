// Package metrics provides Prometheus metrics for the aggregator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsagg"

// Fetch results.
const (
	ResultSuccess     = "success"
	ResultEmpty       = "empty"
	ResultProxy       = "proxy"
	ResultRateLimited = "rate_limited"
	ResultFailed      = "failed"
)

var (
	// FetchTotal counts wrapped source fetches by final result.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetch_total",
			Help:      "Total number of source fetches by result",
		},
		[]string{"source", "result"},
	)

	// FetchDuration measures wrapped fetch duration including retries.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Duration of source fetches in seconds, retries included",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"source"},
	)

	// FetchAttempts counts individual attempts, including the proxy fallback.
	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetch_attempts_total",
			Help:      "Total number of individual fetch attempts by transport",
		},
		[]string{"source", "transport"},
	)

	// AggregateDuration measures one full aggregation pass.
	AggregateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_duration_seconds",
			Help:      "Duration of aggregation passes in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// DuplicatesTotal counts articles dropped by dedup.
	DuplicatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_total",
			Help:      "Total number of articles dropped as duplicates",
		},
		[]string{"kind"},
	)

	// CatalogArticles tracks the current catalog size.
	CatalogArticles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_articles",
			Help:      "Number of articles currently held in the catalog",
		},
	)

	// SchedulerRuns counts scheduler triggers by outcome.
	SchedulerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_runs_total",
			Help:      "Total number of scheduler triggers by kind and outcome",
		},
		[]string{"trigger", "outcome"},
	)

	// PublishTotal counts downstream publish operations.
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Total number of article events published downstream",
		},
		[]string{"status"},
	)
)

// RecordFetch records the final outcome of one wrapped fetch.
func RecordFetch(source, result string, seconds float64) {
	FetchTotal.WithLabelValues(source, result).Inc()
	FetchDuration.WithLabelValues(source).Observe(seconds)
}

// RecordAttempt records one attempt over the named transport.
func RecordAttempt(source, transport string) {
	FetchAttempts.WithLabelValues(source, transport).Inc()
}

// RecordAggregate records an aggregation pass.
func RecordAggregate(seconds float64, urlDuplicates, nearDuplicates int) {
	AggregateDuration.Observe(seconds)
	DuplicatesTotal.WithLabelValues("url").Add(float64(urlDuplicates))
	DuplicatesTotal.WithLabelValues("near").Add(float64(nearDuplicates))
}

// SetCatalogSize sets the catalog gauge.
func SetCatalogSize(n int) {
	CatalogArticles.Set(float64(n))
}

// RecordSchedulerRun records a scheduler trigger.
func RecordSchedulerRun(trigger, outcome string) {
	SchedulerRuns.WithLabelValues(trigger, outcome).Inc()
}

// RecordPublish records a publish result.
func RecordPublish(status string) {
	PublishTotal.WithLabelValues(status).Inc()
}
