// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Similarity reconciliation
	ReconcileRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_reconcile_runs_total",
			Help: "Total number of similarity reconciliation runs by outcome",
		},
		[]string{"outcome"}, // "completed", "partial", "aborted", "skipped"
	)

	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "similarity_reconcile_duration_seconds",
			Help:    "Duration of similarity reconciliation runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 900, 1800, 3600},
		},
	)

	ReconcileEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "similarity_edges_written",
			Help: "Number of SIMILAR edges submitted by the last reconciliation",
		},
	)

	ReconcileBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_batches_total",
			Help: "Total number of SIMILAR write batches by result",
		},
		[]string{"result"}, // "ok", "failed", "canceled"
	)

	ReconcileLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "similarity_reconcile_last_success_timestamp",
			Help: "Unix timestamp of the last reconciliation that wrote edges",
		},
	)

	// Ranking cache
	RankingRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_rebuilds_total",
			Help: "Total number of ranking key rebuilds",
		},
		[]string{"period", "result"},
	)

	RankingRebuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_rebuild_duration_seconds",
			Help:    "Duration of a single ranking key rebuild",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"period"},
	)

	RankingEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_entries",
			Help:    "Number of entries written per ranking key",
			Buckets: []float64{0, 1, 5, 10, 25, 50},
		},
	)

	// Recommendations
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by strategy and result",
		},
		[]string{"strategy", "result"}, // result: "ok", "not_found", "error", "cached"
	)

	RecommendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_latency_seconds",
			Help:    "Recommendation computation latency by strategy",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"strategy"},
	)

	RecommendResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_result_size",
			Help:    "Number of tracks returned per recommendation",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"strategy"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Interaction events
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interaction_events_total",
			Help: "Total number of interaction events consumed by type and result",
		},
		[]string{"type", "result"}, // result: "applied", "duplicate", "rejected", "failed"
	)

	EventProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interaction_event_duration_seconds",
			Help:    "Time spent applying one interaction event",
			Buckets: prometheus.DefBuckets,
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)
)

// RecordReconcile records the outcome of one reconciliation run
func RecordReconcile(outcome string, duration time.Duration, edges, okBatches, failedBatches, canceledBatches int) {
	ReconcileRuns.WithLabelValues(outcome).Inc()
	if outcome == "skipped" {
		return
	}
	ReconcileDuration.Observe(duration.Seconds())
	if outcome == "aborted" {
		return
	}
	ReconcileEdges.Set(float64(edges))
	ReconcileBatches.WithLabelValues("ok").Add(float64(okBatches))
	ReconcileBatches.WithLabelValues("failed").Add(float64(failedBatches))
	ReconcileBatches.WithLabelValues("canceled").Add(float64(canceledBatches))
	ReconcileLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordRankingRebuild records one ranking key rebuild
func RecordRankingRebuild(period string, duration time.Duration, entries int, err error) {
	RankingRebuildDuration.WithLabelValues(period).Observe(duration.Seconds())
	if err != nil {
		RankingRebuilds.WithLabelValues(period, "error").Inc()
		return
	}
	RankingRebuilds.WithLabelValues(period, "ok").Inc()
	RankingEntries.Observe(float64(entries))
}

// RecordRecommendation records a computed recommendation
func RecordRecommendation(strategy, result string, duration time.Duration, size int) {
	RecommendRequests.WithLabelValues(strategy, result).Inc()
	if result == "cached" {
		return
	}
	RecommendLatency.WithLabelValues(strategy).Observe(duration.Seconds())
	if result == "ok" {
		RecommendResults.WithLabelValues(strategy).Observe(float64(size))
	}
}

// RecordEvent records one consumed interaction event
func RecordEvent(eventType, result string, duration time.Duration) {
	EventsProcessed.WithLabelValues(eventType, result).Inc()
	EventProcessingDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
