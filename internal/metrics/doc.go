// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

/*
Package metrics provides Prometheus metrics for Tunegraph.

All collectors are registered with the default registry through promauto and
are exported by the /metrics endpoint of the API server:

	curl http://localhost:8080/metrics

# Available Metrics

Similarity reconciliation:
  - similarity_reconcile_runs_total{outcome}
  - similarity_reconcile_duration_seconds
  - similarity_edges_written
  - similarity_batches_total{result}
  - similarity_reconcile_last_success_timestamp

Ranking cache:
  - ranking_rebuilds_total{period,result}
  - ranking_rebuild_duration_seconds{period}
  - ranking_entries

Recommendations:
  - recommend_requests_total{strategy,result}
  - recommend_latency_seconds{strategy}
  - recommend_result_size{strategy}

Resilience and transport:
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result}
  - interaction_events_total{type,result}
  - api_requests_total, api_request_duration_seconds, api_active_requests

Helpers such as RecordReconcile and RecordRecommendation keep label values
consistent across call sites.
*/
package metrics
