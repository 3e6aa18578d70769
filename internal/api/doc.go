// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

/*
Package api provides the HTTP surface of tunegraph using the Chi router.

Routes:

	GET  /healthz                                   dependency checks and last reconcile
	GET  /metrics                                   Prometheus exposition
	GET  /api/v1/recommendations/{strategy}         member_id, tag_id, track_id, limit
	GET  /api/v1/tracks/{id}/similar                limit
	GET  /api/v1/members/{id}/fanmix                limit
	GET  /api/v1/rankings/{tag_id}/{period}         offset, count
	POST /api/v1/admin/reconcile                    starts a reconciliation (202)
	POST /api/v1/admin/rankings/rebuild             tag_id, period (both optional)

Every JSON response uses the APIResponse envelope. Domain errors map to
statuses in respondDomainError: unknown vertices are 404, invalid periods
and strategies are 400, an overlapping reconcile is 409 and an unusable
similarity service is 502.

Routes under /api/v1 are rate limited per client IP with go-chi/httprate.
Manual reconcile triggers are additionally spaced by a token bucket
(golang.org/x/time/rate) so an operator cannot queue back-to-back runs.
*/
package api
