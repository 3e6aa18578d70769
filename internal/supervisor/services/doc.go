// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

/*
Package services provides suture.Service wrappers for tunegraph components.

Each wrapper translates a component lifecycle into suture's
Serve(ctx) error and implements fmt.Stringer so supervisor events name it.

HTTPServerService:
  - runs *http.Server.ListenAndServe
  - drains with Shutdown on cancellation

EventRouterService:
  - builds a fresh watermill router per start through an EventRouterFactory
  - reports a router that stops on its own as a failure so it is restarted

SchedulerService:
  - runs reconcileSimilarity and rebuildRanking with robfig/cron using the
    six-field parser from internal/validation
  - skips a firing while the previous run of the same job is still going
  - on first start optionally flushes the ranking cache, rebuilds every
    leaderboard, then reconciles
*/
package services
