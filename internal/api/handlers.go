// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package api

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/tunegraph/internal/ranking"
	"github.com/tomtom215/tunegraph/internal/recommend"
	"github.com/tomtom215/tunegraph/internal/similarity"
)

// Recommender answers recommendation queries.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// Leaderboard reads and rebuilds per-tag rankings.
type Leaderboard interface {
	GetTopTracks(ctx context.Context, tag int64, period ranking.Period, offset, count int) ([]ranking.Entry, error)
	Rebuild(ctx context.Context, tag int64, period ranking.Period) ([]ranking.Entry, error)
	RebuildAll(ctx context.Context) error
}

// Reconciler runs and reports similarity reconciliation.
type Reconciler interface {
	Run(ctx context.Context) (similarity.Result, error)
	LastResult() (similarity.Result, bool)
	Busy() bool
}

// HealthCheck probes one dependency. A nil return means healthy.
type HealthCheck func(ctx context.Context) error

// Dependencies are the services the HTTP surface reads from.
type Dependencies struct {
	Recommender Recommender
	Leaderboard Leaderboard
	Reconciler  Reconciler

	// Checks are reported by /healthz, keyed by dependency name.
	Checks map[string]HealthCheck

	// BaseContext bounds background work started by admin endpoints.
	// Defaults to context.Background().
	BaseContext context.Context

	// AdminTriggerInterval is the minimum spacing between manual
	// reconcile triggers. Zero disables throttling.
	AdminTriggerInterval time.Duration

	// RequestTimeout bounds each read endpoint. Defaults to 10s.
	RequestTimeout time.Duration
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	deps      Dependencies
	startTime time.Time

	// reconcileLimiter spaces manual reconcile triggers.
	reconcileLimiter *rate.Limiter
}

// NewHandler creates a Handler. Recommender, Leaderboard and Reconciler are required.
func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Recommender == nil || deps.Leaderboard == nil || deps.Reconciler == nil {
		return nil, errors.New("api: recommender, leaderboard and reconciler are required")
	}
	if deps.BaseContext == nil {
		deps.BaseContext = context.Background()
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 10 * time.Second
	}

	limit := rate.Inf
	if deps.AdminTriggerInterval > 0 {
		limit = rate.Every(deps.AdminTriggerInterval)
	}

	return &Handler{
		deps:             deps,
		startTime:        time.Now(),
		reconcileLimiter: rate.NewLimiter(limit, 1),
	}, nil
}
