// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/tunegraph/internal/logging"
	"github.com/tomtom215/tunegraph/internal/ranking"
	"github.com/tomtom215/tunegraph/internal/similarity"
)

// ReconcileAccepted is returned when a manual reconciliation was started.
type ReconcileAccepted struct {
	Accepted bool `json:"accepted"`
}

// RebuildResult summarizes a manual ranking rebuild.
type RebuildResult struct {
	TagID   int64            `json:"tagId,omitempty"`
	Periods []ranking.Period `json:"periods,omitempty"`
	Entries int              `json:"entries,omitempty"`
	All     bool             `json:"all"`
}

// TriggerReconcile handles POST /api/v1/admin/reconcile
// The run continues in the background after the 202 response.
func (h *Handler) TriggerReconcile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.deps.Reconciler.Busy() {
		respondDomainError(w, similarity.ErrReconcileInProgress)
		return
	}

	res := h.reconcileLimiter.Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
		respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Reconciliation was triggered too recently", nil)
		return
	}

	ctx := logging.ContextWithNewCorrelationID(h.deps.BaseContext)
	go func() {
		result, err := h.deps.Reconciler.Run(ctx)
		logger := logging.Ctx(ctx)
		switch {
		case errors.Is(err, similarity.ErrReconcileInProgress):
			logger.Info().Msg("manual reconciliation skipped, run already in progress")
		case err != nil:
			logger.Error().Err(err).Str("run_id", result.RunID).Msg("manual reconciliation failed")
		default:
			logger.Info().Str("run_id", result.RunID).Str("outcome", result.Outcome()).Msg("manual reconciliation finished")
		}
	}()

	respondData(w, http.StatusAccepted, &ReconcileAccepted{Accepted: true}, start, false)
}

// RebuildRankings handles POST /api/v1/admin/rankings/rebuild?tag_id&period
// Without tag_id every tag and period is rebuilt. With tag_id and no period
// both periods of that tag are rebuilt.
func (h *Handler) RebuildRankings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	tag, err := queryInt(r, "tag_id", 0)
	if err != nil || tag < 0 {
		respondError(w, http.StatusBadRequest, "INVALID_TAG_ID", "tag_id must be a positive integer", nil)
		return
	}
	rawPeriod := r.URL.Query().Get("period")

	if tag == 0 {
		if rawPeriod != "" {
			respondError(w, http.StatusBadRequest, "MISSING_PARAMETER", "period requires tag_id", nil)
			return
		}
		if err := h.deps.Leaderboard.RebuildAll(r.Context()); err != nil {
			respondDomainError(w, err)
			return
		}
		respondData(w, http.StatusOK, &RebuildResult{All: true}, start, false)
		return
	}

	periods := ranking.Periods
	if rawPeriod != "" {
		p, err := ranking.ParsePeriod(rawPeriod)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		periods = []ranking.Period{p}
	}

	result := &RebuildResult{TagID: tag, Periods: periods}
	for _, p := range periods {
		entries, err := h.deps.Leaderboard.Rebuild(r.Context(), tag, p)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		result.Entries += len(entries)
	}
	respondData(w, http.StatusOK, result, start, false)
}
