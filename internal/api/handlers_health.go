// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/tomtom215/tunegraph/internal/similarity"
)

// HealthStatus is the /healthz body.
type HealthStatus struct {
	Status        string             `json:"status"`
	Uptime        float64            `json:"uptime_seconds"`
	Checks        map[string]string  `json:"checks"`
	Reconciling   bool               `json:"reconciling"`
	LastReconcile *similarity.Result `json:"last_reconcile,omitempty"`
}

// Health handles GET /healthz
// Any failing check turns the response into a 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.deps.Checks))
	for name := range h.deps.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := HealthStatus{
		Status:      "healthy",
		Uptime:      time.Since(h.startTime).Seconds(),
		Checks:      make(map[string]string, len(names)),
		Reconciling: h.deps.Reconciler.Busy(),
	}
	code := http.StatusOK
	for _, name := range names {
		if err := h.deps.Checks[name](ctx); err != nil {
			status.Checks[name] = sanitizeLogValue(err.Error())
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status.Checks[name] = "ok"
	}

	if last, ok := h.deps.Reconciler.LastResult(); ok {
		status.LastReconcile = &last
	}

	respondData(w, code, &status, start, false)
}
