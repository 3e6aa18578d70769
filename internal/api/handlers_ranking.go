// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tunegraph/internal/ranking"
	"github.com/tomtom215/tunegraph/internal/validation"
)

type rankingParams struct {
	TagID  int64 `validate:"gt=0"`
	Offset int64 `validate:"gte=0"`
	Count  int64 `validate:"gte=1,lte=1000"`
}

// RankingResponse is one page of a leaderboard.
type RankingResponse struct {
	TagID   int64           `json:"tagId"`
	Period  ranking.Period  `json:"period"`
	Offset  int64           `json:"offset"`
	Entries []ranking.Entry `json:"entries"`
}

// Rankings handles GET /api/v1/rankings/{tag_id}/{period}?offset&count
// A cold leaderboard is rebuilt on read.
func (h *Handler) Rankings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	period, err := ranking.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var p rankingParams
	if p.TagID, err = pathInt(chi.URLParam(r, "tag_id"), "tag_id"); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_TAG_ID", err.Error(), nil)
		return
	}
	if p.Offset, err = queryInt(r, "offset", 0); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error(), nil)
		return
	}
	if p.Count, err = queryInt(r, "count", 10); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&p); verr != nil {
		respondValidation(w, verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.deps.RequestTimeout)
	defer cancel()

	entries, err := h.deps.Leaderboard.GetTopTracks(ctx, p.TagID, period, int(p.Offset), int(p.Count))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []ranking.Entry{}
	}

	respondData(w, http.StatusOK, &RankingResponse{
		TagID:   p.TagID,
		Period:  period,
		Offset:  p.Offset,
		Entries: entries,
	}, start, false)
}
