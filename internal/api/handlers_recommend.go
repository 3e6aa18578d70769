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

	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/recommend"
	"github.com/tomtom215/tunegraph/internal/validation"
)

// recommendationParams are the query parameters shared by the recommendation endpoints.
type recommendationParams struct {
	MemberID int64 `validate:"gte=0"`
	TagID    int64 `validate:"gte=0"`
	TrackID  int64 `validate:"gte=0"`
	Limit    int64 `validate:"gte=0,lte=1000"`
}

func parseRecommendationParams(r *http.Request) (*recommendationParams, error) {
	var (
		p   recommendationParams
		err error
	)
	if p.MemberID, err = queryInt(r, "member_id", 0); err != nil {
		return nil, err
	}
	if p.TagID, err = queryInt(r, "tag_id", 0); err != nil {
		return nil, err
	}
	if p.TrackID, err = queryInt(r, "track_id", 0); err != nil {
		return nil, err
	}
	if p.Limit, err = queryInt(r, "limit", 0); err != nil {
		return nil, err
	}
	return &p, nil
}

// Recommendations handles GET /api/v1/recommendations/{strategy}
// Query: member_id, tag_id, track_id, limit. Which ids are required depends on the strategy.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	strategy, err := recommend.ParseStrategy(chi.URLParam(r, "strategy"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	p, err := parseRecommendationParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(p); verr != nil {
		respondValidation(w, verr)
		return
	}

	switch {
	case strategy == recommend.StrategySimilarTracks && p.TrackID == 0:
		respondError(w, http.StatusBadRequest, "MISSING_PARAMETER", "track_id is required", nil)
		return
	case strategy != recommend.StrategySimilarTracks && p.MemberID == 0:
		respondError(w, http.StatusBadRequest, "MISSING_PARAMETER", "member_id is required", nil)
		return
	case strategy.NeedsTag() && p.TagID == 0:
		respondError(w, http.StatusBadRequest, "MISSING_PARAMETER", "tag_id is required", nil)
		return
	}

	h.recommend(w, r, recommend.Request{
		Strategy: strategy,
		MemberID: graph.MemberID(p.MemberID),
		TagID:    graph.TagID(p.TagID),
		TrackID:  graph.TrackID(p.TrackID),
		Limit:    int(p.Limit),
	})
}

// SimilarTracks handles GET /api/v1/tracks/{id}/similar?limit
func (h *Handler) SimilarTracks(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(chi.URLParam(r, "id"), "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_TRACK_ID", err.Error(), nil)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil || limit < 0 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "limit must be a non-negative integer", nil)
		return
	}

	h.recommend(w, r, recommend.Request{
		Strategy: recommend.StrategySimilarTracks,
		TrackID:  graph.TrackID(id),
		Limit:    int(limit),
	})
}

// FanMix handles GET /api/v1/members/{id}/fanmix?limit
func (h *Handler) FanMix(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(chi.URLParam(r, "id"), "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_MEMBER_ID", err.Error(), nil)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil || limit < 0 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "limit must be a non-negative integer", nil)
		return
	}

	h.recommend(w, r, recommend.Request{
		Strategy: recommend.StrategyFanMix,
		MemberID: graph.MemberID(id),
		Limit:    int(limit),
	})
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request, req recommend.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.deps.RequestTimeout)
	defer cancel()

	resp, err := h.deps.Recommender.Recommend(ctx, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, resp, start, resp.Cached)
}
