// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tunegraph/internal/cache"
	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/logging"
	"github.com/tomtom215/tunegraph/internal/metrics"
)

// Engine dispatches recommendation requests to registered strategies.
// It is safe for concurrent use.
type Engine struct {
	cfg    Config
	logger zerolog.Logger

	algMu      sync.RWMutex
	algorithms map[Strategy]Algorithm

	cache *cache.TTLCache[[]graph.TrackID]
}

// NewEngine creates an engine with no strategies registered.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	e := &Engine{
		cfg:        cfg,
		logger:     logging.WithComponent("recommend"),
		algorithms: make(map[Strategy]Algorithm),
	}
	if cfg.CacheTTL > 0 {
		e.cache = cache.NewTTLCache[[]graph.TrackID](cfg.CacheTTL, cfg.CacheTTL)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Register adds or replaces the algorithm for its strategy.
func (e *Engine) Register(alg Algorithm) {
	e.algMu.Lock()
	defer e.algMu.Unlock()

	e.algorithms[alg.Strategy()] = alg
	e.logger.Info().Str("strategy", string(alg.Strategy())).Msg("registered strategy")
}

// Strategies lists registered strategies in name order.
func (e *Engine) Strategies() []Strategy {
	e.algMu.RLock()
	defer e.algMu.RUnlock()

	out := make([]Strategy, 0, len(e.algorithms))
	for s := range e.algorithms {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Recommend answers req. Lookup failures surface as *graph.NotFoundError;
// an empty candidate set is an empty, non-nil track list.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	req.Limit = e.cfg.normalizeLimit(req.Limit)

	e.algMu.RLock()
	alg, ok := e.algorithms[req.Strategy]
	e.algMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, req.Strategy)
	}

	key := ""
	if e.cache != nil {
		key = cache.GenerateKey(string(req.Strategy), req)
		if tracks, hit := e.cache.Get(key); hit {
			metrics.RecordRecommendation(string(req.Strategy), "cached", 0, len(tracks))
			return &Response{Strategy: req.Strategy, Tracks: tracks, Cached: true, GeneratedAt: start}, nil
		}
	}

	tracks, err := alg.Recommend(ctx, req)
	if err != nil {
		result := "error"
		if graph.IsNotFound(err) {
			result = "not_found"
		}
		metrics.RecordRecommendation(string(req.Strategy), result, time.Since(start), 0)
		return nil, err
	}
	if tracks == nil {
		tracks = []graph.TrackID{}
	}
	if len(tracks) > req.Limit {
		tracks = tracks[:req.Limit]
	}

	if e.cache != nil {
		e.cache.Set(key, tracks)
	}
	metrics.RecordRecommendation(string(req.Strategy), "ok", time.Since(start), len(tracks))
	logging.Ctx(ctx).Debug().
		Str("strategy", string(req.Strategy)).
		Int("returned", len(tracks)).
		Dur("latency", time.Since(start)).
		Msg("recommendation complete")

	return &Response{Strategy: req.Strategy, Tracks: tracks, GeneratedAt: start}, nil
}

// ByMemberLikeSim recommends tracks of tag similar to those member liked.
func (e *Engine) ByMemberLikeSim(ctx context.Context, member graph.MemberID, tag graph.TagID, limit int) ([]graph.TrackID, error) {
	return e.tracks(ctx, Request{Strategy: StrategyMemberLikeSim, MemberID: member, TagID: tag, Limit: limit})
}

// ByFollowingLike recommends tracks of tag liked by members that member follows.
func (e *Engine) ByFollowingLike(ctx context.Context, member graph.MemberID, tag graph.TagID, limit int) ([]graph.TrackID, error) {
	return e.tracks(ctx, Request{Strategy: StrategyFollowingLike, MemberID: member, TagID: tag, Limit: limit})
}

// ByFollowingLikeSim recommends tracks of tag similar to those liked by followed members.
func (e *Engine) ByFollowingLikeSim(ctx context.Context, member graph.MemberID, tag graph.TagID, limit int) ([]graph.TrackID, error) {
	return e.tracks(ctx, Request{Strategy: StrategyFollowingLikeSim, MemberID: member, TagID: tag, Limit: limit})
}

// SimilarTrackIDs returns the tracks most similar to track.
func (e *Engine) SimilarTrackIDs(ctx context.Context, track graph.TrackID, limit int) ([]graph.TrackID, error) {
	return e.tracks(ctx, Request{Strategy: StrategySimilarTracks, TrackID: track, Limit: limit})
}

// FanMix returns tracks liked by member's followers, by peak like weight.
func (e *Engine) FanMix(ctx context.Context, member graph.MemberID, limit int) ([]graph.TrackID, error) {
	return e.tracks(ctx, Request{Strategy: StrategyFanMix, MemberID: member, Limit: limit})
}

func (e *Engine) tracks(ctx context.Context, req Request) ([]graph.TrackID, error) {
	resp, err := e.Recommend(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Tracks, nil
}

// InvalidateCache drops every cached response.
func (e *Engine) InvalidateCache() {
	if e.cache == nil {
		return
	}
	e.cache.Clear()
	e.logger.Debug().Msg("recommendation cache invalidated")
}

// CacheStats reports response cache statistics. ok is false when caching is off.
func (e *Engine) CacheStats() (stats cache.Stats, ok bool) {
	if e.cache == nil {
		return cache.Stats{}, false
	}
	return e.cache.Stats(), true
}

// Close stops the cache janitor.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}
