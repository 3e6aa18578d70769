// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package recommend

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/tunegraph/internal/graph"
)

// countingAlgorithm returns ids 1..n (n = request limit + extra) and counts calls.
type countingAlgorithm struct {
	name  Strategy
	calls atomic.Int32
	extra int
	err   error
	last  Request
}

func (a *countingAlgorithm) Strategy() Strategy { return a.name }

func (a *countingAlgorithm) Recommend(_ context.Context, req Request) ([]graph.TrackID, error) {
	a.calls.Add(1)
	a.last = req
	if a.err != nil {
		return nil, a.err
	}
	out := make([]graph.TrackID, 0, req.Limit+a.extra)
	for i := 1; i <= req.Limit+a.extra; i++ {
		out = append(out, graph.TrackID(i))
	}
	return out, nil
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero default limit", mutate: func(c *Config) { c.DefaultLimit = 0 }, wantErr: true},
		{name: "max below default", mutate: func(c *Config) { c.MaxLimit = 5; c.DefaultLimit = 10 }, wantErr: true},
		{name: "zero cap", mutate: func(c *Config) { c.PerSourceCap = 0 }, wantErr: true},
		{name: "cache disabled", mutate: func(c *Config) { c.CacheTTL = 0 }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(&cfg)
		if err := cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestEngine_LimitNormalization(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.CacheTTL = 0
	e := newTestEngine(t, cfg)
	alg := &countingAlgorithm{name: StrategyFanMix, extra: 5}
	e.Register(alg)

	ctx := context.Background()
	tracks, err := e.FanMix(ctx, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if alg.last.Limit != cfg.DefaultLimit || len(tracks) != cfg.DefaultLimit {
		t.Errorf("expected default limit %d, got request %d and %d tracks", cfg.DefaultLimit, alg.last.Limit, len(tracks))
	}

	tracks, _ = e.FanMix(ctx, 1, 10_000)
	if alg.last.Limit != cfg.MaxLimit || len(tracks) != cfg.MaxLimit {
		t.Errorf("expected max limit %d, got request %d and %d tracks", cfg.MaxLimit, alg.last.Limit, len(tracks))
	}
}

func TestEngine_CacheAndInvalidate(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.CacheTTL = time.Minute
	e := newTestEngine(t, cfg)
	alg := &countingAlgorithm{name: StrategySimilarTracks}
	e.Register(alg)

	ctx := context.Background()
	req := Request{Strategy: StrategySimilarTracks, TrackID: 7, Limit: 3}

	first, err := e.Recommend(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := e.Recommend(ctx, req)
	if first.Cached || !second.Cached {
		t.Errorf("expected miss then hit, got cached=%v/%v", first.Cached, second.Cached)
	}
	if alg.calls.Load() != 1 {
		t.Errorf("expected one computation, got %d", alg.calls.Load())
	}

	e.InvalidateCache()
	if third, _ := e.Recommend(ctx, req); third.Cached {
		t.Error("expected miss after invalidation")
	}
	if stats, ok := e.CacheStats(); !ok || stats.Hits != 1 {
		t.Errorf("expected 1 cache hit, got %+v (ok=%v)", stats, ok)
	}
}

func TestEngine_Errors(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	e := newTestEngine(t, cfg)
	e.Register(&countingAlgorithm{name: StrategyMemberLikeSim, err: graph.NewNotFound(graph.KindTag, 5)})

	ctx := context.Background()
	if _, err := e.Recommend(ctx, Request{Strategy: StrategyFanMix}); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
	_, err := e.ByMemberLikeSim(ctx, 1, 5, 10)
	var nf *graph.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 5 {
		t.Errorf("expected tag NotFoundError, got %v", err)
	}
}

func TestEngine_EmptyIsNotNil(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.DefaultLimit = 1
	e := newTestEngine(t, cfg)
	e.Register(&countingAlgorithm{name: StrategyFollowingLike, extra: -1})

	tracks, err := e.ByFollowingLike(context.Background(), 1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if tracks == nil || len(tracks) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", tracks)
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"member-like-sim", "following-like", "following-like-sim", "similar", "fanmix"} {
		if _, err := ParseStrategy(s); err != nil {
			t.Errorf("ParseStrategy(%q): %v", s, err)
		}
	}
	if _, err := ParseStrategy("popular"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
	if !StrategyFollowingLikeSim.NeedsTag() || StrategyFanMix.NeedsTag() {
		t.Error("unexpected NeedsTag result")
	}
}
