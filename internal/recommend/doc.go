// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

// Package recommend serves personalized track recommendations from the
// interaction graph.
//
// # Architecture
//
// The Engine is a registry of strategies (see the algorithms subpackage)
// keyed by Strategy name. Each request is normalized (limit defaulting and
// clamping), answered from a short-lived response cache when possible, and
// otherwise dispatched to the registered Algorithm.
//
// # Strategies
//
//   - member-like-sim: tracks similar to what the member liked
//   - following-like: tracks liked by members the member follows
//   - following-like-sim: tracks similar to what followed members liked
//   - similar: one-hop "more like this" for a single track
//   - fanmix: tracks liked by the member's followers, by peak like weight
//
// The similarity-based strategies use two-stage diversified ranking: each
// source contributes at most PerSourceCap candidates (best similarity first),
// then the pooled candidates are sorted globally, de-duplicated keeping the
// first occurrence, and truncated.
//
// # Usage
//
//	engine, _ := recommend.NewEngine(recommend.DefaultConfig())
//	algorithms.RegisterAll(engine, algorithms.NewRetriever(store, cfg.PerSourceCap))
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    Strategy: recommend.StrategyMemberLikeSim,
//	    MemberID: 42,
//	    TagID:    7,
//	    Limit:    20,
//	})
//
// # Caching
//
// Responses are cached for CacheTTL. The cache must be invalidated whenever
// the SIMILAR relation is rebuilt; the server wires InvalidateCache to the
// reconciler's completion hook.
package recommend
