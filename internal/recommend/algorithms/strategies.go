// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package algorithms

import (
	"context"

	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/recommend"
)

// strategy adapts one Retriever method to recommend.Algorithm.
type strategy struct {
	name recommend.Strategy
	run  func(ctx context.Context, req recommend.Request) ([]graph.TrackID, error)
}

func (s strategy) Strategy() recommend.Strategy { return s.name }

func (s strategy) Recommend(ctx context.Context, req recommend.Request) ([]graph.TrackID, error) {
	return s.run(ctx, req)
}

// All returns one Algorithm per strategy, backed by r.
func All(r *Retriever) []recommend.Algorithm {
	return []recommend.Algorithm{
		strategy{recommend.StrategyMemberLikeSim, func(ctx context.Context, req recommend.Request) ([]graph.TrackID, error) {
			return r.ByMemberLikeSim(ctx, req.MemberID, req.TagID, req.Limit)
		}},
		strategy{recommend.StrategyFollowingLike, func(ctx context.Context, req recommend.Request) ([]graph.TrackID, error) {
			return r.ByFollowingLike(ctx, req.MemberID, req.TagID, req.Limit)
		}},
		strategy{recommend.StrategyFollowingLikeSim, func(ctx context.Context, req recommend.Request) ([]graph.TrackID, error) {
			return r.ByFollowingLikeSim(ctx, req.MemberID, req.TagID, req.Limit)
		}},
		strategy{recommend.StrategySimilarTracks, func(ctx context.Context, req recommend.Request) ([]graph.TrackID, error) {
			return r.SimilarTrackIDs(ctx, req.TrackID, req.Limit)
		}},
		strategy{recommend.StrategyFanMix, func(ctx context.Context, req recommend.Request) ([]graph.TrackID, error) {
			return r.FanMix(ctx, req.MemberID, req.Limit)
		}},
	}
}

// RegisterAll registers every strategy with e.
func RegisterAll(e *recommend.Engine, r *Retriever) {
	for _, alg := range All(r) {
		e.Register(alg)
	}
}
