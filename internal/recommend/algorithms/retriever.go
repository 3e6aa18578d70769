// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

// Package algorithms implements the graph traversal strategies behind the
// recommendation engine.
//
// Traversal rows come from a graph.Traverser; all ranking happens here, so
// every strategy behaves identically on the in-memory and Neo4j stores.
//
// # Ordering
//
// Every strategy ends its sort with candidate track id ascending, so equal
// scores always come back in the same order.
//
// # ByFollowingLike
//
// This strategy applies no per-source cap. Candidates are ordered by the
// like weight of the followed member, highest first, and a track liked by
// several followed members keeps its best-weighted occurrence.
package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/tunegraph/internal/graph"
)

// DefaultPerSourceCap is how many candidates a single source may contribute.
const DefaultPerSourceCap = 3

// Retriever runs the recommendation traversals against a graph.
type Retriever struct {
	graph     graph.Traverser
	perSource int
}

// NewRetriever creates a retriever. perSource <= 0 uses DefaultPerSourceCap.
func NewRetriever(g graph.Traverser, perSource int) *Retriever {
	if perSource <= 0 {
		perSource = DefaultPerSourceCap
	}
	return &Retriever{graph: g, perSource: perSource}
}

// ByMemberLikeSim ranks tracks of tag that are SIMILAR to tracks member liked.
// limit <= 0 returns every candidate.
func (r *Retriever) ByMemberLikeSim(ctx context.Context, member graph.MemberID, tag graph.TagID, limit int) ([]graph.TrackID, error) {
	if err := r.require(ctx, graph.KindMember, int64(member)); err != nil {
		return nil, err
	}
	if err := r.require(ctx, graph.KindTag, int64(tag)); err != nil {
		return nil, err
	}
	rows, err := r.graph.LikedSimilar(ctx, member, tag)
	if err != nil {
		return nil, fmt.Errorf("liked-similar traversal: %w", err)
	}
	return Diversify(rows, r.perSource, limit), nil
}

// ByFollowingLike returns tracks of tag liked by members that member follows.
func (r *Retriever) ByFollowingLike(ctx context.Context, member graph.MemberID, tag graph.TagID, limit int) ([]graph.TrackID, error) {
	if err := r.require(ctx, graph.KindMember, int64(member)); err != nil {
		return nil, err
	}
	if err := r.require(ctx, graph.KindTag, int64(tag)); err != nil {
		return nil, err
	}
	rows, err := r.graph.FollowingLiked(ctx, member, tag)
	if err != nil {
		return nil, fmt.Errorf("following-liked traversal: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Weight != rows[j].Weight {
			return rows[i].Weight > rows[j].Weight
		}
		return rows[i].Track < rows[j].Track
	})
	ids := make([]graph.TrackID, len(rows))
	for i, row := range rows {
		ids[i] = row.Track
	}
	return truncate(dedup(ids), limit), nil
}

// ByFollowingLikeSim ranks tracks of tag SIMILAR to tracks liked by followed members.
func (r *Retriever) ByFollowingLikeSim(ctx context.Context, member graph.MemberID, tag graph.TagID, limit int) ([]graph.TrackID, error) {
	if err := r.require(ctx, graph.KindMember, int64(member)); err != nil {
		return nil, err
	}
	if err := r.require(ctx, graph.KindTag, int64(tag)); err != nil {
		return nil, err
	}
	rows, err := r.graph.FollowingLikedSimilar(ctx, member, tag)
	if err != nil {
		return nil, fmt.Errorf("following-liked-similar traversal: %w", err)
	}
	return Diversify(rows, r.perSource, limit), nil
}

// SimilarTrackIDs returns the one-hop SIMILAR neighbors of track, most similar first.
func (r *Retriever) SimilarTrackIDs(ctx context.Context, track graph.TrackID, limit int) ([]graph.TrackID, error) {
	if err := r.require(ctx, graph.KindTrack, int64(track)); err != nil {
		return nil, err
	}
	rows, err := r.graph.SimilarTracks(ctx, track)
	if err != nil {
		return nil, fmt.Errorf("similar traversal: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Similarity != rows[j].Similarity {
			return rows[i].Similarity > rows[j].Similarity
		}
		return rows[i].Track < rows[j].Track
	})
	ids := make([]graph.TrackID, len(rows))
	for i, row := range rows {
		ids[i] = row.Track
	}
	return truncate(dedup(ids), limit), nil
}

// FanMix returns tracks liked by member's followers. Each track scores the
// highest like weight any follower gave it.
func (r *Retriever) FanMix(ctx context.Context, member graph.MemberID, limit int) ([]graph.TrackID, error) {
	if err := r.require(ctx, graph.KindMember, int64(member)); err != nil {
		return nil, err
	}
	rows, err := r.graph.FollowerLiked(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("follower-liked traversal: %w", err)
	}

	peak := make(map[graph.TrackID]float64, len(rows))
	for _, row := range rows {
		if w, ok := peak[row.Track]; !ok || row.Weight > w {
			peak[row.Track] = row.Weight
		}
	}
	ids := make([]graph.TrackID, 0, len(peak))
	for id := range peak {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if peak[ids[i]] != peak[ids[j]] {
			return peak[ids[i]] > peak[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return truncate(ids, limit), nil
}

func (r *Retriever) require(ctx context.Context, kind graph.VertexKind, id int64) error {
	ok, err := r.graph.VertexExists(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("check %s %d: %w", kind, id, err)
	}
	if !ok {
		return graph.NewNotFound(kind, id)
	}
	return nil
}
