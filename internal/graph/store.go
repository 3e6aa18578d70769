// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package graph

import "context"

// VertexStore manages the three vertex labels.
type VertexStore interface {
	// MergeVertex creates the vertex if missing. New vertices are enabled.
	MergeVertex(ctx context.Context, kind VertexKind, id int64) error

	// VertexExists reports whether the vertex exists, enabled or not.
	VertexExists(ctx context.Context, kind VertexKind, id int64) (bool, error)

	// SetVertexEnabled toggles the read-path filter flag. Missing vertices yield *NotFoundError.
	SetVertexEnabled(ctx context.Context, kind VertexKind, id int64, enabled bool) error

	// TrackIDs lists every track id in ascending order.
	TrackIDs(ctx context.Context) ([]TrackID, error)

	// TagsOfTrack lists the tags reachable from track via HAVE.
	TagsOfTrack(ctx context.Context, track TrackID) ([]TagID, error)
}

// EdgeWriter mutates the interaction edges. Endpoints are expected to exist;
// callers check with VertexStore first.
type EdgeWriter interface {
	// AddLikeWeight upserts LIKE(member, track), adding delta to its weight.
	AddLikeWeight(ctx context.Context, member MemberID, track TrackID, delta float64) error

	// AddPreferWeight upserts PREFER(member, tag), adding delta to its weight.
	AddPreferWeight(ctx context.Context, member MemberID, tag TagID, delta float64) error

	// SetEdgeWeight overwrites the weight of a LIKE or PREFER edge, creating it if needed.
	SetEdgeWeight(ctx context.Context, kind EdgeKind, from, to int64, weight float64) error

	MergeHave(ctx context.Context, track TrackID, tag TagID) error
	MergeFollow(ctx context.Context, from, to MemberID) error
	DeleteFollow(ctx context.Context, from, to MemberID) error
	MergeWrite(ctx context.Context, member MemberID, track TrackID) error
}

// SimilarityWriter replaces the derived SIMILAR relation.
type SimilarityWriter interface {
	TrackIDs(ctx context.Context) ([]TrackID, error)

	// DeleteAllSimilar removes every SIMILAR edge and returns how many were removed.
	DeleteAllSimilar(ctx context.Context) (int64, error)

	// MergeSimilar upserts one batch in a single write transaction. Edges
	// whose endpoints do not exist are skipped.
	MergeSimilar(ctx context.Context, edges []SimilarEdge) error
}

// Traverser runs the read-only recommendation traversals. Every traversal
// skips disabled intermediate members and disabled tracks.
type Traverser interface {
	VertexExists(ctx context.Context, kind VertexKind, id int64) (bool, error)

	// LikedSimilar follows member -LIKE-> source -SIMILAR-> candidate where candidate HAVE tag.
	LikedSimilar(ctx context.Context, member MemberID, tag TagID) ([]LikedSimilar, error)

	// FollowingLiked follows member -FOLLOW-> f -LIKE-> track where track HAVE tag.
	FollowingLiked(ctx context.Context, member MemberID, tag TagID) ([]LikedTrack, error)

	// FollowingLikedSimilar follows member -FOLLOW-> f -LIKE-> source -SIMILAR-> candidate
	// where candidate HAVE tag.
	FollowingLikedSimilar(ctx context.Context, member MemberID, tag TagID) ([]LikedSimilar, error)

	// SimilarTracks returns the one-hop SIMILAR targets of track.
	SimilarTracks(ctx context.Context, track TrackID) ([]SimilarTrack, error)

	// FollowerLiked follows follower -FOLLOW-> member, then follower -LIKE-> track.
	FollowerLiked(ctx context.Context, member MemberID) ([]LikedTrack, error)
}

// Store is the full graph persistence contract.
type Store interface {
	VertexStore
	EdgeWriter
	SimilarityWriter
	Traverser

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	Close(ctx context.Context) error
}
