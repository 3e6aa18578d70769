// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package graph

import "fmt"

// MemberID identifies a Member vertex. Ids come from the relational store.
type MemberID int64

// TrackID identifies a Track vertex.
type TrackID int64

// TagID identifies a Tag vertex.
type TagID int64

// VertexKind names one of the three vertex labels.
type VertexKind string

const (
	KindMember VertexKind = "Member"
	KindTrack  VertexKind = "Track"
	KindTag    VertexKind = "Tag"
)

// Valid reports whether k is one of the known vertex kinds.
func (k VertexKind) Valid() bool {
	switch k {
	case KindMember, KindTrack, KindTag:
		return true
	}
	return false
}

// EdgeKind names a relationship type.
type EdgeKind string

const (
	EdgeLike    EdgeKind = "LIKE"    // Member -> Track, weight
	EdgePrefer  EdgeKind = "PREFER"  // Member -> Tag, weight
	EdgeHave    EdgeKind = "HAVE"    // Track -> Tag
	EdgeSimilar EdgeKind = "SIMILAR" // Track -> Track, similarity
	EdgeFollow  EdgeKind = "FOLLOW"  // Member -> Member
	EdgeWrite   EdgeKind = "WRITE"   // Member -> Track
)

// Weighted reports whether the edge kind carries an accumulated weight.
func (k EdgeKind) Weighted() bool {
	return k == EdgeLike || k == EdgePrefer
}

// Endpoints returns the vertex kinds at both ends of the edge kind.
func (k EdgeKind) Endpoints() (from, to VertexKind, err error) {
	switch k {
	case EdgeLike, EdgeWrite:
		return KindMember, KindTrack, nil
	case EdgePrefer:
		return KindMember, KindTag, nil
	case EdgeHave:
		return KindTrack, KindTag, nil
	case EdgeSimilar:
		return KindTrack, KindTrack, nil
	case EdgeFollow:
		return KindMember, KindMember, nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnknownEdge, string(k))
}

// SimilarEdge is one directed similarity relation produced by reconciliation.
type SimilarEdge struct {
	From       TrackID
	To         TrackID
	Similarity float64
}

// LikedSimilar is one row of a like-then-similar traversal:
// Liker -LIKE(LikeWeight)-> Source -SIMILAR(Similarity)-> Candidate.
type LikedSimilar struct {
	Liker      MemberID
	Source     TrackID
	LikeWeight float64
	Candidate  TrackID
	Similarity float64
}

// LikedTrack is one LIKE edge as returned by traversals.
type LikedTrack struct {
	Member MemberID
	Track  TrackID
	Weight float64
}

// SimilarTrack is one SIMILAR target of a fixed source track.
type SimilarTrack struct {
	Track      TrackID
	Similarity float64
}
