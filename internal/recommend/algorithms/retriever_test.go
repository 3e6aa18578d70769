// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package algorithms

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/graph/memstore"
)

const (
	tagT graph.TagID = 10

	trackA graph.TrackID = 100
	trackB graph.TrackID = 101
	trackC graph.TrackID = 102
	trackD graph.TrackID = 103
	trackE graph.TrackID = 104
	trackX graph.TrackID = 200
	trackY graph.TrackID = 201
)

// fixture builds a memstore graph step by step, failing the test on any error.
type fixture struct {
	t   *testing.T
	ctx context.Context
	s   *memstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, ctx: context.Background(), s: memstore.New()}
}

func (f *fixture) check(err error) {
	f.t.Helper()
	if err != nil {
		f.t.Fatal(err)
	}
}

func (f *fixture) members(ids ...graph.MemberID) *fixture {
	for _, id := range ids {
		f.check(f.s.MergeVertex(f.ctx, graph.KindMember, int64(id)))
	}
	return f
}

func (f *fixture) tagged(tag graph.TagID, tracks ...graph.TrackID) *fixture {
	f.check(f.s.MergeVertex(f.ctx, graph.KindTag, int64(tag)))
	for _, id := range tracks {
		f.check(f.s.MergeVertex(f.ctx, graph.KindTrack, int64(id)))
		f.check(f.s.MergeHave(f.ctx, id, tag))
	}
	return f
}

func (f *fixture) like(m graph.MemberID, tr graph.TrackID, w float64) *fixture {
	f.check(f.s.AddLikeWeight(f.ctx, m, tr, w))
	return f
}

func (f *fixture) follow(from, to graph.MemberID) *fixture {
	f.check(f.s.MergeFollow(f.ctx, from, to))
	return f
}

func (f *fixture) similar(from graph.TrackID, to graph.TrackID, sim float64) *fixture {
	f.check(f.s.MergeSimilar(f.ctx, []graph.SimilarEdge{{From: from, To: to, Similarity: sim}}))
	return f
}

func assertTracks(t *testing.T, got, want []graph.TrackID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestByMemberLikeSim_DiversificationCap(t *testing.T) {
	t.Parallel()
	f := newFixture(t).
		members(1).
		tagged(tagT, trackA, trackB, trackC, trackD, trackE).
		like(1, trackA, 5).
		similar(trackA, trackB, 0.9).
		similar(trackA, trackC, 0.7).
		similar(trackA, trackD, 0.5).
		similar(trackA, trackE, 0.3)

	r := NewRetriever(f.s, 3)
	got, err := r.ByMemberLikeSim(f.ctx, 1, tagT, 3)
	if err != nil {
		t.Fatal(err)
	}
	assertTracks(t, got, []graph.TrackID{trackB, trackC, trackD})

	// A larger limit still cannot pull a fourth candidate from the same source.
	got, err = r.ByMemberLikeSim(f.ctx, 1, tagT, 10)
	if err != nil {
		t.Fatal(err)
	}
	assertTracks(t, got, []graph.TrackID{trackB, trackC, trackD})
}

func TestByMemberLikeSim_DedupFirstWins(t *testing.T) {
	t.Parallel()
	// C is reachable from A (like 5, sim 0.2) and from B (like 2, sim 0.9).
	// The A occurrence ranks first, so C sits right after D.
	f := newFixture(t).
		members(1).
		tagged(tagT, trackA, trackB, trackC, trackD, trackE).
		like(1, trackA, 5).
		like(1, trackB, 2).
		similar(trackA, trackD, 0.8).
		similar(trackA, trackC, 0.2).
		similar(trackB, trackC, 0.9).
		similar(trackB, trackE, 0.1)

	got, err := NewRetriever(f.s, 3).ByMemberLikeSim(f.ctx, 1, tagT, 10)
	if err != nil {
		t.Fatal(err)
	}
	assertTracks(t, got, []graph.TrackID{trackD, trackC, trackE})
}

func TestByMemberLikeSim_TagFilterAndNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t).
		members(1).
		tagged(tagT, trackA, trackB).
		tagged(11, trackC).
		like(1, trackA, 1).
		similar(trackA, trackB, 0.4).
		similar(trackA, trackC, 0.9)

	r := NewRetriever(f.s, 3)
	got, err := r.ByMemberLikeSim(f.ctx, 1, tagT, 10)
	if err != nil {
		t.Fatal(err)
	}
	assertTracks(t, got, []graph.TrackID{trackB})

	var nf *graph.NotFoundError
	if _, err := r.ByMemberLikeSim(f.ctx, 99, tagT, 10); !errors.As(err, &nf) || nf.Kind != graph.KindMember {
		t.Errorf("expected member NotFoundError, got %v", err)
	}
	if _, err := r.ByMemberLikeSim(f.ctx, 1, 999, 10); !errors.As(err, &nf) || nf.Kind != graph.KindTag {
		t.Errorf("expected tag NotFoundError, got %v", err)
	}

	// Existing member with no likes yields an empty list, not an error.
	f.members(2)
	empty, err := r.ByMemberLikeSim(f.ctx, 2, tagT, 10)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty result, got %v (err=%v)", empty, err)
	}
}

func TestByFollowingLike_WeightOrder(t *testing.T) {
	t.Parallel()
	f := newFixture(t).
		members(1, 2, 3).
		tagged(tagT, trackA, trackB, trackC).
		follow(1, 2).
		follow(1, 3).
		like(2, trackA, 1).
		like(2, trackB, 4).
		like(3, trackA, 6).
		like(3, trackC, 4)

	got, err := NewRetriever(f.s, 3).ByFollowingLike(f.ctx, 1, tagT, 10)
	if err != nil {
		t.Fatal(err)
	}
	// A via member 3 (6), then B and C tie on 4 and fall back to id order.
	assertTracks(t, got, []graph.TrackID{trackA, trackB, trackC})

	got, _ = NewRetriever(f.s, 3).ByFollowingLike(f.ctx, 1, tagT, 2)
	assertTracks(t, got, []graph.TrackID{trackA, trackB})
}

func TestByFollowingLikeSim_CapPerFollowedLike(t *testing.T) {
	t.Parallel()
	f := newFixture(t).
		members(1, 2).
		tagged(tagT, trackA, trackB, trackC, trackD, trackE, trackX).
		follow(1, 2).
		like(2, trackA, 3).
		like(2, trackX, 1).
		similar(trackA, trackB, 0.9).
		similar(trackA, trackC, 0.8).
		similar(trackA, trackD, 0.7).
		similar(trackA, trackE, 0.6).
		similar(trackX, trackE, 0.99)

	got, err := NewRetriever(f.s, 3).ByFollowingLikeSim(f.ctx, 1, tagT, 10)
	if err != nil {
		t.Fatal(err)
	}
	// E is capped out of A's group but reaches the pool through X.
	assertTracks(t, got, []graph.TrackID{trackB, trackC, trackD, trackE})
}

func TestSimilarTrackIDs(t *testing.T) {
	t.Parallel()
	f := newFixture(t).
		tagged(tagT, trackA, trackB, trackC, trackD).
		similar(trackA, trackB, 0.2).
		similar(trackA, trackC, 0.9).
		similar(trackA, trackD, 0.2)

	r := NewRetriever(f.s, 3)
	got, err := r.SimilarTrackIDs(f.ctx, trackA, 10)
	if err != nil {
		t.Fatal(err)
	}
	assertTracks(t, got, []graph.TrackID{trackC, trackB, trackD})

	if _, err := r.SimilarTrackIDs(f.ctx, 4242, 10); !graph.IsNotFound(err) {
		t.Errorf("expected NotFound for unknown track, got %v", err)
	}
}

func TestFanMix_MaxAggregation(t *testing.T) {
	t.Parallel()
	f := newFixture(t).
		members(1, 2, 3).
		tagged(tagT, trackX, trackY).
		follow(2, 1).
		follow(3, 1).
		like(2, trackX, 3).
		like(3, trackX, 7).
		like(3, trackY, 2)

	got, err := NewRetriever(f.s, 3).FanMix(f.ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	assertTracks(t, got, []graph.TrackID{trackX, trackY})
}

func TestDiversify_Truncates(t *testing.T) {
	t.Parallel()
	rows := []graph.LikedSimilar{
		{Liker: 1, Source: 1, LikeWeight: 1, Candidate: 5, Similarity: 0.5},
		{Liker: 1, Source: 2, LikeWeight: 2, Candidate: 6, Similarity: 0.1},
		{Liker: 1, Source: 2, LikeWeight: 2, Candidate: 7, Similarity: 0.1},
	}
	got := Diversify(rows, 3, 2)
	assertTracks(t, got, []graph.TrackID{6, 7})

	if got := Diversify(nil, 3, 5); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
