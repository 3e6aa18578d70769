// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package graph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/graph/memstore"
)

// seed creates members 1 and 2, tags 10 and 11, and track 100 tagged with both.
func seed(t *testing.T) (*graph.Model, *memstore.Store) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	model := graph.NewModel(store, graph.DefaultWeights())

	for _, id := range []graph.MemberID{1, 2} {
		if err := model.RegisterMember(ctx, id); err != nil {
			t.Fatalf("register member: %v", err)
		}
	}
	for _, id := range []graph.TagID{10, 11} {
		if err := model.DefineTag(ctx, id); err != nil {
			t.Fatalf("define tag: %v", err)
		}
	}
	if err := model.PublishTrack(ctx, 100, 2, []graph.TagID{10, 11}); err != nil {
		t.Fatalf("publish track: %v", err)
	}
	return model, store
}

func TestRecordInteraction_AccumulatesLikeAndPrefer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	model, store := seed(t)

	if err := model.RecordInteraction(ctx, 1, 100, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := model.RecordInteraction(ctx, 1, 100, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w, ok := store.LikeWeight(1, 100); !ok || w != 5 {
		t.Errorf("expected like weight 5, got %v (exists=%v)", w, ok)
	}
	for _, tag := range []graph.TagID{10, 11} {
		if w, _ := store.PreferWeight(1, tag); w != 5 {
			t.Errorf("expected prefer weight 5 for tag %d, got %v", tag, w)
		}
	}
}

func TestRecordInteraction_NegativeDeltaHasNoFloor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	model, store := seed(t)

	if err := model.RecordInteraction(ctx, 1, 100, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := model.Record(ctx, 1, 100, graph.InteractionDislike); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w, _ := store.LikeWeight(1, 100); w != -2 {
		t.Errorf("expected like weight -2, got %v", w)
	}
}

func TestRecordInteraction_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	model, store := seed(t)

	tests := []struct {
		name   string
		member graph.MemberID
		track  graph.TrackID
		kind   graph.VertexKind
		id     int64
	}{
		{"missing member", 99, 100, graph.KindMember, 99},
		{"missing track", 1, 999, graph.KindTrack, 999},
	}

	for _, tt := range tests {
		err := model.RecordInteraction(ctx, tt.member, tt.track, 1)
		var nf *graph.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("%s: expected NotFoundError, got %v", tt.name, err)
		}
		if nf.Kind != tt.kind || nf.ID != tt.id {
			t.Errorf("%s: expected %s %d, got %s %d", tt.name, tt.kind, tt.id, nf.Kind, nf.ID)
		}
		if !graph.IsNotFound(err) {
			t.Errorf("%s: expected errors.Is(err, ErrNotFound)", tt.name)
		}
	}

	if _, ok := store.LikeWeight(1, 100); ok {
		t.Error("expected no like edge after failed interactions")
	}
}

func TestRecord_UnknownInteraction(t *testing.T) {
	t.Parallel()
	model, _ := seed(t)

	err := model.Record(context.Background(), 1, 100, graph.Interaction("share"))
	if !errors.Is(err, graph.ErrUnknownInteraction) {
		t.Errorf("expected ErrUnknownInteraction, got %v", err)
	}
}

func TestFollowUnfollow_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	model, store := seed(t)

	for i := 0; i < 2; i++ {
		if err := model.Follow(ctx, 1, 2); err != nil {
			t.Fatalf("follow: %v", err)
		}
	}
	if !store.Follows(1, 2) {
		t.Fatal("expected follow edge")
	}

	for i := 0; i < 2; i++ {
		if err := model.Unfollow(ctx, 1, 2); err != nil {
			t.Fatalf("unfollow: %v", err)
		}
	}
	if store.Follows(1, 2) {
		t.Error("expected follow edge to be removed")
	}

	if err := model.Follow(ctx, 1, 42); !graph.IsNotFound(err) {
		t.Errorf("expected not found for unknown member, got %v", err)
	}
}

func TestPublishTrack_HaveIsImmutable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	model, store := seed(t)

	if err := model.DefineTag(ctx, 12); err != nil {
		t.Fatalf("define tag: %v", err)
	}
	if err := model.PublishTrack(ctx, 100, 1, []graph.TagID{12}); err != nil {
		t.Fatalf("republish: %v", err)
	}

	tags, err := store.TagsOfTrack(ctx, 100)
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	if len(tags) != 2 || tags[0] != 10 || tags[1] != 11 {
		t.Errorf("expected tags [10 11], got %v", tags)
	}
	if !store.Wrote(1, 100) || !store.Wrote(2, 100) {
		t.Error("expected both authorship edges")
	}
}

func TestPublishTrack_UnknownTag(t *testing.T) {
	t.Parallel()
	model, _ := seed(t)

	err := model.PublishTrack(context.Background(), 200, 1, []graph.TagID{77})
	var nf *graph.NotFoundError
	if !errors.As(err, &nf) || nf.Kind != graph.KindTag {
		t.Errorf("expected tag NotFoundError, got %v", err)
	}
}

func TestRecordAuthorship(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	model, store := seed(t)

	if err := model.RecordAuthorship(ctx, 1, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.Wrote(1, 100) {
		t.Error("expected write edge")
	}
	if err := model.RecordAuthorship(ctx, 1, 555); !graph.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestSetWeight(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	model, store := seed(t)

	if err := model.RecordInteraction(ctx, 1, 100, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := model.SetWeight(ctx, graph.EdgeLike, 1, 100, 0.5); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	if w, _ := store.LikeWeight(1, 100); w != 0.5 {
		t.Errorf("expected like weight 0.5, got %v", w)
	}

	if err := model.SetWeight(ctx, graph.EdgePrefer, 1, 10, 7); err != nil {
		t.Fatalf("set prefer weight: %v", err)
	}
	if w, _ := store.PreferWeight(1, 10); w != 7 {
		t.Errorf("expected prefer weight 7, got %v", w)
	}

	if err := model.SetWeight(ctx, graph.EdgeFollow, 1, 2, 1); !errors.Is(err, graph.ErrUnknownEdge) {
		t.Errorf("expected ErrUnknownEdge for FOLLOW, got %v", err)
	}
	if err := model.SetWeight(ctx, graph.EdgePrefer, 1, 99, 1); !graph.IsNotFound(err) {
		t.Errorf("expected not found for unknown tag, got %v", err)
	}
}

func TestSetEnabled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	model, _ := seed(t)

	if err := model.SetEnabled(ctx, graph.KindTrack, 100, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := model.SetEnabled(ctx, graph.KindTrack, 404, false); !graph.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := model.SetEnabled(ctx, graph.VertexKind("Album"), 1, false); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestOnChange_RunsAfterSuccessfulMutations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	model, _ := seed(t)

	calls := 0
	model.OnChange(func() { calls++ })

	if err := model.Follow(ctx, 1, 2); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 change after follow, got %d", calls)
	}

	if err := model.Record(ctx, 1, 100, graph.InteractionLike); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := model.SetEnabled(ctx, graph.KindMember, 2, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 changes, got %d", calls)
	}

	if err := model.Unfollow(ctx, 1, 9); !graph.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected a failed mutation to leave hooks untouched, got %d calls", calls)
	}
}
