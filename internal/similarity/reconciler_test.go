// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package similarity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/tunegraph/internal/graph"
)

// fakeSource returns canned neighbors.
type fakeSource struct {
	neighbors Neighbors
	err       error
	entered   chan struct{}
	block     chan struct{}
}

func (f *fakeSource) Fetch(ctx context.Context, _ []graph.TrackID) (Neighbors, error) {
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.neighbors, f.err
}

// fakeStore keeps SIMILAR edges in a map and fails batches on demand.
type fakeStore struct {
	mu        sync.Mutex
	tracks    []graph.TrackID
	edges     map[[2]graph.TrackID]float64
	deletes   int
	failFirst graph.TrackID // batches whose first edge starts here fail
}

func newFakeStore(tracks ...graph.TrackID) *fakeStore {
	return &fakeStore{tracks: tracks, edges: make(map[[2]graph.TrackID]float64)}
}

func (s *fakeStore) TrackIDs(context.Context) ([]graph.TrackID, error) { return s.tracks, nil }

func (s *fakeStore) DeleteAllSimilar(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.edges))
	s.edges = make(map[[2]graph.TrackID]float64)
	s.deletes++
	return n, nil
}

func (s *fakeStore) MergeSimilar(_ context.Context, edges []graph.SimilarEdge) error {
	if len(edges) > 0 && s.failFirst != 0 && edges[0].From == s.failFirst {
		return errors.New("transaction rolled back")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range edges {
		s.edges[[2]graph.TrackID{e.From, e.To}] = e.Similarity
	}
	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}

func TestFlattenAndPartition(t *testing.T) {
	t.Parallel()

	edges := Flatten(Neighbors{
		2: {{TrackID: 1, Similarity: 0.3}, {TrackID: 2, Similarity: 1}},
		1: {{TrackID: 3, Similarity: 0.8}, {TrackID: 2, Similarity: 0.9}},
	})
	want := []Edge{{From: 1, To: 2, Similarity: 0.9}, {From: 1, To: 3, Similarity: 0.8}, {From: 2, To: 1, Similarity: 0.3}}
	if len(edges) != len(want) {
		t.Fatalf("expected %v, got %v", want, edges)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edge %d: expected %v, got %v", i, want[i], edges[i])
		}
	}

	batches := Partition(make([]Edge, 2500), 1000)
	if len(batches) != 3 || len(batches[0]) != 1000 || len(batches[2]) != 500 {
		t.Errorf("expected batches of 1000/1000/500, got %d batches", len(batches))
	}
	if got := Partition(nil, 1000); len(got) != 0 {
		t.Errorf("expected no batches for no edges, got %d", len(got))
	}
}

func TestReconciler_ReplacesEdges(t *testing.T) {
	t.Parallel()

	store := newFakeStore(1, 2, 3)
	store.edges[[2]graph.TrackID{9, 8}] = 0.1
	source := &fakeSource{neighbors: Neighbors{
		1: {{TrackID: 2, Similarity: 0.9}},
		2: {{TrackID: 3, Similarity: 0.5}},
	}}

	r := NewReconciler(store, source, Config{BatchSize: 1, Workers: 2, Timeout: time.Minute})
	var hooked Result
	r.OnComplete(func(res Result) { hooked = res })

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Aborted || res.Edges != 2 || res.Batches != 2 || res.Removed != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Outcome() != "completed" {
		t.Errorf("expected completed outcome, got %s", res.Outcome())
	}
	if store.count() != 2 {
		t.Errorf("expected 2 edges after run, got %d", store.count())
	}
	if _, ok := store.edges[[2]graph.TrackID{9, 8}]; ok {
		t.Error("expected stale edge removed")
	}
	if hooked.RunID != res.RunID {
		t.Error("expected completion hook to receive the run result")
	}
	if last, ok := r.LastResult(); !ok || last.RunID != res.RunID {
		t.Error("expected LastResult to report the run")
	}
}

// stalledStore never finishes a batch before its context ends.
type stalledStore struct {
	*fakeStore
}

func (s stalledStore) MergeSimilar(ctx context.Context, _ []graph.SimilarEdge) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestReconciler_DeadlineCancelsOutstandingBatches(t *testing.T) {
	t.Parallel()

	store := stalledStore{newFakeStore(1, 2, 3)}
	source := &fakeSource{neighbors: Neighbors{
		1: {{TrackID: 2, Similarity: 0.9}, {TrackID: 3, Similarity: 0.4}},
		2: {{TrackID: 3, Similarity: 0.5}},
	}}

	r := NewReconciler(store, source, Config{BatchSize: 1, Workers: 1, Timeout: 20 * time.Millisecond})
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("expected the run to complete despite the deadline, got %v", err)
	}
	if res.Batches != 3 || res.Canceled != 3 {
		t.Errorf("expected all 3 batches canceled, got batches=%d canceled=%d", res.Batches, res.Canceled)
	}
	if len(res.Failed) != 0 {
		t.Errorf("expected canceled batches not to count as failures, got %+v", res.Failed)
	}
	if res.Outcome() != "partial" {
		t.Errorf("expected partial outcome, got %s", res.Outcome())
	}
	if store.deletes != 1 {
		t.Errorf("expected existing edges deleted once, got %d", store.deletes)
	}
}

func TestReconciler_AbortsOnEmptyResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source *fakeSource
	}{
		{name: "empty map", source: &fakeSource{neighbors: Neighbors{}}},
		{name: "service error", source: &fakeSource{err: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newFakeStore(1, 2)
			store.edges[[2]graph.TrackID{1, 2}] = 0.7

			r := NewReconciler(store, tt.source, DefaultConfig())
			hookCalled := false
			r.OnComplete(func(Result) { hookCalled = true })

			res, err := r.Run(context.Background())
			var ese *ExternalServiceError
			if !errors.As(err, &ese) {
				t.Fatalf("expected ExternalServiceError, got %v", err)
			}
			if !res.Aborted {
				t.Error("expected aborted result")
			}
			if store.deletes != 0 || store.count() != 1 {
				t.Errorf("expected SIMILAR edges untouched, deletes=%d edges=%d", store.deletes, store.count())
			}
			if hookCalled {
				t.Error("completion hook must not run for an aborted run")
			}
		})
	}
}

func TestReconciler_PartialFailureKeepsSiblings(t *testing.T) {
	t.Parallel()

	store := newFakeStore(1, 2, 3)
	store.failFirst = 2
	source := &fakeSource{neighbors: Neighbors{
		1: {{TrackID: 2, Similarity: 0.9}},
		2: {{TrackID: 3, Similarity: 0.5}},
		3: {{TrackID: 1, Similarity: 0.4}},
	}}

	r := NewReconciler(store, source, Config{BatchSize: 1, Workers: 3, Timeout: time.Minute})
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("expected run to complete despite batch failure, got %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0].Batch != 1 || res.Failed[0].Size != 1 {
		t.Errorf("expected batch 1 recorded as failed, got %+v", res.Failed)
	}
	if store.count() != 2 {
		t.Errorf("expected sibling batches written, got %d edges", store.count())
	}
	if res.Outcome() != "partial" {
		t.Errorf("expected partial outcome, got %s", res.Outcome())
	}
}

func TestReconciler_RejectsOverlap(t *testing.T) {
	t.Parallel()

	store := newFakeStore(1)
	source := &fakeSource{
		neighbors: Neighbors{1: {{TrackID: 2, Similarity: 0.1}}},
		entered:   make(chan struct{}),
		block:     make(chan struct{}),
	}
	r := NewReconciler(store, source, DefaultConfig())

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background())
		done <- err
	}()

	select {
	case <-source.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first run never started")
	}

	if _, err := r.Run(context.Background()); !errors.Is(err, ErrReconcileInProgress) {
		t.Errorf("expected ErrReconcileInProgress, got %v", err)
	}

	close(source.block)
	if err := <-done; err != nil {
		t.Errorf("first run failed: %v", err)
	}
}
