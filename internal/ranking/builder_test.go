// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package ranking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/tunegraph/internal/cache"
)

// fakeCounter serves fixed counts per tag and records the windows it was asked for.
type fakeCounter struct {
	tags    []int64
	likes   map[int64]map[int64]int64
	views   map[int64]map[int64]int64
	failTag int64
	since   []time.Time
}

func (f *fakeCounter) TagIDs(context.Context) ([]int64, error) { return f.tags, nil }

func (f *fakeCounter) CountLikes(_ context.Context, tag int64, since time.Time) (map[int64]int64, error) {
	if tag == f.failTag {
		return nil, errors.New("scalar store unavailable")
	}
	f.since = append(f.since, since)
	return f.likes[tag], nil
}

func (f *fakeCounter) CountViews(_ context.Context, tag int64, _ time.Time) (map[int64]int64, error) {
	return f.views[tag], nil
}

var fixedNow = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

func newTestBuilder(counts Counter) (*Builder, *cache.MemorySortedSet) {
	sets := cache.NewMemorySortedSet()
	b := NewBuilder(counts, sets, DefaultConfig())
	b.now = func() time.Time { return fixedNow }
	return b, sets
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{in: "WEEK", want: PeriodWeek},
		{in: "month", want: PeriodMonth},
		{in: " Week ", want: PeriodWeek},
		{in: "DAY", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if tt.wantErr {
			var ipe *InvalidPeriodError
			if !errors.As(err, &ipe) {
				t.Errorf("ParsePeriod(%q): expected InvalidPeriodError, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePeriod(%q): expected %s, got %s (err=%v)", tt.in, tt.want, got, err)
		}
	}
}

func TestPeriodStart(t *testing.T) {
	t.Parallel()

	if got := PeriodWeek.Start(fixedNow); !got.Equal(fixedNow.AddDate(0, 0, -7)) {
		t.Errorf("expected week start 7 days back, got %v", got)
	}
	if got := PeriodMonth.Start(fixedNow); !got.Equal(time.Date(2026, 4, 20, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("expected month start one calendar month back, got %v", got)
	}
}

func TestRebuild_ScoreFormula(t *testing.T) {
	t.Parallel()
	counts := &fakeCounter{
		tags:  []int64{1},
		likes: map[int64]map[int64]int64{1: {100: 10}},
		views: map[int64]map[int64]int64{1: {100: 5}},
	}
	b, _ := newTestBuilder(counts)
	ctx := context.Background()

	if _, err := b.Rebuild(ctx, 1, PeriodWeek); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	top, err := b.GetTopTracks(ctx, 1, PeriodWeek, 0, 10)
	if err != nil {
		t.Fatalf("GetTopTracks: %v", err)
	}
	if len(top) != 1 || top[0].TrackID != 100 || top[0].Score != 50 {
		t.Errorf("expected [{100 50}], got %v", top)
	}
	if len(counts.since) != 1 || !counts.since[0].Equal(fixedNow.AddDate(0, 0, -7)) {
		t.Errorf("expected counts since one week ago, got %v", counts.since)
	}
}

func TestRebuild_BoundedPositiveAndOrdered(t *testing.T) {
	t.Parallel()
	likes := make(map[int64]int64)
	views := make(map[int64]int64)
	for track := int64(1); track <= 80; track++ {
		likes[track] = track % 7
		views[track] = track % 3
	}
	// Zero interactions never enter the leaderboard.
	likes[200] = 0
	counts := &fakeCounter{
		tags:  []int64{5},
		likes: map[int64]map[int64]int64{5: likes},
		views: map[int64]map[int64]int64{5: views},
	}
	b, sets := newTestBuilder(counts)
	ctx := context.Background()

	if _, err := b.Rebuild(ctx, 5, PeriodMonth); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	n, err := sets.Card(ctx, Key(5, PeriodMonth))
	if err != nil {
		t.Fatal(err)
	}
	if n > 50 {
		t.Errorf("expected at most 50 entries, got %d", n)
	}

	top, err := b.GetTopTracks(ctx, 5, PeriodMonth, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range top {
		if e.Score <= 0 {
			t.Errorf("entry %d has non-positive score %v", i, e.Score)
		}
		if i > 0 {
			prev := top[i-1]
			if e.Score > prev.Score || (e.Score == prev.Score && e.TrackID < prev.TrackID) {
				t.Errorf("entries %d and %d out of order: %v then %v", i-1, i, prev, e)
			}
		}
	}
}

func TestRebuild_Idempotent(t *testing.T) {
	t.Parallel()
	counts := &fakeCounter{
		tags:  []int64{1},
		likes: map[int64]map[int64]int64{1: {1: 3, 2: 1, 3: 3}},
		views: map[int64]map[int64]int64{1: {2: 4}},
	}
	b, _ := newTestBuilder(counts)
	ctx := context.Background()

	if _, err := b.Rebuild(ctx, 1, PeriodWeek); err != nil {
		t.Fatal(err)
	}
	first, _ := b.GetTopTracks(ctx, 1, PeriodWeek, 0, 50)
	if _, err := b.Rebuild(ctx, 1, PeriodWeek); err != nil {
		t.Fatal(err)
	}
	second, _ := b.GetTopTracks(ctx, 1, PeriodWeek, 0, 50)

	if len(first) != len(second) {
		t.Fatalf("expected identical leaderboards, got %v and %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("position %d differs: %v vs %v", i, first[i], second[i])
		}
	}
	// All three score 12, so track id decides.
	want := []int64{1, 2, 3}
	for i, id := range want {
		if first[i].TrackID != id {
			t.Errorf("expected order %v, got %v", want, first)
			break
		}
	}
}

func TestRebuild_ReplacesStaleEntries(t *testing.T) {
	t.Parallel()
	counts := &fakeCounter{
		tags:  []int64{1},
		likes: map[int64]map[int64]int64{1: {1: 1, 2: 1}},
	}
	b, _ := newTestBuilder(counts)
	ctx := context.Background()

	if _, err := b.Rebuild(ctx, 1, PeriodWeek); err != nil {
		t.Fatal(err)
	}
	counts.likes[1] = map[int64]int64{3: 2}
	if _, err := b.Rebuild(ctx, 1, PeriodWeek); err != nil {
		t.Fatal(err)
	}
	top, _ := b.GetTopTracks(ctx, 1, PeriodWeek, 0, 10)
	if len(top) != 1 || top[0].TrackID != 3 {
		t.Errorf("expected only track 3 after rebuild, got %v", top)
	}
}

func TestRebuild_InvalidPeriodWritesNothing(t *testing.T) {
	t.Parallel()
	counts := &fakeCounter{likes: map[int64]map[int64]int64{1: {1: 1}}}
	b, sets := newTestBuilder(counts)
	ctx := context.Background()

	_, err := b.Rebuild(ctx, 1, Period("DAY"))
	var ipe *InvalidPeriodError
	if !errors.As(err, &ipe) {
		t.Fatalf("expected InvalidPeriodError, got %v", err)
	}
	if n, _ := sets.Card(ctx, Key(1, Period("DAY"))); n != 0 {
		t.Errorf("expected nothing written, got %d entries", n)
	}
	if len(counts.since) != 0 {
		t.Error("expected no count queries for an invalid period")
	}
}

func TestRebuildAll_ContinuesPastFailingTag(t *testing.T) {
	t.Parallel()
	counts := &fakeCounter{
		tags:    []int64{1, 2, 3},
		likes:   map[int64]map[int64]int64{1: {10: 1}, 3: {30: 1}},
		failTag: 2,
	}
	b, _ := newTestBuilder(counts)
	ctx := context.Background()

	err := b.RebuildAll(ctx)
	if err == nil {
		t.Fatal("expected joined error for the failing tag")
	}
	for _, tag := range []int64{1, 3} {
		for _, p := range Periods {
			top, _ := b.GetTopTracks(ctx, tag, p, 0, 10)
			if len(top) != 1 {
				t.Errorf("tag %d %s: expected 1 entry, got %v", tag, p, top)
			}
		}
	}
}

func TestGetTopTracks_Paging(t *testing.T) {
	t.Parallel()
	likes := map[int64]int64{1: 5, 2: 4, 3: 3, 4: 2, 5: 1}
	counts := &fakeCounter{tags: []int64{1}, likes: map[int64]map[int64]int64{1: likes}}
	b, _ := newTestBuilder(counts)
	ctx := context.Background()

	if _, err := b.Rebuild(ctx, 1, PeriodWeek); err != nil {
		t.Fatal(err)
	}

	page, _ := b.GetTopTracks(ctx, 1, PeriodWeek, 1, 2)
	if len(page) != 2 || page[0].TrackID != 2 || page[1].TrackID != 3 {
		t.Errorf("expected tracks [2 3], got %v", page)
	}
	empty, err := b.GetTopTracks(ctx, 9, PeriodWeek, 0, 10)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty list for unknown key, got %v (err=%v)", empty, err)
	}
	none, _ := b.GetTopTracks(ctx, 1, PeriodWeek, 0, 0)
	if len(none) != 0 {
		t.Errorf("expected empty list for zero count, got %v", none)
	}
}
