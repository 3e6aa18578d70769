// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package database

import (
	"context"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Threads: 1})
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_InMemory(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("expected ping to succeed, got %v", err)
	}
}

func TestTagIDs_SortedAndIdempotent(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	for _, id := range []int64{30, 10, 20, 10} {
		if err := db.UpsertTag(ctx, id, "tag"); err != nil {
			t.Fatalf("upsert tag %d: %v", id, err)
		}
	}

	ids, err := db.TagIDs(ctx)
	if err != nil {
		t.Fatalf("TagIDs: %v", err)
	}
	want := []int64{10, 20, 30}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("expected %v, got %v", want, ids)
			break
		}
	}
}

func TestCountLikesAndViews_Window(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	weekAgo := now.AddDate(0, 0, -7)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}

	must(db.UpsertTag(ctx, 1, "rock"))
	must(db.UpsertTag(ctx, 2, "jazz"))
	must(db.UpsertTrack(ctx, 100, 9, []int64{1}, now))
	must(db.UpsertTrack(ctx, 101, 9, []int64{1, 2}, now))

	for m := int64(1); m <= 3; m++ {
		must(db.UpsertMember(ctx, m))
		must(db.RecordLike(ctx, m, 100, now.Add(-time.Hour)))
	}
	// Outside the window.
	must(db.RecordLike(ctx, 4, 100, weekAgo.Add(-time.Hour)))
	must(db.RecordLike(ctx, 1, 101, now))
	// Repeat like keeps a single row.
	must(db.RecordLike(ctx, 1, 101, now))

	must(db.RecordView(ctx, 1, 101, now))
	must(db.RecordView(ctx, 1, 101, now))
	must(db.RecordView(ctx, 2, 100, weekAgo.Add(-time.Minute)))

	likes, err := db.CountLikes(ctx, 1, weekAgo)
	must(err)
	if likes[100] != 3 {
		t.Errorf("expected 3 likes on track 100, got %d", likes[100])
	}
	if likes[101] != 1 {
		t.Errorf("expected 1 like on track 101, got %d", likes[101])
	}

	views, err := db.CountViews(ctx, 1, weekAgo)
	must(err)
	if views[101] != 2 {
		t.Errorf("expected 2 views on track 101, got %d", views[101])
	}
	if _, ok := views[100]; ok {
		t.Errorf("expected no in-window views on track 100, got %d", views[100])
	}

	jazz, err := db.CountLikes(ctx, 2, weekAgo)
	must(err)
	if len(jazz) != 1 || jazz[101] != 1 {
		t.Errorf("expected only track 101 under tag 2, got %v", jazz)
	}

	must(db.RemoveLike(ctx, 1, 100))
	likes, err = db.CountLikes(ctx, 1, weekAgo)
	must(err)
	if likes[100] != 2 {
		t.Errorf("expected 2 likes after removal, got %d", likes[100])
	}
}

func TestUpsertTrack_TagsFixedAtCreation(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	if err := db.UpsertTrack(ctx, 7, 1, []int64{1}, now); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertTrack(ctx, 7, 1, []int64{2}, now); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordLike(ctx, 1, 7, now); err != nil {
		t.Fatal(err)
	}

	counts, err := db.CountLikes(ctx, 2, now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 0 {
		t.Errorf("expected second publication to leave tags unchanged, got %v", counts)
	}
}
