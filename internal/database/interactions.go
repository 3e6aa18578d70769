// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package database

import (
	"context"
	"fmt"
	"time"
)

// UpsertMember records a member. Existing rows are left untouched.
func (db *DB) UpsertMember(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO members (id) VALUES (?) ON CONFLICT DO NOTHING`, id)
	if err != nil {
		return fmt.Errorf("upsert member %d: %w", id, err)
	}
	return nil
}

// UpsertTag records a tag, updating its name if it already exists.
func (db *DB) UpsertTag(ctx context.Context, id int64, name string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name`, id, name)
	if err != nil {
		return fmt.Errorf("upsert tag %d: %w", id, err)
	}
	return nil
}

// UpsertTrack records a track and its tags in one transaction. Tags are
// only attached when the track row is new, matching the graph's rule that
// a track's tags are fixed at publication.
func (db *DB) UpsertTrack(ctx context.Context, id, authorID int64, tagIDs []int64, createdAt time.Time) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tracks (id, author_id, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		id, authorID, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("insert track %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		for _, tag := range tagIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO track_tags (track_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
				id, tag); err != nil {
				return fmt.Errorf("tag track %d with %d: %w", id, tag, err)
			}
		}
	}
	return tx.Commit()
}

// RecordLike records that member liked track at the given time. A repeated
// like keeps the original timestamp.
func (db *DB) RecordLike(ctx context.Context, member, track int64, at time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO track_likes (member_id, track_id, liked_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		member, track, at.UTC())
	if err != nil {
		return fmt.Errorf("record like: %w", err)
	}
	return nil
}

// RemoveLike deletes the like of member on track, if any.
func (db *DB) RemoveLike(ctx context.Context, member, track int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM track_likes WHERE member_id = ? AND track_id = ?`, member, track)
	if err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}

// RecordView appends one play of track by member.
func (db *DB) RecordView(ctx context.Context, member, track int64, at time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO track_views (member_id, track_id, viewed_at) VALUES (?, ?, ?)`,
		member, track, at.UTC())
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}
