// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	countLikesQuery = `
		SELECT tt.track_id, count(*) AS n
		FROM track_tags tt
		JOIN track_likes l ON l.track_id = tt.track_id
		WHERE tt.tag_id = ? AND l.liked_at >= ?
		GROUP BY tt.track_id`

	countViewsQuery = `
		SELECT tt.track_id, count(*) AS n
		FROM track_tags tt
		JOIN track_views v ON v.track_id = tt.track_id
		WHERE tt.tag_id = ? AND v.viewed_at >= ?
		GROUP BY tt.track_id`
)

// TagIDs lists every known tag in ascending order.
func (db *DB) TagIDs(ctx context.Context) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer closeQuietly(rows)

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountLikes returns, per track of tag, the number of likes given at or after since.
// Tracks without likes in the window are absent from the map.
func (db *DB) CountLikes(ctx context.Context, tag int64, since time.Time) (map[int64]int64, error) {
	return db.countByTrack(ctx, countLikesQuery, tag, since)
}

// CountViews returns, per track of tag, the number of plays at or after since.
func (db *DB) CountViews(ctx context.Context, tag int64, since time.Time) (map[int64]int64, error) {
	return db.countByTrack(ctx, countViewsQuery, tag, since)
}

func (db *DB) countByTrack(ctx context.Context, query string, tag int64, since time.Time) (map[int64]int64, error) {
	rows, err := db.conn.QueryContext(ctx, query, tag, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("count by track for tag %d: %w", tag, err)
	}
	defer closeQuietly(rows)
	return scanCounts(rows)
}

func scanCounts(rows *sql.Rows) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	for rows.Next() {
		var track, n int64
		if err := rows.Scan(&track, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[track] = n
	}
	return counts, rows.Err()
}
