// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package database

import (
	"context"
	"fmt"
)

// Tables:
//   - members, tags, tracks: the entities the graph vertices mirror
//   - track_tags: which tags a track was published with
//   - track_likes: one row per (member, track) like, with the time it was given
//   - track_views: append-only play log
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS members (
		id         BIGINT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id   BIGINT PRIMARY KEY,
		name VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS tracks (
		id         BIGINT PRIMARY KEY,
		author_id  BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS track_tags (
		track_id BIGINT NOT NULL,
		tag_id   BIGINT NOT NULL,
		PRIMARY KEY (track_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS track_likes (
		member_id BIGINT NOT NULL,
		track_id  BIGINT NOT NULL,
		liked_at  TIMESTAMP NOT NULL,
		PRIMARY KEY (member_id, track_id)
	)`,
	`CREATE TABLE IF NOT EXISTS track_views (
		member_id BIGINT NOT NULL,
		track_id  BIGINT NOT NULL,
		viewed_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_track_tags_tag ON track_tags (tag_id)`,
	`CREATE INDEX IF NOT EXISTS idx_track_likes_track ON track_likes (track_id, liked_at)`,
	`CREATE INDEX IF NOT EXISTS idx_track_views_track ON track_views (track_id, viewed_at)`,
}

func (db *DB) createSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %.40q: %w", stmt, err)
		}
	}
	return nil
}
