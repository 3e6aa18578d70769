// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package cache

import (
	"context"
	"time"
)

// ScoredMember is one entry of a sorted set.
type ScoredMember struct {
	Member int64
	Score  float64
}

// SortedSet stores named sets of scored members.
type SortedSet interface {
	// Add inserts members into key, replacing the score of members already present.
	Add(ctx context.Context, key string, members ...ScoredMember) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// ReverseRange returns members of key by descending score, ties by
	// ascending member, from rank start through rank stop inclusive.
	// A negative stop means the last member.
	ReverseRange(ctx context.Context, key string, start, stop int) ([]ScoredMember, error)

	// Card returns the number of members in key.
	Card(ctx context.Context, key string) (int, error)

	// Expire sets a time to live on every member currently in key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Flush removes every key.
	Flush(ctx context.Context) error

	Close() error
}

// descending orders members by score descending, then member ascending.
func descending(a, b ScoredMember) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Member < b.Member
}

// clampRange converts start/stop ranks into slice bounds for n members.
// ok is false when the range selects nothing.
func clampRange(start, stop, n int) (from, to int, ok bool) {
	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop + 1, true
}
