// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package algorithms

import (
	"sort"

	"github.com/tomtom215/tunegraph/internal/graph"
)

// sourceKey identifies one LIKE edge that candidates were reached through.
type sourceKey struct {
	liker  graph.MemberID
	source graph.TrackID
}

// Diversify applies two-stage ranking to like-then-similar rows.
//
// Stage one groups rows by their LIKE edge and keeps the perSource most
// similar candidates of each group. Stage two pools the survivors, orders
// them by like weight then similarity (both descending), drops repeated
// candidates after their first occurrence and truncates to limit.
func Diversify(rows []graph.LikedSimilar, perSource, limit int) []graph.TrackID {
	groups := make(map[sourceKey][]graph.LikedSimilar)
	for _, row := range rows {
		k := sourceKey{liker: row.Liker, source: row.Source}
		groups[k] = append(groups[k], row)
	}

	pool := make([]graph.LikedSimilar, 0, len(rows))
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool {
			if g[i].Similarity != g[j].Similarity {
				return g[i].Similarity > g[j].Similarity
			}
			return g[i].Candidate < g[j].Candidate
		})
		if perSource > 0 && len(g) > perSource {
			g = g[:perSource]
		}
		pool = append(pool, g...)
	}

	sort.Slice(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.LikeWeight != b.LikeWeight {
			return a.LikeWeight > b.LikeWeight
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		return a.Candidate < b.Candidate
	})

	ids := make([]graph.TrackID, len(pool))
	for i, row := range pool {
		ids[i] = row.Candidate
	}
	return truncate(dedup(ids), limit)
}

// dedup keeps the first occurrence of each id.
func dedup(ids []graph.TrackID) []graph.TrackID {
	seen := make(map[graph.TrackID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func truncate(ids []graph.TrackID, limit int) []graph.TrackID {
	if limit > 0 && len(ids) > limit {
		return ids[:limit]
	}
	return ids
}
