// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

// Package memstore is an in-process graph.Store backed by adjacency maps.
// It serves tests and single-node deployments that do not run Neo4j.
// All traversal results are returned in ascending id order.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/tomtom215/tunegraph/internal/graph"
)

type vertexKey struct {
	kind graph.VertexKind
	id   int64
}

// Store implements graph.Store in memory. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	// vertices maps each vertex to its enabled flag.
	vertices map[vertexKey]bool

	likes     map[graph.MemberID]map[graph.TrackID]float64
	prefers   map[graph.MemberID]map[graph.TagID]float64
	have      map[graph.TrackID]map[graph.TagID]struct{}
	similar   map[graph.TrackID]map[graph.TrackID]float64
	follows   map[graph.MemberID]map[graph.MemberID]struct{}
	followers map[graph.MemberID]map[graph.MemberID]struct{}
	writes    map[graph.MemberID]map[graph.TrackID]struct{}
}

var _ graph.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		vertices:  make(map[vertexKey]bool),
		likes:     make(map[graph.MemberID]map[graph.TrackID]float64),
		prefers:   make(map[graph.MemberID]map[graph.TagID]float64),
		have:      make(map[graph.TrackID]map[graph.TagID]struct{}),
		similar:   make(map[graph.TrackID]map[graph.TrackID]float64),
		follows:   make(map[graph.MemberID]map[graph.MemberID]struct{}),
		followers: make(map[graph.MemberID]map[graph.MemberID]struct{}),
		writes:    make(map[graph.MemberID]map[graph.TrackID]struct{}),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

// MergeVertex implements graph.VertexStore.
func (s *Store) MergeVertex(ctx context.Context, kind graph.VertexKind, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !kind.Valid() {
		return fmt.Errorf("unknown vertex kind %q", string(kind))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := vertexKey{kind, id}
	if _, ok := s.vertices[k]; !ok {
		s.vertices[k] = true
	}
	return nil
}

// VertexExists implements graph.VertexStore.
func (s *Store) VertexExists(ctx context.Context, kind graph.VertexKind, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.vertices[vertexKey{kind, id}]
	return ok, nil
}

// SetVertexEnabled implements graph.VertexStore.
func (s *Store) SetVertexEnabled(ctx context.Context, kind graph.VertexKind, id int64, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := vertexKey{kind, id}
	if _, ok := s.vertices[k]; !ok {
		return graph.NewNotFound(kind, id)
	}
	s.vertices[k] = enabled
	return nil
}

// TrackIDs implements graph.VertexStore.
func (s *Store) TrackIDs(ctx context.Context) ([]graph.TrackID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]graph.TrackID, 0)
	for k := range s.vertices {
		if k.kind == graph.KindTrack {
			ids = append(ids, graph.TrackID(k.id))
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// TagsOfTrack implements graph.VertexStore.
func (s *Store) TagsOfTrack(ctx context.Context, track graph.TrackID) ([]graph.TagID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.have[track]), nil
}

// AddLikeWeight implements graph.EdgeWriter.
func (s *Store) AddLikeWeight(ctx context.Context, member graph.MemberID, track graph.TrackID, delta float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inner(s.likes, member)[track] += delta
	return nil
}

// AddPreferWeight implements graph.EdgeWriter.
func (s *Store) AddPreferWeight(ctx context.Context, member graph.MemberID, tag graph.TagID, delta float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inner(s.prefers, member)[tag] += delta
	return nil
}

// SetEdgeWeight implements graph.EdgeWriter.
func (s *Store) SetEdgeWeight(ctx context.Context, kind graph.EdgeKind, from, to int64, weight float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case graph.EdgeLike:
		inner(s.likes, graph.MemberID(from))[graph.TrackID(to)] = weight
	case graph.EdgePrefer:
		inner(s.prefers, graph.MemberID(from))[graph.TagID(to)] = weight
	default:
		return fmt.Errorf("%w: %s has no weight", graph.ErrUnknownEdge, kind)
	}
	return nil
}

// MergeHave implements graph.EdgeWriter.
func (s *Store) MergeHave(ctx context.Context, track graph.TrackID, tag graph.TagID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inner(s.have, track)[tag] = struct{}{}
	return nil
}

// MergeFollow implements graph.EdgeWriter.
func (s *Store) MergeFollow(ctx context.Context, from, to graph.MemberID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inner(s.follows, from)[to] = struct{}{}
	inner(s.followers, to)[from] = struct{}{}
	return nil
}

// DeleteFollow implements graph.EdgeWriter.
func (s *Store) DeleteFollow(ctx context.Context, from, to graph.MemberID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.follows[from], to)
	delete(s.followers[to], from)
	return nil
}

// MergeWrite implements graph.EdgeWriter.
func (s *Store) MergeWrite(ctx context.Context, member graph.MemberID, track graph.TrackID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inner(s.writes, member)[track] = struct{}{}
	return nil
}

// DeleteAllSimilar implements graph.SimilarityWriter.
func (s *Store) DeleteAllSimilar(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, targets := range s.similar {
		n += int64(len(targets))
	}
	s.similar = make(map[graph.TrackID]map[graph.TrackID]float64)
	return n, nil
}

// MergeSimilar implements graph.SimilarityWriter. The batch is applied under
// one lock acquisition, which is the in-memory analogue of a transaction.
func (s *Store) MergeSimilar(ctx context.Context, edges []graph.SimilarEdge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range edges {
		if !s.vertexExistsLocked(graph.KindTrack, int64(e.From)) || !s.vertexExistsLocked(graph.KindTrack, int64(e.To)) {
			continue
		}
		inner(s.similar, e.From)[e.To] = e.Similarity
	}
	return nil
}

// LikedSimilar implements graph.Traverser.
func (s *Store) LikedSimilar(ctx context.Context, member graph.MemberID, tag graph.TagID) ([]graph.LikedSimilar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.enabledLocked(graph.KindMember, int64(member)) {
		return nil, nil
	}
	return s.likedSimilarLocked([]graph.MemberID{member}, tag), nil
}

// FollowingLiked implements graph.Traverser.
func (s *Store) FollowingLiked(ctx context.Context, member graph.MemberID, tag graph.TagID) ([]graph.LikedTrack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []graph.LikedTrack
	for _, f := range s.enabledMembersLocked(s.follows[member]) {
		for _, t := range sortedKeys(s.likes[f]) {
			if !s.enabledLocked(graph.KindTrack, int64(t)) || !s.hasTagLocked(t, tag) {
				continue
			}
			rows = append(rows, graph.LikedTrack{Member: f, Track: t, Weight: s.likes[f][t]})
		}
	}
	return rows, nil
}

// FollowingLikedSimilar implements graph.Traverser.
func (s *Store) FollowingLikedSimilar(ctx context.Context, member graph.MemberID, tag graph.TagID) ([]graph.LikedSimilar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.likedSimilarLocked(s.enabledMembersLocked(s.follows[member]), tag), nil
}

// SimilarTracks implements graph.Traverser.
func (s *Store) SimilarTracks(ctx context.Context, track graph.TrackID) ([]graph.SimilarTrack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []graph.SimilarTrack
	for _, c := range sortedKeys(s.similar[track]) {
		if !s.enabledLocked(graph.KindTrack, int64(c)) {
			continue
		}
		rows = append(rows, graph.SimilarTrack{Track: c, Similarity: s.similar[track][c]})
	}
	return rows, nil
}

// FollowerLiked implements graph.Traverser.
func (s *Store) FollowerLiked(ctx context.Context, member graph.MemberID) ([]graph.LikedTrack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []graph.LikedTrack
	for _, f := range s.enabledMembersLocked(s.followers[member]) {
		for _, t := range sortedKeys(s.likes[f]) {
			if !s.enabledLocked(graph.KindTrack, int64(t)) {
				continue
			}
			rows = append(rows, graph.LikedTrack{Member: f, Track: t, Weight: s.likes[f][t]})
		}
	}
	return rows, nil
}

// LikeWeight returns the weight of LIKE(member, track) and whether the edge exists.
func (s *Store) LikeWeight(member graph.MemberID, track graph.TrackID) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.likes[member][track]
	return w, ok
}

// PreferWeight returns the weight of PREFER(member, tag) and whether the edge exists.
func (s *Store) PreferWeight(member graph.MemberID, tag graph.TagID) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.prefers[member][tag]
	return w, ok
}

// Follows reports whether FOLLOW(from, to) exists.
func (s *Store) Follows(from, to graph.MemberID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.follows[from][to]
	return ok
}

// Wrote reports whether WRITE(member, track) exists.
func (s *Store) Wrote(member graph.MemberID, track graph.TrackID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.writes[member][track]
	return ok
}

// SimilarEdges returns every SIMILAR edge ordered by (From, To).
func (s *Store) SimilarEdges() []graph.SimilarEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var edges []graph.SimilarEdge
	for _, from := range sortedKeys(s.similar) {
		for _, to := range sortedKeys(s.similar[from]) {
			edges = append(edges, graph.SimilarEdge{From: from, To: to, Similarity: s.similar[from][to]})
		}
	}
	return edges
}

func (s *Store) likedSimilarLocked(likers []graph.MemberID, tag graph.TagID) []graph.LikedSimilar {
	var rows []graph.LikedSimilar
	for _, m := range likers {
		for _, src := range sortedKeys(s.likes[m]) {
			if !s.enabledLocked(graph.KindTrack, int64(src)) {
				continue
			}
			for _, c := range sortedKeys(s.similar[src]) {
				if !s.enabledLocked(graph.KindTrack, int64(c)) || !s.hasTagLocked(c, tag) {
					continue
				}
				rows = append(rows, graph.LikedSimilar{
					Liker:      m,
					Source:     src,
					LikeWeight: s.likes[m][src],
					Candidate:  c,
					Similarity: s.similar[src][c],
				})
			}
		}
	}
	return rows
}

func (s *Store) enabledMembersLocked(set map[graph.MemberID]struct{}) []graph.MemberID {
	out := make([]graph.MemberID, 0, len(set))
	for _, m := range sortedKeys(set) {
		if s.enabledLocked(graph.KindMember, int64(m)) {
			out = append(out, m)
		}
	}
	return out
}

func (s *Store) vertexExistsLocked(kind graph.VertexKind, id int64) bool {
	_, ok := s.vertices[vertexKey{kind, id}]
	return ok
}

func (s *Store) enabledLocked(kind graph.VertexKind, id int64) bool {
	return s.vertices[vertexKey{kind, id}]
}

func (s *Store) hasTagLocked(track graph.TrackID, tag graph.TagID) bool {
	_, ok := s.have[track][tag]
	return ok
}

// inner returns the adjacency map of key, creating it on first use.
func inner[K, V comparable, T any](outer map[K]map[V]T, key K) map[V]T {
	m, ok := outer[key]
	if !ok {
		m = make(map[V]T)
		outer[key] = m
	}
	return m
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
