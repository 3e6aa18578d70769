// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

// Package neo4jstore implements graph.Store on Neo4j over Bolt.
//
// Every write runs in a managed write transaction, so the driver retries
// transient cluster errors. Reads run in managed read transactions. Each
// call opens its own session; sessions are cheap and not goroutine safe,
// which lets the reconciliation workers write batches concurrently.
package neo4jstore

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/logging"
)

// Config holds Neo4j connection settings.
type Config struct {
	URI      string
	Username string
	Password string

	// Database selects a named database. Empty means the server default.
	Database string

	MaxConnectionPoolSize        int
	ConnectionAcquisitionTimeout time.Duration
}

// Store implements graph.Store against a Neo4j server.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	logger   zerolog.Logger
}

var _ graph.Store = (*Store)(nil)

// Open connects to Neo4j, verifies connectivity and ensures the id
// uniqueness constraints exist.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			if cfg.MaxConnectionPoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
			}
			if cfg.ConnectionAcquisitionTimeout > 0 {
				c.ConnectionAcquisitionTimeout = cfg.ConnectionAcquisitionTimeout
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	s := New(driver, cfg.Database)
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}

	s.logger.Info().Str("uri", cfg.URI).Str("database", cfg.Database).Msg("Connected to Neo4j")
	return s, nil
}

// New wraps an existing driver. The caller keeps ownership until Close.
func New(driver neo4j.DriverWithContext, database string) *Store {
	return &Store{
		driver:   driver,
		database: database,
		logger:   logging.WithComponent("neo4j"),
	}
}

// EnsureSchema creates the id uniqueness constraint for every vertex label.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, kind := range []graph.VertexKind{graph.KindMember, graph.KindTrack, graph.KindTag} {
		query := fmt.Sprintf(schemaConstraintTmpl, lower(kind), kind)
		if _, err := s.write(ctx, query, nil); err != nil {
			return fmt.Errorf("create %s constraint: %w", kind, err)
		}
	}
	return nil
}

// Ping implements graph.Store.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close implements graph.Store.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// MergeVertex implements graph.VertexStore.
func (s *Store) MergeVertex(ctx context.Context, kind graph.VertexKind, id int64) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown vertex kind %q", string(kind))
	}
	_, err := s.write(ctx, fmt.Sprintf(mergeVertexTmpl, kind), map[string]any{"id": id})
	return err
}

// VertexExists implements graph.VertexStore.
func (s *Store) VertexExists(ctx context.Context, kind graph.VertexKind, id int64) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("unknown vertex kind %q", string(kind))
	}
	records, err := s.read(ctx, fmt.Sprintf(vertexExistsTmpl, kind), map[string]any{"id": id})
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return false, nil
	}
	found, _ := records[0].Get("found")
	ok, _ := found.(bool)
	return ok, nil
}

// SetVertexEnabled implements graph.VertexStore.
func (s *Store) SetVertexEnabled(ctx context.Context, kind graph.VertexKind, id int64, enabled bool) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown vertex kind %q", string(kind))
	}
	records, err := s.writeRecords(ctx, fmt.Sprintf(setEnabledTmpl, kind), map[string]any{"id": id, "enabled": enabled})
	if err != nil {
		return err
	}
	if len(records) == 0 || intValue(records[0], "n") == 0 {
		return graph.NewNotFound(kind, id)
	}
	return nil
}

// TrackIDs implements graph.VertexStore.
func (s *Store) TrackIDs(ctx context.Context) ([]graph.TrackID, error) {
	records, err := s.read(ctx, trackIDsQuery, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]graph.TrackID, 0, len(records))
	for _, r := range records {
		ids = append(ids, graph.TrackID(intValue(r, "id")))
	}
	return ids, nil
}

// TagsOfTrack implements graph.VertexStore.
func (s *Store) TagsOfTrack(ctx context.Context, track graph.TrackID) ([]graph.TagID, error) {
	records, err := s.read(ctx, tagsOfTrackQuery, map[string]any{"track": int64(track)})
	if err != nil {
		return nil, err
	}
	ids := make([]graph.TagID, 0, len(records))
	for _, r := range records {
		ids = append(ids, graph.TagID(intValue(r, "id")))
	}
	return ids, nil
}

// AddLikeWeight implements graph.EdgeWriter.
func (s *Store) AddLikeWeight(ctx context.Context, member graph.MemberID, track graph.TrackID, delta float64) error {
	_, err := s.write(ctx, addLikeQuery, map[string]any{
		"member": int64(member),
		"track":  int64(track),
		"delta":  delta,
	})
	return err
}

// AddPreferWeight implements graph.EdgeWriter.
func (s *Store) AddPreferWeight(ctx context.Context, member graph.MemberID, tag graph.TagID, delta float64) error {
	_, err := s.write(ctx, addPreferQuery, map[string]any{
		"member": int64(member),
		"tag":    int64(tag),
		"delta":  delta,
	})
	return err
}

// SetEdgeWeight implements graph.EdgeWriter.
func (s *Store) SetEdgeWeight(ctx context.Context, kind graph.EdgeKind, from, to int64, weight float64) error {
	if !kind.Weighted() {
		return fmt.Errorf("%w: %s has no weight", graph.ErrUnknownEdge, kind)
	}
	fromKind, toKind, err := kind.Endpoints()
	if err != nil {
		return err
	}
	query := fmt.Sprintf(setWeightTmpl, fromKind, toKind, kind)
	_, err = s.write(ctx, query, map[string]any{"from": from, "to": to, "weight": weight})
	return err
}

// MergeHave implements graph.EdgeWriter.
func (s *Store) MergeHave(ctx context.Context, track graph.TrackID, tag graph.TagID) error {
	return s.mergeEdge(ctx, graph.EdgeHave, int64(track), int64(tag))
}

// MergeFollow implements graph.EdgeWriter.
func (s *Store) MergeFollow(ctx context.Context, from, to graph.MemberID) error {
	return s.mergeEdge(ctx, graph.EdgeFollow, int64(from), int64(to))
}

// DeleteFollow implements graph.EdgeWriter.
func (s *Store) DeleteFollow(ctx context.Context, from, to graph.MemberID) error {
	_, err := s.write(ctx, deleteFollowQuery, map[string]any{"from": int64(from), "to": int64(to)})
	return err
}

// MergeWrite implements graph.EdgeWriter.
func (s *Store) MergeWrite(ctx context.Context, member graph.MemberID, track graph.TrackID) error {
	return s.mergeEdge(ctx, graph.EdgeWrite, int64(member), int64(track))
}

func (s *Store) mergeEdge(ctx context.Context, kind graph.EdgeKind, from, to int64) error {
	fromKind, toKind, err := kind.Endpoints()
	if err != nil {
		return err
	}
	query := fmt.Sprintf(mergeEdgeTmpl, fromKind, toKind, kind)
	_, err = s.write(ctx, query, map[string]any{"from": from, "to": to})
	return err
}

// DeleteAllSimilar implements graph.SimilarityWriter.
func (s *Store) DeleteAllSimilar(ctx context.Context) (int64, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer s.closeSession(ctx, session)

	result, err := session.Run(ctx, deleteAllSimilarQuery, nil)
	if err != nil {
		return 0, fmt.Errorf("delete similar edges: %w", err)
	}
	summary, err := result.Consume(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete similar edges: %w", err)
	}
	return int64(summary.Counters().RelationshipsDeleted()), nil
}

// MergeSimilar implements graph.SimilarityWriter.
func (s *Store) MergeSimilar(ctx context.Context, edges []graph.SimilarEdge) error {
	if len(edges) == 0 {
		return nil
	}
	rows := make([]map[string]any, len(edges))
	for i, e := range edges {
		rows[i] = map[string]any{
			"from":       int64(e.From),
			"to":         int64(e.To),
			"similarity": e.Similarity,
		}
	}
	_, err := s.write(ctx, mergeSimilarQuery, map[string]any{"rows": rows})
	return err
}

// LikedSimilar implements graph.Traverser.
func (s *Store) LikedSimilar(ctx context.Context, member graph.MemberID, tag graph.TagID) ([]graph.LikedSimilar, error) {
	return s.likedSimilar(ctx, likedSimilarQuery, member, tag)
}

// FollowingLikedSimilar implements graph.Traverser.
func (s *Store) FollowingLikedSimilar(ctx context.Context, member graph.MemberID, tag graph.TagID) ([]graph.LikedSimilar, error) {
	return s.likedSimilar(ctx, followingLikedSimilarQuery, member, tag)
}

func (s *Store) likedSimilar(ctx context.Context, query string, member graph.MemberID, tag graph.TagID) ([]graph.LikedSimilar, error) {
	records, err := s.read(ctx, query, map[string]any{"member": int64(member), "tag": int64(tag)})
	if err != nil {
		return nil, err
	}
	rows := make([]graph.LikedSimilar, 0, len(records))
	for _, r := range records {
		rows = append(rows, graph.LikedSimilar{
			Liker:      graph.MemberID(intValue(r, "liker")),
			Source:     graph.TrackID(intValue(r, "source")),
			LikeWeight: floatValue(r, "likeWeight"),
			Candidate:  graph.TrackID(intValue(r, "candidate")),
			Similarity: floatValue(r, "similarity"),
		})
	}
	return rows, nil
}

// FollowingLiked implements graph.Traverser.
func (s *Store) FollowingLiked(ctx context.Context, member graph.MemberID, tag graph.TagID) ([]graph.LikedTrack, error) {
	return s.likedTracks(ctx, followingLikedQuery, map[string]any{"member": int64(member), "tag": int64(tag)})
}

// FollowerLiked implements graph.Traverser.
func (s *Store) FollowerLiked(ctx context.Context, member graph.MemberID) ([]graph.LikedTrack, error) {
	return s.likedTracks(ctx, followerLikedQuery, map[string]any{"member": int64(member)})
}

func (s *Store) likedTracks(ctx context.Context, query string, params map[string]any) ([]graph.LikedTrack, error) {
	records, err := s.read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	rows := make([]graph.LikedTrack, 0, len(records))
	for _, r := range records {
		rows = append(rows, graph.LikedTrack{
			Member: graph.MemberID(intValue(r, "member")),
			Track:  graph.TrackID(intValue(r, "track")),
			Weight: floatValue(r, "weight"),
		})
	}
	return rows, nil
}

// SimilarTracks implements graph.Traverser.
func (s *Store) SimilarTracks(ctx context.Context, track graph.TrackID) ([]graph.SimilarTrack, error) {
	records, err := s.read(ctx, similarTracksQuery, map[string]any{"track": int64(track)})
	if err != nil {
		return nil, err
	}
	rows := make([]graph.SimilarTrack, 0, len(records))
	for _, r := range records {
		rows = append(rows, graph.SimilarTrack{
			Track:      graph.TrackID(intValue(r, "track")),
			Similarity: floatValue(r, "similarity"),
		})
	}
	return rows, nil
}
