// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package neo4jstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/tomtom215/tunegraph/internal/graph"
)

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
}

func (s *Store) closeSession(ctx context.Context, session neo4j.SessionWithContext) {
	if err := session.Close(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to close neo4j session")
	}
}

// write runs query in a managed write transaction and returns its summary.
func (s *Store) write(ctx context.Context, query string, params map[string]any) (neo4j.ResultSummary, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer s.closeSession(ctx, session)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j write: %w", err)
	}
	summary, _ := out.(neo4j.ResultSummary)
	return summary, nil
}

// writeRecords runs query in a managed write transaction and collects its records.
func (s *Store) writeRecords(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer s.closeSession(ctx, session)

	out, err := session.ExecuteWrite(ctx, collect(ctx, query, params))
	if err != nil {
		return nil, fmt.Errorf("neo4j write: %w", err)
	}
	records, _ := out.([]*neo4j.Record)
	return records, nil
}

// read runs query in a managed read transaction and collects its records.
func (s *Store) read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer s.closeSession(ctx, session)

	out, err := session.ExecuteRead(ctx, collect(ctx, query, params))
	if err != nil {
		return nil, fmt.Errorf("neo4j read: %w", err)
	}
	records, _ := out.([]*neo4j.Record)
	return records, nil
}

// collect must consume results inside the transaction function; records
// are invalid once the transaction closes.
func collect(ctx context.Context, query string, params map[string]any) neo4j.ManagedTransactionWork {
	return func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	}
}

func intValue(r *neo4j.Record, key string) int64 {
	v, ok := r.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func floatValue(r *neo4j.Record, key string) float64 {
	v, ok := r.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func lower(kind graph.VertexKind) string {
	return strings.ToLower(string(kind))
}
