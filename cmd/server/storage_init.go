// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/tunegraph/internal/cache"
	"github.com/tomtom215/tunegraph/internal/config"
	"github.com/tomtom215/tunegraph/internal/database"
	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/graph/memstore"
	"github.com/tomtom215/tunegraph/internal/graph/neo4jstore"
	"github.com/tomtom215/tunegraph/internal/logging"
)

// initGraphStore opens the configured graph backend.
func initGraphStore(ctx context.Context, cfg *config.Config) (graph.Store, error) {
	switch cfg.Graph.Backend {
	case config.GraphBackendMemory:
		logging.Warn().Msg("Using in-memory graph store; the graph is lost on restart")
		return memstore.New(), nil

	case config.GraphBackendNeo4j:
		n := cfg.Graph.Neo4j
		store, err := neo4jstore.Open(ctx, neo4jstore.Config{
			URI:                          n.URI,
			Username:                     n.Username,
			Password:                     n.Password,
			Database:                     n.Database,
			MaxConnectionPoolSize:        n.MaxConnectionPoolSize,
			ConnectionAcquisitionTimeout: n.ConnectionAcquisitionTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("open neo4j graph store: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown graph backend %q", cfg.Graph.Backend)
	}
}

// initScalarStore opens DuckDB.
func initScalarStore(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.Open(ctx, database.Config{
		Path:      cfg.Database.Path,
		Threads:   cfg.Database.Threads,
		MaxMemory: cfg.Database.MaxMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("open scalar store: %w", err)
	}
	return db, nil
}

// initRankingCache opens the sorted set backend behind leaderboards.
func initRankingCache(cfg *config.Config) (cache.SortedSet, error) {
	switch cfg.RankingCache.Backend {
	case config.CacheBackendMemory:
		return cache.NewMemorySortedSet(), nil

	case config.CacheBackendBadger:
		set, err := cache.OpenBadgerSortedSet(cfg.RankingCache.BadgerPath)
		if err != nil {
			return nil, fmt.Errorf("open ranking cache: %w", err)
		}
		return set, nil

	default:
		return nil, fmt.Errorf("unknown ranking cache backend %q", cfg.RankingCache.Backend)
	}
}
