// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

// Package config provides centralized configuration management for Tunegraph.
//
// Configuration is layered with Koanf v2: struct defaults, then an optional
// YAML file, then environment variables. Component settings that belong to a
// single package (ranking.Config, recommend.Config, similarity.Config,
// similarity.ClientConfig, graph.Weights) are embedded directly so their
// defaults and validation tags live next to the code that uses them.
//
// # Configuration Structure
//
//   - ServerConfig: HTTP listener, CORS, rate limiting, admin trigger spacing
//   - LoggingConfig: zerolog level, format and caller info
//   - GraphConfig: graph backend (memory or neo4j) and Neo4j connection
//   - DatabaseConfig: DuckDB scalar store
//   - RankingCacheConfig: leaderboard sorted set backend (memory or badger)
//   - SimilarityConfig: similarity service client and reconciliation pool
//   - ScheduleConfig: cron specs for reconciliation and ranking rebuilds
//   - NATSConfig: interaction event consumption
//
// # Environment Variables
//
// Only variables listed in the mapping table are read. Common ones:
//
//   - HTTP_PORT: listen port (default: 8080)
//   - LOG_LEVEL, LOG_FORMAT: logging (default: info, json)
//   - GRAPH_BACKEND: memory or neo4j (default: neo4j)
//   - NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD: graph connection
//   - DUCKDB_PATH: scalar store file (default: /data/tunegraph.duckdb)
//   - RANKING_CACHE_BACKEND, RANKING_BADGER_PATH: leaderboard storage
//   - SIMILARITY_URL: similarity endpoint, including the path
//   - RECONCILE_SCHEDULE: default "0 0 3,15 * * *"
//   - REBUILD_RANKING_SCHEDULE: default "0 30 4 * * *"
//   - NATS_ENABLED, NATS_URL, NATS_TOPIC: interaction events
//
// CONFIG_PATH points at a YAML file using the koanf keys, for example:
//
//	graph:
//	  backend: neo4j
//	  neo4j:
//	    uri: neo4j://graph:7687
//	schedule:
//	  reconcile: "0 0 */6 * * *"
//
// # Validation
//
// Struct tags are checked through internal/validation, including the custom
// cronspec tag. Validate then applies the rules that span fields.
package config
