// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

/*
Package main is the entry point for the tunegraph server.

Tunegraph keeps a social graph of members, tracks and tags, serves
graph-traversal recommendations over it, rebuilds per-tag leaderboards from
interaction counts, and periodically replaces track similarity edges with
the output of an external similarity service.

# Process Layout

All long-running work runs under a Suture v4 supervisor tree:

	RootSupervisor ("tunegraph")
	├── JobsSupervisor ("jobs-layer")
	│   └── job-scheduler (cron: reconcileSimilarity, rebuildRanking)
	├── IngestSupervisor ("ingest-layer")
	│   └── event-router (NATS JetStream interactions, optional)
	└── APISupervisor ("api-layer")
	    └── http-server (chi router)

Initialization order:

 1. Configuration: Koanf v2 (defaults, YAML file, environment)
 2. Logging: zerolog, JSON or console
 3. Storage: graph store (Neo4j or in-memory), DuckDB scalar store,
    ranking sorted sets (Badger or in-memory)
 4. Domain services: graph model, recommendation engine and strategies,
    similarity reconciler, ranking builder
 5. Supervisor tree with scheduler, event router and HTTP server

# Configuration

Sources are layered, highest priority wins:

	Priority: Environment variables > Config file (CONFIG_PATH) > Defaults

Common environment variables:

	HTTP_PORT=8080
	LOG_LEVEL=info
	LOG_FORMAT=json

	GRAPH_BACKEND=neo4j          # neo4j or memory
	NEO4J_URI=neo4j://127.0.0.1:7687
	NEO4J_PASSWORD=<password>

	DUCKDB_PATH=/data/tunegraph.duckdb
	RANKING_CACHE_BACKEND=badger # badger or memory
	RANKING_BADGER_PATH=/data/rankings

	SIMILARITY_URL=http://127.0.0.1:8000/similarity
	RECONCILE_SCHEDULE="0 0 3,15 * * *"
	REBUILD_RANKING_SCHEDULE="0 30 4 * * *"

	NATS_ENABLED=false
	NATS_URL=nats://127.0.0.1:4222

# Shutdown

SIGINT or SIGTERM cancels the root context. The HTTP server drains within
HTTP_SHUTDOWN_TIMEOUT, the scheduler waits for running jobs, and the event
router closes its NATS subscription before the stores are closed.
*/
package main
