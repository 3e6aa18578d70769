// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

// Package testinfra provides container-backed infrastructure for integration tests.
//
// It uses testcontainers-go and is compiled only with the integration build tag:
//
//	go test -tags integration ./internal/graph/neo4jstore/...
//
// # Neo4j
//
// NewNeo4jContainer starts a community-edition Neo4j server and returns its
// Bolt URI and credentials:
//
//	func TestStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    neo, err := testinfra.NewNeo4jContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, neo)
//	    // neo4jstore.Open(ctx, neo4jstore.Config{URI: neo.URI, ...})
//	}
//
// Tests skip when Docker is unavailable. The first run pulls the image.
package testinfra
