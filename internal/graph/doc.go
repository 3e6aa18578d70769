// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

/*
Package graph defines the weighted interaction graph: members, tracks and
tags, and the relations between them.

# Vertices and Edges

	Member -LIKE{weight}->    Track   accumulated by interactions
	Member -PREFER{weight}->  Tag     bumped with every LIKE delta, per track tag
	Track  -HAVE->            Tag     written once when the track is published
	Track  -SIMILAR{sim}->    Track   derived, replaced by each reconciliation run
	Member -FOLLOW->          Member
	Member -WRITE->           Track   authorship

Vertices are never deleted. Each carries an enabled flag that the
recommendation traversals use to hide members and tracks.

# Backends

Store is the persistence contract, split into VertexStore, EdgeWriter,
SimilarityWriter and Traverser so consumers can ask for only what they use.
Two implementations exist:

  - memstore: in-process maps, used by tests and single-node deployments
  - neo4jstore: Neo4j over Bolt, Cypher MERGE for every upsert

Model applies the mutation rules on top of any store.
*/
package graph
