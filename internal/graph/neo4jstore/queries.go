// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package neo4jstore

// Labels and relationship types are interpolated with fmt because Cypher
// cannot parameterize them. Only graph.VertexKind and graph.EdgeKind
// constants reach these templates.
const (
	schemaConstraintTmpl = `CREATE CONSTRAINT %s_id IF NOT EXISTS FOR (v:%s) REQUIRE v.id IS UNIQUE`

	mergeVertexTmpl = `MERGE (v:%s {id: $id}) ON CREATE SET v.enabled = true`

	vertexExistsTmpl = `MATCH (v:%s {id: $id}) RETURN count(v) > 0 AS found`

	setEnabledTmpl = `MATCH (v:%s {id: $id}) SET v.enabled = $enabled RETURN count(v) AS n`

	trackIDsQuery = `MATCH (t:Track) RETURN t.id AS id ORDER BY id`

	tagsOfTrackQuery = `MATCH (:Track {id: $track})-[:HAVE]->(g:Tag) RETURN g.id AS id ORDER BY id`

	addLikeQuery = `
		MATCH (m:Member {id: $member}), (t:Track {id: $track})
		MERGE (m)-[l:LIKE]->(t)
		ON CREATE SET l.weight = 0.0
		SET l.weight = l.weight + $delta`

	addPreferQuery = `
		MATCH (m:Member {id: $member}), (g:Tag {id: $tag})
		MERGE (m)-[p:PREFER]->(g)
		ON CREATE SET p.weight = 0.0
		SET p.weight = p.weight + $delta`

	setWeightTmpl = `
		MATCH (a:%s {id: $from}), (b:%s {id: $to})
		MERGE (a)-[r:%s]->(b)
		SET r.weight = $weight`

	mergeEdgeTmpl = `
		MATCH (a:%s {id: $from}), (b:%s {id: $to})
		MERGE (a)-[:%s]->(b)`

	deleteFollowQuery = `MATCH (:Member {id: $from})-[f:FOLLOW]->(:Member {id: $to}) DELETE f`

	// Runs as an auto-commit query: CALL ... IN TRANSACTIONS is not allowed
	// inside a managed transaction.
	deleteAllSimilarQuery = `
		MATCH ()-[s:SIMILAR]->()
		CALL { WITH s DELETE s } IN TRANSACTIONS OF 10000 ROWS`

	mergeSimilarQuery = `
		UNWIND $rows AS row
		MATCH (a:Track {id: row.from}), (b:Track {id: row.to})
		MERGE (a)-[s:SIMILAR]->(b)
		SET s.similarity = row.similarity`

	likedSimilarQuery = `
		MATCH (m:Member {id: $member})-[l:LIKE]->(src:Track)-[s:SIMILAR]->(c:Track)-[:HAVE]->(:Tag {id: $tag})
		WHERE coalesce(m.enabled, true) AND coalesce(src.enabled, true) AND coalesce(c.enabled, true)
		RETURN m.id AS liker, src.id AS source, l.weight AS likeWeight, c.id AS candidate, s.similarity AS similarity
		ORDER BY liker, source, candidate`

	followingLikedQuery = `
		MATCH (:Member {id: $member})-[:FOLLOW]->(f:Member)-[l:LIKE]->(t:Track)-[:HAVE]->(:Tag {id: $tag})
		WHERE coalesce(f.enabled, true) AND coalesce(t.enabled, true)
		RETURN f.id AS member, t.id AS track, l.weight AS weight
		ORDER BY member, track`

	followingLikedSimilarQuery = `
		MATCH (:Member {id: $member})-[:FOLLOW]->(f:Member)-[l:LIKE]->(src:Track)-[s:SIMILAR]->(c:Track)-[:HAVE]->(:Tag {id: $tag})
		WHERE coalesce(f.enabled, true) AND coalesce(src.enabled, true) AND coalesce(c.enabled, true)
		RETURN f.id AS liker, src.id AS source, l.weight AS likeWeight, c.id AS candidate, s.similarity AS similarity
		ORDER BY liker, source, candidate`

	similarTracksQuery = `
		MATCH (:Track {id: $track})-[s:SIMILAR]->(c:Track)
		WHERE coalesce(c.enabled, true)
		RETURN c.id AS track, s.similarity AS similarity
		ORDER BY track`

	followerLikedQuery = `
		MATCH (f:Member)-[:FOLLOW]->(:Member {id: $member})
		WHERE coalesce(f.enabled, true)
		MATCH (f)-[l:LIKE]->(t:Track)
		WHERE coalesce(t.enabled, true)
		RETURN f.id AS member, t.id AS track, l.weight AS weight
		ORDER BY member, track`
)
