// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

/*
Package events consumes interaction events and applies them to the graph
model and the scalar store.

Events are JSON InteractionEvent messages on a NATS JetStream subject,
delivered through a Watermill router:

	NATS JetStream -> Router (PoisonQueue, Retry, Recoverer) -> Handler
	                                                            |-> graph.Model
	                                                            '-> database.DB

The handler deduplicates by event id with a bounded cache.DedupSet, so
JetStream redeliveries do not add LIKE weight twice. Events that keep
failing, including malformed payloads, end up on the poison topic.

Tests run the same router over the Watermill gochannel Pub/Sub.
*/
package events
