// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

/*
Package cache provides the caching structures used by Tunegraph.

# Sorted Sets

SortedSet is the leaderboard store: named sets of (member, score) pairs read
highest score first, with per-key expiry. Two backends implement it:

  - MemorySortedSet keeps one tidwall/btree per key, ordered by score
    descending then member ascending.
  - BadgerSortedSet persists sets in BadgerDB so leaderboards survive a
    restart. Scores are encoded into the key so a forward prefix scan
    yields descending order without sorting.

Both treat a missing key as an empty set.

# Response Cache

TTLCache memoizes read-path results (recommendation lists) for a short
time. Entries expire lazily on read and in a janitor goroutine.

# Deduplication

DedupSet remembers recently seen keys (event ids) in LRU order with a TTL,
so redelivered messages can be acknowledged without being applied twice.
*/
package cache
