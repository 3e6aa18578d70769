// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tidwall/btree"
)

type memorySet struct {
	tree      *btree.BTreeG[ScoredMember]
	scores    map[int64]float64
	expiresAt time.Time
}

// MemorySortedSet is an in-process SortedSet.
type MemorySortedSet struct {
	mu   sync.RWMutex
	sets map[string]*memorySet
	now  func() time.Time
}

var _ SortedSet = (*MemorySortedSet)(nil)

// NewMemorySortedSet creates an empty in-memory sorted set store.
func NewMemorySortedSet() *MemorySortedSet {
	return &MemorySortedSet{
		sets: make(map[string]*memorySet),
		now:  time.Now,
	}
}

// Add implements SortedSet.
func (m *MemorySortedSet) Add(ctx context.Context, key string, members ...ScoredMember) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.liveLocked(key)
	if set == nil {
		set = &memorySet{
			tree:   btree.NewBTreeG[ScoredMember](descending),
			scores: make(map[int64]float64),
		}
		m.sets[key] = set
	}
	for _, sm := range members {
		if old, ok := set.scores[sm.Member]; ok {
			set.tree.Delete(ScoredMember{Member: sm.Member, Score: old})
		}
		set.tree.Set(sm)
		set.scores[sm.Member] = sm.Score
	}
	return nil
}

// Delete implements SortedSet.
func (m *MemorySortedSet) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets, key)
	return nil
}

// ReverseRange implements SortedSet.
func (m *MemorySortedSet) ReverseRange(ctx context.Context, key string, start, stop int) ([]ScoredMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.liveLocked(key)
	if set == nil {
		return []ScoredMember{}, nil
	}
	from, to, ok := clampRange(start, stop, set.tree.Len())
	if !ok {
		return []ScoredMember{}, nil
	}

	out := make([]ScoredMember, 0, to-from)
	rank := 0
	set.tree.Scan(func(sm ScoredMember) bool {
		if rank >= to {
			return false
		}
		if rank >= from {
			out = append(out, sm)
		}
		rank++
		return true
	})
	return out, nil
}

// Card implements SortedSet.
func (m *MemorySortedSet) Card(ctx context.Context, key string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if set := m.liveLocked(key); set != nil {
		return set.tree.Len(), nil
	}
	return 0, nil
}

// Expire implements SortedSet.
func (m *MemorySortedSet) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if set := m.liveLocked(key); set != nil {
		set.expiresAt = m.now().Add(ttl)
	}
	return nil
}

// Flush implements SortedSet.
func (m *MemorySortedSet) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = make(map[string]*memorySet)
	return nil
}

// Close implements SortedSet.
func (m *MemorySortedSet) Close() error { return nil }

// liveLocked returns the set for key, dropping it first if it has expired.
// Must be called with mu held for writing.
func (m *MemorySortedSet) liveLocked(key string) *memorySet {
	set, ok := m.sets[key]
	if !ok {
		return nil
	}
	if !set.expiresAt.IsZero() && !m.now().Before(set.expiresAt) {
		delete(m.sets, key)
		return nil
	}
	return set
}
