// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package cache

import (
	"container/list"
	"sync"
	"time"
)

type dedupEntry struct {
	key       string
	expiresAt time.Time
}

// DedupSet remembers keys for a TTL, evicting the least recently seen key
// once capacity is reached. All operations are O(1).
type DedupSet struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // front is most recently seen
	items    map[string]*list.Element
	now      func() time.Time
}

// NewDedupSet creates a set holding at most capacity keys for ttl each.
func NewDedupSet(capacity int, ttl time.Duration) *DedupSet {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &DedupSet{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
}

// Seen reports whether key was recorded within the TTL. If not, it records key.
func (d *DedupSet) Seen(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if el, ok := d.items[key]; ok {
		entry := el.Value.(*dedupEntry)
		if now.Before(entry.expiresAt) {
			d.order.MoveToFront(el)
			return true
		}
		d.order.Remove(el)
		delete(d.items, key)
	}

	d.items[key] = d.order.PushFront(&dedupEntry{key: key, expiresAt: now.Add(d.ttl)})
	for len(d.items) > d.capacity {
		oldest := d.order.Back()
		d.order.Remove(oldest)
		delete(d.items, oldest.Value.(*dedupEntry).key)
	}
	return false
}

// Has reports whether key was recorded within the TTL without recording it.
func (d *DedupSet) Has(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.items[key]
	return ok && d.now().Before(el.Value.(*dedupEntry).expiresAt)
}

// Forget removes key, so the next Seen(key) reports false.
func (d *DedupSet) Forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.items[key]; ok {
		d.order.Remove(el)
		delete(d.items, key)
	}
}

// Len returns the number of remembered keys, expired ones included.
func (d *DedupSet) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}
