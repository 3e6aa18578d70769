// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package cache

import (
	"testing"
	"time"
)

func TestTTLCache_GetSetExpire(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c := NewTTLCache[[]int64](time.Minute, 0)
	defer c.Close()
	c.now = func() time.Time { return now }

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set("k", []int64{1, 2, 3})
	v, ok := c.Get("k")
	if !ok || len(v) != 3 {
		t.Fatalf("expected hit with 3 items, got %v (ok=%v)", v, ok)
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 2 || stats.Evictions != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if rate := stats.HitRate(); rate < 33 || rate > 34 {
		t.Errorf("expected hit rate ~33.3, got %v", rate)
	}
}

func TestTTLCache_ClearAndPurge(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c := NewTTLCache[string](time.Minute, 0)
	defer c.Close()
	c.now = func() time.Time { return now }

	c.Set("a", "1")
	c.Set("b", "2")
	now = now.Add(2 * time.Minute)
	c.purge()
	if n := c.Stats().Keys; n != 0 {
		t.Errorf("expected purge to remove expired keys, got %d", n)
	}

	c.Set("c", "3")
	c.Clear()
	if _, ok := c.Get("c"); ok {
		t.Error("expected clear to drop entries")
	}
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	a := GenerateKey("fanmix", map[string]int{"member": 1, "limit": 10})
	b := GenerateKey("fanmix", map[string]int{"limit": 10, "member": 1})
	c := GenerateKey("fanmix", map[string]int{"member": 2, "limit": 10})
	if a != b {
		t.Errorf("expected stable key, got %s and %s", a, b)
	}
	if a == c {
		t.Error("expected different params to give different keys")
	}
}

func TestDedupSet(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	d := NewDedupSet(2, time.Minute)
	d.now = func() time.Time { return now }

	if d.Seen("e1") {
		t.Error("first sighting must not be a duplicate")
	}
	if !d.Seen("e1") {
		t.Error("second sighting must be a duplicate")
	}

	d.Seen("e2")
	d.Seen("e3") // evicts e1, the least recently seen
	if d.Len() != 2 {
		t.Errorf("expected capacity 2, got %d", d.Len())
	}
	if d.Seen("e1") {
		t.Error("expected evicted key to be new again")
	}

	now = now.Add(time.Minute)
	if d.Seen("e3") {
		t.Error("expected expired key to be new again")
	}

	d.Forget("e3")
	if d.Seen("e3") {
		t.Error("expected forgotten key to be new again")
	}

	if !d.Has("e3") {
		t.Error("expected Has to report a recorded key")
	}
	if d.Has("e9") || d.Has("e9") {
		t.Error("expected Has to leave unknown keys unrecorded")
	}
	now = now.Add(time.Minute)
	if d.Has("e3") {
		t.Error("expected Has to ignore expired keys")
	}
}
