// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

// Package ranking builds the per-tag weekly and monthly leaderboards.
//
// A leaderboard is a sorted set in the ranking cache keyed by
// "ranking:{tagId}:{PERIOD}". Each rebuild scores every track of the tag as
// likes×LikeWeight + views×ViewWeight over the window, keeps the TopN best,
// and replaces the key wholesale. Rebuilds are idempotent: running one twice
// against unchanged counts yields the same key contents.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tunegraph/internal/cache"
	"github.com/tomtom215/tunegraph/internal/logging"
	"github.com/tomtom215/tunegraph/internal/metrics"
)

// Counter is the scalar store the builder reads from.
type Counter interface {
	TagIDs(ctx context.Context) ([]int64, error)
	CountLikes(ctx context.Context, tag int64, since time.Time) (map[int64]int64, error)
	CountViews(ctx context.Context, tag int64, since time.Time) (map[int64]int64, error)
}

// Config holds the scoring parameters.
type Config struct {
	TopN       int           `koanf:"top_n" validate:"gte=1"`
	LikeWeight float64       `koanf:"like_weight"`
	ViewWeight float64       `koanf:"view_weight"`
	KeyTTL     time.Duration `koanf:"key_ttl"`
}

// DefaultConfig returns the stock scoring: top 50, likes ×4, views ×2, keys live 25h.
func DefaultConfig() Config {
	return Config{
		TopN:       50,
		LikeWeight: 4,
		ViewWeight: 2,
		KeyTTL:     25 * time.Hour,
	}
}

// Entry is one leaderboard position.
type Entry struct {
	TrackID int64   `json:"trackId"`
	Score   float64 `json:"score"`
}

// Builder rebuilds and reads leaderboards.
type Builder struct {
	counts Counter
	sets   cache.SortedSet
	cfg    Config
	now    func() time.Time
	log    zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewBuilder creates a builder. Zero-valued config fields fall back to DefaultConfig.
func NewBuilder(counts Counter, sets cache.SortedSet, cfg Config) *Builder {
	def := DefaultConfig()
	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}
	if cfg.LikeWeight == 0 && cfg.ViewWeight == 0 {
		cfg.LikeWeight, cfg.ViewWeight = def.LikeWeight, def.ViewWeight
	}
	return &Builder{
		counts: counts,
		sets:   sets,
		cfg:    cfg,
		now:    time.Now,
		log:    logging.WithComponent("ranking"),
		locks:  make(map[string]*sync.Mutex),
	}
}

// keyLock serializes rebuilds of the same key within this process.
func (b *Builder) keyLock(key string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.locks[key]
	if !ok {
		l = &sync.Mutex{}
		b.locks[key] = l
	}
	return l
}

// Rebuild recomputes the leaderboard of tag for period and replaces its key.
// It returns the entries written.
func (b *Builder) Rebuild(ctx context.Context, tag int64, period Period) ([]Entry, error) {
	if !period.Valid() {
		return nil, &InvalidPeriodError{Value: string(period)}
	}
	start := time.Now()
	entries, err := b.rebuild(ctx, tag, period)
	metrics.RecordRankingRebuild(period.String(), time.Since(start), len(entries), err)
	return entries, err
}

func (b *Builder) rebuild(ctx context.Context, tag int64, period Period) ([]Entry, error) {
	since := period.Start(b.now())

	likes, err := b.counts.CountLikes(ctx, tag, since)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	views, err := b.counts.CountViews(ctx, tag, since)
	if err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}

	entries := b.Score(likes, views)

	key := Key(tag, period)
	lock := b.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if err := b.sets.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("delete %s: %w", key, err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	members := make([]cache.ScoredMember, len(entries))
	for i, e := range entries {
		members[i] = cache.ScoredMember{Member: e.TrackID, Score: e.Score}
	}
	if err := b.sets.Add(ctx, key, members...); err != nil {
		return nil, fmt.Errorf("write %s: %w", key, err)
	}
	if b.cfg.KeyTTL > 0 {
		if err := b.sets.Expire(ctx, key, b.cfg.KeyTTL); err != nil {
			return nil, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return entries, nil
}

// Score combines like and view counts into at most TopN positive entries,
// ordered by score descending and track id ascending.
func (b *Builder) Score(likes, views map[int64]int64) []Entry {
	scores := make(map[int64]float64, len(likes)+len(views))
	for track, n := range likes {
		scores[track] += float64(n) * b.cfg.LikeWeight
	}
	for track, n := range views {
		scores[track] += float64(n) * b.cfg.ViewWeight
	}

	entries := make([]Entry, 0, len(scores))
	for track, s := range scores {
		if s > 0 {
			entries = append(entries, Entry{TrackID: track, Score: s})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].TrackID < entries[j].TrackID
	})
	if len(entries) > b.cfg.TopN {
		entries = entries[:b.cfg.TopN]
	}
	return entries
}

// RebuildAll rebuilds every known tag for every period. A failing key is
// logged and skipped; the returned error joins all failures.
func (b *Builder) RebuildAll(ctx context.Context) error {
	tags, err := b.counts.TagIDs(ctx)
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}

	start := time.Now()
	var errs []error
	for _, tag := range tags {
		for _, period := range Periods {
			if err := ctx.Err(); err != nil {
				return errors.Join(append(errs, err)...)
			}
			if _, err := b.Rebuild(ctx, tag, period); err != nil {
				b.log.Error().Err(err).Int64("tag_id", tag).Str("period", period.String()).Msg("Ranking rebuild failed")
				errs = append(errs, fmt.Errorf("tag %d %s: %w", tag, period, err))
			}
		}
	}

	b.log.Info().
		Int("tags", len(tags)).
		Int("failed", len(errs)).
		Dur("duration", time.Since(start)).
		Msg("Ranking rebuild complete")
	return errors.Join(errs...)
}

// GetTopTracks reads count leaderboard entries starting at offset.
// A missing or expired key yields an empty list.
func (b *Builder) GetTopTracks(ctx context.Context, tag int64, period Period, offset, count int) ([]Entry, error) {
	if !period.Valid() {
		return nil, &InvalidPeriodError{Value: string(period)}
	}
	if offset < 0 {
		offset = 0
	}
	if count <= 0 {
		return []Entry{}, nil
	}

	members, err := b.sets.ReverseRange(ctx, Key(tag, period), offset, offset+count-1)
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	entries := make([]Entry, len(members))
	for i, m := range members {
		entries[i] = Entry{TrackID: m.Member, Score: m.Score}
	}
	return entries, nil
}

// Flush drops every cached leaderboard.
func (b *Builder) Flush(ctx context.Context) error {
	return b.sets.Flush(ctx)
}
