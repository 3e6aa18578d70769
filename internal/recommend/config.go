// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package recommend

import (
	"errors"
	"time"
)

// Config contains the engine limits and cache settings.
type Config struct {
	// DefaultLimit applies when a request asks for zero or fewer tracks.
	DefaultLimit int `koanf:"default_limit" validate:"gte=1"`

	// MaxLimit caps any requested limit.
	MaxLimit int `koanf:"max_limit" validate:"gte=1"`

	// PerSourceCap is how many candidates one source may contribute
	// before global ranking.
	PerSourceCap int `koanf:"per_source_cap" validate:"gte=1"`

	// CacheTTL is how long responses are reused. Zero disables the cache.
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		DefaultLimit: 20,
		MaxLimit:     100,
		PerSourceCap: 3,
		CacheTTL:     5 * time.Minute,
	}
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.DefaultLimit < 1 {
		return errors.New("default_limit must be at least 1")
	}
	if c.MaxLimit < c.DefaultLimit {
		return errors.New("max_limit must be >= default_limit")
	}
	if c.PerSourceCap < 1 {
		return errors.New("per_source_cap must be at least 1")
	}
	if c.CacheTTL < 0 {
		return errors.New("cache_ttl must not be negative")
	}
	return nil
}

// normalizeLimit applies the default and the ceiling.
func (c Config) normalizeLimit(limit int) int {
	if limit <= 0 {
		return c.DefaultLimit
	}
	if limit > c.MaxLimit {
		return c.MaxLimit
	}
	return limit
}
