// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/tunegraph/internal/validation"
)

// Validate checks struct tags first, then the rules that span fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateGraph(); err != nil {
		return err
	}

	if err := c.validateRankingCache(); err != nil {
		return err
	}

	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if err := c.validateRanking(); err != nil {
		return err
	}

	return c.validateNATS()
}

// validateGraph requires connection details when the Neo4j backend is selected.
func (c *Config) validateGraph() error {
	if c.Graph.Backend != GraphBackendNeo4j {
		return nil
	}
	if c.Graph.Neo4j.URI == "" {
		return fmt.Errorf("NEO4J_URI is required when GRAPH_BACKEND=neo4j")
	}
	u, err := url.Parse(c.Graph.Neo4j.URI)
	if err != nil {
		return fmt.Errorf("NEO4J_URI is invalid: %w", err)
	}
	switch u.Scheme {
	case "neo4j", "neo4j+s", "neo4j+ssc", "bolt", "bolt+s", "bolt+ssc":
		return nil
	}
	return fmt.Errorf("NEO4J_URI has unsupported scheme %q", u.Scheme)
}

func (c *Config) validateRankingCache() error {
	if c.RankingCache.Backend == CacheBackendBadger && c.RankingCache.BadgerPath == "" {
		return fmt.Errorf("RANKING_BADGER_PATH is required when RANKING_CACHE_BACKEND=badger")
	}
	return nil
}

// validateRanking rejects weightings that could never produce a positive score.
func (c *Config) validateRanking() error {
	if c.Ranking.LikeWeight < 0 || c.Ranking.ViewWeight < 0 {
		return fmt.Errorf("ranking weights must not be negative")
	}
	if c.Ranking.LikeWeight == 0 && c.Ranking.ViewWeight == 0 {
		return fmt.Errorf("at least one of RANKING_LIKE_WEIGHT and RANKING_VIEW_WEIGHT must be positive")
	}
	return nil
}

// validateNATS validates event consumption settings (only if enabled).
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true")
	}
	if c.NATS.Topic == "" {
		return fmt.Errorf("NATS_TOPIC is required when NATS_ENABLED=true")
	}
	if c.NATS.PoisonQueueEnabled {
		if c.NATS.PoisonQueueTopic == "" {
			return fmt.Errorf("NATS_POISON_TOPIC is required when the poison queue is enabled")
		}
		if c.NATS.PoisonQueueTopic == c.NATS.Topic {
			return fmt.Errorf("NATS_POISON_TOPIC must differ from NATS_TOPIC")
		}
	}
	return nil
}
