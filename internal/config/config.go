// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/ranking"
	"github.com/tomtom215/tunegraph/internal/recommend"
	"github.com/tomtom215/tunegraph/internal/similarity"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig
//  2. Config File: optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: mapped explicitly in envTransformFunc
//
// Example:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    log.Fatal().Err(err).Msg("Failed to load config")
//	}
//	reconciler := similarity.NewReconciler(store, client, cfg.Similarity.Reconcile)
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Logging      LoggingConfig      `koanf:"logging"`
	Graph        GraphConfig        `koanf:"graph"`
	Database     DatabaseConfig     `koanf:"database"`
	RankingCache RankingCacheConfig `koanf:"ranking_cache"`
	Similarity   SimilarityConfig   `koanf:"similarity"`
	Recommend    recommend.Config   `koanf:"recommend"`
	Ranking      ranking.Config     `koanf:"ranking"`
	Weights      graph.Weights      `koanf:"weights"`
	Schedule     ScheduleConfig     `koanf:"schedule"`
	NATS         NATSConfig         `koanf:"nats"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// RateLimitReqs requests per RateLimitWindow are allowed per client IP.
	RateLimitReqs     int           `koanf:"rate_limit_requests" validate:"gte=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// AdminTriggerInterval is the minimum spacing between manual
	// reconciliation or ranking rebuild triggers.
	AdminTriggerInterval time.Duration `koanf:"admin_trigger_interval" validate:"gt=0"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Graph backends.
const (
	GraphBackendMemory = "memory"
	GraphBackendNeo4j  = "neo4j"
)

// GraphConfig selects and configures the graph store.
type GraphConfig struct {
	Backend string      `koanf:"backend" validate:"oneof=memory neo4j"`
	Neo4j   Neo4jConfig `koanf:"neo4j"`
}

// Neo4jConfig holds Neo4j connection settings.
type Neo4jConfig struct {
	URI      string `koanf:"uri"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`

	MaxConnectionPoolSize        int           `koanf:"max_connection_pool_size" validate:"gte=0"`
	ConnectionAcquisitionTimeout time.Duration `koanf:"connection_acquisition_timeout" validate:"gte=0"`
}

// DatabaseConfig holds DuckDB settings for the scalar store.
type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`

	// Threads limits DuckDB worker threads. 0 uses runtime.NumCPU().
	Threads   int    `koanf:"threads" validate:"gte=0"`
	MaxMemory string `koanf:"max_memory"`
}

// Ranking cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendBadger = "badger"
)

// RankingCacheConfig selects the sorted set implementation behind leaderboards.
type RankingCacheConfig struct {
	Backend    string `koanf:"backend" validate:"oneof=memory badger"`
	BadgerPath string `koanf:"badger_path"`
}

// SimilarityConfig groups the similarity service client and the
// reconciliation write phase.
type SimilarityConfig struct {
	Client    similarity.ClientConfig `koanf:"client"`
	Reconcile similarity.Config       `koanf:"reconcile"`
}

// ScheduleConfig holds the cron specs of the periodic jobs. Specs use six
// fields with seconds first, or a descriptor such as @hourly.
type ScheduleConfig struct {
	Reconcile      string `koanf:"reconcile" validate:"required,cronspec"`
	RebuildRanking string `koanf:"rebuild_ranking" validate:"required,cronspec"`

	// RunOnStartup flushes the ranking cache, rebuilds every leaderboard
	// and runs one reconciliation when the scheduler starts.
	RunOnStartup bool `koanf:"run_on_startup"`
}

// NATSConfig holds interaction event consumption settings.
type NATSConfig struct {
	// Enabled controls whether the event router runs.
	Enabled bool `koanf:"enabled"`

	URL        string `koanf:"url"`
	Topic      string `koanf:"topic"`
	Durable    string `koanf:"durable_name"`
	QueueGroup string `koanf:"queue_group"`

	SubscribersCount int `koanf:"subscribers_count" validate:"gte=1"`

	// Router middleware
	RetryCount           int           `koanf:"router_retry_count" validate:"gte=0"`
	RetryInitialInterval time.Duration `koanf:"router_retry_initial_interval" validate:"gte=0"`
	PoisonQueueEnabled   bool          `koanf:"router_poison_queue_enabled"`
	PoisonQueueTopic     string        `koanf:"router_poison_queue_topic"`
	CloseTimeout         time.Duration `koanf:"router_close_timeout" validate:"gt=0"`

	// Event id deduplication window
	DedupCapacity int           `koanf:"dedup_capacity" validate:"gte=1"`
	DedupTTL      time.Duration `koanf:"dedup_ttl" validate:"gt=0"`
}
