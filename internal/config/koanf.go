// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/ranking"
	"github.com/tomtom215/tunegraph/internal/recommend"
	"github.com/tomtom215/tunegraph/internal/similarity"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tunegraph/config.yaml",
	"/etc/tunegraph/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied.
func defaultConfig() *Config {
	client := similarity.DefaultClientConfig()
	client.URL = "http://127.0.0.1:8000/similarity"

	return &Config{
		Server: ServerConfig{
			Host:                 "0.0.0.0",
			Port:                 8080,
			ReadTimeout:          30 * time.Second,
			WriteTimeout:         30 * time.Second,
			ShutdownTimeout:      15 * time.Second,
			CORSOrigins:          []string{"*"},
			RateLimitReqs:        100,
			RateLimitWindow:      time.Minute,
			AdminTriggerInterval: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Graph: GraphConfig{
			Backend: GraphBackendNeo4j,
			Neo4j: Neo4jConfig{
				URI:                          "neo4j://127.0.0.1:7687",
				Username:                     "neo4j",
				MaxConnectionPoolSize:        100,
				ConnectionAcquisitionTimeout: time.Minute,
			},
		},
		Database: DatabaseConfig{
			Path:      "/data/tunegraph.duckdb",
			MaxMemory: "1GB",
		},
		RankingCache: RankingCacheConfig{
			Backend:    CacheBackendBadger,
			BadgerPath: "/data/rankings",
		},
		Similarity: SimilarityConfig{
			Client:    client,
			Reconcile: similarity.DefaultConfig(),
		},
		Recommend: recommend.DefaultConfig(),
		Ranking:   ranking.DefaultConfig(),
		Weights:   graph.DefaultWeights(),
		Schedule: ScheduleConfig{
			Reconcile:      "0 0 3,15 * * *",
			RebuildRanking: "0 30 4 * * *",
			RunOnStartup:   true,
		},
		NATS: NATSConfig{
			Enabled:              false,
			URL:                  "nats://127.0.0.1:4222",
			Topic:                "interactions",
			Durable:              "tunegraph-interactions",
			QueueGroup:           "tunegraph",
			SubscribersCount:     1,
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			PoisonQueueEnabled:   true,
			PoisonQueueTopic:     "interactions.poison",
			CloseTimeout:         30 * time.Second,
			DedupCapacity:        10000,
			DedupTTL:             10 * time.Minute,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, then the first default
// path that exists, or "" when there is no config file.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":              "server.host",
	"http_port":              "server.port",
	"http_read_timeout":      "server.read_timeout",
	"http_write_timeout":     "server.write_timeout",
	"http_shutdown_timeout":  "server.shutdown_timeout",
	"cors_origins":           "server.cors_origins",
	"rate_limit_requests":    "server.rate_limit_requests",
	"rate_limit_window":      "server.rate_limit_window",
	"disable_rate_limit":     "server.rate_limit_disabled",
	"admin_trigger_interval": "server.admin_trigger_interval",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Graph
	"graph_backend":                        "graph.backend",
	"neo4j_uri":                            "graph.neo4j.uri",
	"neo4j_username":                       "graph.neo4j.username",
	"neo4j_password":                       "graph.neo4j.password",
	"neo4j_database":                       "graph.neo4j.database",
	"neo4j_max_connection_pool_size":       "graph.neo4j.max_connection_pool_size",
	"neo4j_connection_acquisition_timeout": "graph.neo4j.connection_acquisition_timeout",

	// Scalar store
	"duckdb_path":       "database.path",
	"duckdb_threads":    "database.threads",
	"duckdb_max_memory": "database.max_memory",

	// Ranking cache
	"ranking_cache_backend": "ranking_cache.backend",
	"ranking_badger_path":   "ranking_cache.badger_path",

	// Similarity service and reconciliation
	"similarity_url":                   "similarity.client.url",
	"similarity_timeout":               "similarity.client.timeout",
	"similarity_max_retries":           "similarity.client.max_retries",
	"similarity_max_response_bytes":    "similarity.client.max_response_bytes",
	"similarity_breaker_timeout":       "similarity.client.breaker_timeout",
	"similarity_breaker_failure_ratio": "similarity.client.breaker_failure_ratio",
	"reconcile_batch_size":             "similarity.reconcile.batch_size",
	"reconcile_workers":                "similarity.reconcile.workers",
	"reconcile_timeout":                "similarity.reconcile.timeout",

	// Recommendations
	"recommend_default_limit":  "recommend.default_limit",
	"recommend_max_limit":      "recommend.max_limit",
	"recommend_per_source_cap": "recommend.per_source_cap",
	"recommend_cache_ttl":      "recommend.cache_ttl",

	// Rankings
	"ranking_top_n":       "ranking.top_n",
	"ranking_like_weight": "ranking.like_weight",
	"ranking_view_weight": "ranking.view_weight",
	"ranking_key_ttl":     "ranking.key_ttl",

	// Interaction weights
	"weight_play":    "weights.play",
	"weight_like":    "weights.like",
	"weight_dislike": "weights.dislike",

	// Schedule
	"reconcile_schedule":       "schedule.reconcile",
	"rebuild_ranking_schedule": "schedule.rebuild_ranking",
	"run_jobs_on_startup":      "schedule.run_on_startup",

	// NATS
	"nats_enabled":        "nats.enabled",
	"nats_url":            "nats.url",
	"nats_topic":          "nats.topic",
	"nats_durable_name":   "nats.durable_name",
	"nats_queue_group":    "nats.queue_group",
	"nats_subscribers":    "nats.subscribers_count",
	"nats_retry_count":    "nats.router_retry_count",
	"nats_retry_interval": "nats.router_retry_initial_interval",
	"nats_poison_queue":   "nats.router_poison_queue_enabled",
	"nats_poison_topic":   "nats.router_poison_queue_topic",
	"nats_close_timeout":  "nats.router_close_timeout",
	"nats_dedup_capacity": "nats.dedup_capacity",
	"nats_dedup_ttl":      "nats.dedup_ttl",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - NEO4J_URI -> graph.neo4j.uri
//   - SIMILARITY_URL -> similarity.client.url
//   - RECONCILE_SCHEDULE -> schedule.reconcile
//
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile calls callback whenever the file at path changes. The
// caller is responsible for synchronizing access to configuration it reloads.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
