// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/tunegraph/internal/api"
	"github.com/tomtom215/tunegraph/internal/config"
	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/logging"
	"github.com/tomtom215/tunegraph/internal/ranking"
	"github.com/tomtom215/tunegraph/internal/recommend"
	"github.com/tomtom215/tunegraph/internal/recommend/algorithms"
	"github.com/tomtom215/tunegraph/internal/similarity"
	"github.com/tomtom215/tunegraph/internal/supervisor"
	"github.com/tomtom215/tunegraph/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("graph_backend", cfg.Graph.Backend).
		Str("ranking_cache", cfg.RankingCache.Backend).
		Str("db_path", cfg.Database.Path).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting tunegraph")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	openCtx, cancelOpen := context.WithTimeout(ctx, time.Minute)
	store, err := initGraphStore(openCtx, cfg)
	if err != nil {
		cancelOpen()
		logging.Fatal().Err(err).Msg("Failed to open graph store")
	}
	db, err := initScalarStore(openCtx, cfg)
	cancelOpen()
	if err != nil {
		_ = store.Close(context.Background())
		logging.Fatal().Err(err).Msg("Failed to open scalar store")
	}
	sets, err := initRankingCache(cfg)
	if err != nil {
		_ = store.Close(context.Background())
		_ = db.Close()
		logging.Fatal().Err(err).Msg("Failed to open ranking cache")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sets.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing ranking cache")
		}
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing scalar store")
		}
		if err := store.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing graph store")
		}
	}()

	// Domain services
	model := graph.NewModel(store, cfg.Weights)

	engine, err := recommend.NewEngine(cfg.Recommend)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	defer engine.Close()
	algorithms.RegisterAll(engine, algorithms.NewRetriever(store, cfg.Recommend.PerSourceCap))

	reconciler := similarity.NewReconciler(store, similarity.NewClient(cfg.Similarity.Client), cfg.Similarity.Reconcile)
	reconciler.OnComplete(func(similarity.Result) { engine.InvalidateCache() })
	model.OnChange(engine.InvalidateCache)

	builder := ranking.NewBuilder(db, sets, cfg.Ranking)

	// Supervision
	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	scheduler, err := services.NewSchedulerService(reconciler, builder, services.SchedulerConfig{
		ReconcileSpec:      cfg.Schedule.Reconcile,
		RebuildRankingSpec: cfg.Schedule.RebuildRanking,
		RunOnStartup:       cfg.Schedule.RunOnStartup,
		StopTimeout:        cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	tree.AddJobService(scheduler)

	if cfg.NATS.Enabled {
		factory := newEventRouterFactory(cfg, model, db)
		tree.AddIngestService(services.NewEventRouterService(factory, cfg.NATS.CloseTimeout))
	} else {
		logging.Info().Msg("Interaction event consumer disabled (NATS_ENABLED=false)")
	}

	// HTTP
	handler, err := api.NewHandler(api.Dependencies{
		Recommender: engine,
		Leaderboard: builder,
		Reconciler:  reconciler,
		Checks: map[string]api.HealthCheck{
			"graph":  store.Ping,
			"duckdb": db.Ping,
		},
		BaseContext:          ctx,
		AdminTriggerInterval: cfg.Server.AdminTriggerInterval,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}

	mwCfg := api.DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwCfg.RateLimitRequests = cfg.Server.RateLimitReqs
	mwCfg.RateLimitWindow = cfg.Server.RateLimitWindow
	mwCfg.RateLimitDisabled = cfg.Server.RateLimitDisabled

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, mwCfg).SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * cfg.Server.ReadTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	logging.Info().Msg("Shutdown complete")
}
