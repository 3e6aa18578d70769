// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tunegraph/internal/logging"
	"github.com/tomtom215/tunegraph/internal/similarity"
	"github.com/tomtom215/tunegraph/internal/validation"
)

// Job names as they appear in logs.
const (
	JobReconcileSimilarity = "reconcileSimilarity"
	JobRebuildRanking      = "rebuildRanking"
)

// SimilarityReconciler runs one similarity reconciliation.
//
// Satisfied by *similarity.Reconciler.
type SimilarityReconciler interface {
	Run(ctx context.Context) (similarity.Result, error)
}

// RankingRebuilder rebuilds leaderboards and clears their backend.
//
// Satisfied by *ranking.Builder.
type RankingRebuilder interface {
	Flush(ctx context.Context) error
	RebuildAll(ctx context.Context) error
}

// SchedulerConfig configures the scheduled jobs.
type SchedulerConfig struct {
	// ReconcileSpec and RebuildRankingSpec are six-field cron expressions
	// (seconds first) or descriptors such as "@every 1h".
	ReconcileSpec      string
	RebuildRankingSpec string

	// RunOnStartup flushes the ranking cache, rebuilds every leaderboard
	// and reconciles once, the first time the service starts.
	RunOnStartup bool

	// Location for cron evaluation. Default: UTC.
	Location *time.Location

	// StopTimeout bounds the wait for running jobs on shutdown. Default: 30s.
	StopTimeout time.Duration
}

// SchedulerService runs reconcileSimilarity and rebuildRanking on cron
// schedules as a supervised service.
//
// Overlapping firings of the same job are skipped. The startup sequence
// runs at most once per process, so a supervisor restart does not flush
// the cache again.
type SchedulerService struct {
	reconciler SimilarityReconciler
	rankings   RankingRebuilder
	cfg        SchedulerConfig
	logger     zerolog.Logger
	name       string

	startupOnce sync.Once
}

// NewSchedulerService validates the cron specs and creates the service.
func NewSchedulerService(reconciler SimilarityReconciler, rankings RankingRebuilder, cfg SchedulerConfig) (*SchedulerService, error) {
	if reconciler == nil || rankings == nil {
		return nil, errors.New("scheduler: reconciler and rankings are required")
	}
	if _, err := validation.CronParser.Parse(cfg.ReconcileSpec); err != nil {
		return nil, fmt.Errorf("scheduler: invalid %s schedule %q: %w", JobReconcileSimilarity, cfg.ReconcileSpec, err)
	}
	if _, err := validation.CronParser.Parse(cfg.RebuildRankingSpec); err != nil {
		return nil, fmt.Errorf("scheduler: invalid %s schedule %q: %w", JobRebuildRanking, cfg.RebuildRankingSpec, err)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 30 * time.Second
	}

	return &SchedulerService{
		reconciler: reconciler,
		rankings:   rankings,
		cfg:        cfg,
		logger:     logging.WithComponent("scheduler"),
		name:       "job-scheduler",
	}, nil
}

// Serve implements suture.Service.
func (s *SchedulerService) Serve(ctx context.Context) error {
	if s.cfg.RunOnStartup {
		s.startupOnce.Do(func() { s.startup(ctx) })
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	cronLog := cronLogger{logger: s.logger}
	c := cron.New(
		cron.WithParser(validation.CronParser),
		cron.WithLocation(s.cfg.Location),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	if _, err := c.AddFunc(s.cfg.ReconcileSpec, func() { s.reconcileSimilarity(ctx) }); err != nil {
		return fmt.Errorf("scheduler: add %s: %w", JobReconcileSimilarity, err)
	}
	if _, err := c.AddFunc(s.cfg.RebuildRankingSpec, func() { s.rebuildRanking(ctx) }); err != nil {
		return fmt.Errorf("scheduler: add %s: %w", JobRebuildRanking, err)
	}

	c.Start()
	s.logger.Info().
		Str("reconcile", s.cfg.ReconcileSpec).
		Str("rebuild_ranking", s.cfg.RebuildRankingSpec).
		Msg("scheduler started")

	<-ctx.Done()

	// Jobs observe ctx, so they wind down once it is canceled.
	select {
	case <-c.Stop().Done():
	case <-time.After(s.cfg.StopTimeout):
		s.logger.Warn().Dur("timeout", s.cfg.StopTimeout).Msg("scheduled jobs still running at shutdown")
	}
	return ctx.Err()
}

// startup clears the ranking backend, rebuilds every leaderboard, then reconciles.
// A failed flush skips the rebuild; stale entries would otherwise survive it.
func (s *SchedulerService) startup(ctx context.Context) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx)

	if err := s.rankings.Flush(ctx); err != nil {
		log.Error().Err(err).Msg("startup ranking cache flush failed")
	} else {
		s.rebuildRanking(ctx)
	}
	s.reconcileSimilarity(ctx)
}

func (s *SchedulerService) reconcileSimilarity(ctx context.Context) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx).With().Str("job", JobReconcileSimilarity).Logger()

	res, err := s.reconciler.Run(ctx)
	switch {
	case errors.Is(err, similarity.ErrReconcileInProgress):
		log.Info().Msg("skipped, reconciliation already running")
	case err != nil:
		log.Error().Err(err).Str("run_id", res.RunID).Msg("job failed")
	default:
		log.Info().
			Str("run_id", res.RunID).
			Str("outcome", res.Outcome()).
			Int("edges", res.Edges).
			Dur("duration", res.Duration).
			Msg("job finished")
	}
}

func (s *SchedulerService) rebuildRanking(ctx context.Context) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx).With().Str("job", JobRebuildRanking).Logger()

	start := time.Now()
	if err := s.rankings.RebuildAll(ctx); err != nil {
		log.Error().Err(err).Msg("job failed")
		return
	}
	log.Info().Dur("duration", time.Since(start)).Msg("job finished")
}

// String implements fmt.Stringer for suture logs.
func (s *SchedulerService) String() string {
	return s.name
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
