// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package similarity

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/logging"
	"github.com/tomtom215/tunegraph/internal/metrics"
)

// Config controls the write phase of a reconciliation run.
type Config struct {
	BatchSize int           `koanf:"batch_size" validate:"gte=1"`
	Workers   int           `koanf:"workers" validate:"gte=0"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
}

// DefaultConfig returns batches of 1000, one worker per CPU, and a one hour ceiling.
func DefaultConfig() Config {
	return Config{
		BatchSize: 1000,
		Workers:   runtime.NumCPU(),
		Timeout:   time.Hour,
	}
}

// Edge is one similarity triple ready to persist.
type Edge = graph.SimilarEdge

// Result summarizes one reconciliation run.
type Result struct {
	RunID      string              `json:"runId"`
	StartedAt  time.Time           `json:"startedAt"`
	Tracks     int                 `json:"tracks"`
	Removed    int64               `json:"removed"`
	Edges      int                 `json:"edges"`
	Batches    int                 `json:"batches"`
	Failed     []PartialWriteError `json:"failed,omitempty"`
	Canceled   int                 `json:"canceled"`
	Aborted    bool                `json:"aborted"`
	Duration   time.Duration       `json:"duration"`
	AbortCause string              `json:"abortCause,omitempty"`
}

// Outcome classifies the run for metrics and logs.
func (r Result) Outcome() string {
	switch {
	case r.Aborted:
		return "aborted"
	case len(r.Failed) > 0 || r.Canceled > 0:
		return "partial"
	default:
		return "completed"
	}
}

// Reconciler replaces the SIMILAR relation with fresh data from a Source.
//
// A run fetches every track id, asks the source for neighbors in a single
// call, and only when the answer is non-empty deletes all SIMILAR edges and
// rewrites them in parallel batches. A failing batch is recorded and does not
// stop its siblings; there is no retry and no rollback.
type Reconciler struct {
	store  graph.SimilarityWriter
	source Source
	cfg    Config
	log    zerolog.Logger

	running sync.Mutex
	busy    atomic.Bool
	last    atomic.Pointer[Result]

	hooksMu    sync.RWMutex
	onComplete []func(Result)
}

// NewReconciler creates a reconciler. Zero-valued config fields use DefaultConfig.
func NewReconciler(store graph.SimilarityWriter, source Source, cfg Config) *Reconciler {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Reconciler{
		store:  store,
		source: source,
		cfg:    cfg,
		log:    logging.WithComponent("similarity"),
	}
}

// OnComplete registers fn to run after every run that rewrote the relation.
func (r *Reconciler) OnComplete(fn func(Result)) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	r.onComplete = append(r.onComplete, fn)
}

// LastResult returns the most recent finished run, if any.
func (r *Reconciler) LastResult() (Result, bool) {
	p := r.last.Load()
	if p == nil {
		return Result{}, false
	}
	return *p, true
}

// Busy reports whether a run is in progress.
func (r *Reconciler) Busy() bool {
	return r.busy.Load()
}

// Run performs one reconciliation. Overlapping calls return ErrReconcileInProgress.
// An unusable source response returns *ExternalServiceError with the graph untouched.
// Batch failures do not fail the run; they are listed in Result.Failed.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	if !r.running.TryLock() {
		metrics.RecordReconcile("skipped", 0, 0, 0, 0, 0)
		return Result{}, ErrReconcileInProgress
	}
	defer r.running.Unlock()
	r.busy.Store(true)
	defer r.busy.Store(false)

	res := Result{RunID: uuid.New().String(), StartedAt: time.Now()}
	log := r.log.With().Str("run_id", res.RunID).Logger()

	err := r.run(ctx, &res, log)
	res.Duration = time.Since(res.StartedAt)

	if err != nil && !res.Aborted {
		log.Error().Err(err).Msg("Similarity reconciliation failed")
		return res, err
	}

	metrics.RecordReconcile(res.Outcome(), res.Duration, res.Edges,
		res.Batches-len(res.Failed)-res.Canceled, len(res.Failed), res.Canceled)
	r.last.Store(&res)

	if res.Aborted {
		return res, err
	}

	log.Info().
		Int("tracks", res.Tracks).
		Int64("removed", res.Removed).
		Int("edges", res.Edges).
		Int("batches", res.Batches).
		Int("failed", len(res.Failed)).
		Int("canceled", res.Canceled).
		Dur("duration", res.Duration).
		Msg("Similarity reconciliation complete")

	r.hooksMu.RLock()
	hooks := append([]func(Result){}, r.onComplete...)
	r.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(res)
	}
	return res, nil
}

func (r *Reconciler) run(ctx context.Context, res *Result, log zerolog.Logger) error {
	tracks, err := r.store.TrackIDs(ctx)
	if err != nil {
		return fmt.Errorf("list tracks: %w", err)
	}
	res.Tracks = len(tracks)

	neighbors, err := r.source.Fetch(ctx, tracks)
	if err == nil && len(neighbors) == 0 {
		err = &ExternalServiceError{}
	} else if err != nil {
		err = &ExternalServiceError{Err: err}
	}
	if err != nil {
		res.Aborted = true
		res.AbortCause = err.Error()
		log.Warn().Err(err).Int("tracks", len(tracks)).Msg("Similarity service returned no data, keeping existing edges")
		return err
	}

	edges := Flatten(neighbors)

	removed, err := r.store.DeleteAllSimilar(ctx)
	if err != nil {
		return fmt.Errorf("delete similar edges: %w", err)
	}
	res.Removed = removed
	res.Edges = len(edges)

	batches := Partition(edges, r.cfg.BatchSize)
	res.Batches = len(batches)
	res.Failed, res.Canceled = r.writeBatches(ctx, batches, log)
	return nil
}

// writeBatches persists batches on a bounded pool. Each batch is its own
// transaction. Batches not started before the deadline count as canceled.
func (r *Reconciler) writeBatches(ctx context.Context, batches [][]Edge, log zerolog.Logger) ([]PartialWriteError, int) {
	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		failed   []PartialWriteError
		canceled int
	)

	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)

	for i, batch := range batches {
		g.Go(func() error {
			if runCtx.Err() != nil {
				mu.Lock()
				canceled++
				mu.Unlock()
				return nil
			}
			err := r.store.MergeSimilar(runCtx, batch)
			if err == nil {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if runCtx.Err() != nil {
				canceled++
				return nil
			}
			log.Error().Err(err).Int("batch", i).Int("size", len(batch)).Msg("Similarity batch write failed")
			failed = append(failed, PartialWriteError{Batch: i, Size: len(batch), Err: err})
			return nil
		})
	}
	_ = g.Wait()

	if runCtx.Err() != nil && canceled > 0 {
		log.Warn().Int("canceled", canceled).Dur("timeout", r.cfg.Timeout).Msg("Similarity write phase hit its deadline")
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Batch < failed[j].Batch })
	return failed, canceled
}

// Flatten turns the neighbor map into edges ordered by source then target.
// Self-similarity entries are dropped.
func Flatten(n Neighbors) []Edge {
	size := 0
	for _, list := range n {
		size += len(list)
	}
	edges := make([]Edge, 0, size)
	for from, list := range n {
		for _, nb := range list {
			to := graph.TrackID(nb.TrackID)
			if to == from {
				continue
			}
			edges = append(edges, Edge{From: from, To: to, Similarity: nb.Similarity})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Partition splits edges into consecutive batches of at most size.
func Partition(edges []Edge, size int) [][]Edge {
	if size <= 0 {
		size = len(edges)
	}
	batches := make([][]Edge, 0, (len(edges)+size-1)/max(size, 1))
	for start := 0; start < len(edges); start += size {
		end := min(start+size, len(edges))
		batches = append(batches, edges[start:end])
	}
	return batches
}
