// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

/*
Package supervisor provides process supervision for tunegraph using suture v4.

The tree groups long-running services into three layers so that a failure in
one layer restarts only that layer:

	RootSupervisor ("tunegraph")
	├── JobsSupervisor ("jobs-layer")
	│   └── SchedulerService (reconcileSimilarity, rebuildRanking)
	├── IngestSupervisor ("ingest-layer")
	│   └── EventRouterService (if NATS is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's backoff; the failure threshold, decay
and backoff are configurable through TreeConfig. Supervisor events are logged
through sutureslog, backed by the zerolog slog adapter in internal/logging.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddJobService(services.NewSchedulerService(jobs, cfg))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("supervisor stopped")
	}

Service wrappers live in the services subpackage.
*/
package supervisor
