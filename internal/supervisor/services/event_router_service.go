// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package services

import (
	"context"
	"fmt"
	"time"
)

// EventRouter matches the interaction event router lifecycle.
//
// Satisfied by *events.Router.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterFactory builds a fresh router. A closed watermill router cannot
// be run again, so every restart gets a new one.
type EventRouterFactory func(ctx context.Context) (EventRouter, error)

// EventRouterService supervises the interaction event consumer.
//
// Serve builds a router, runs it until ctx is canceled or it fails, then
// closes it. A router that stops on its own is reported as an error so the
// supervisor restarts it.
type EventRouterService struct {
	factory         EventRouterFactory
	shutdownTimeout time.Duration
	name            string
}

// NewEventRouterService creates the service. Zero shutdownTimeout means 30s.
func NewEventRouterService(factory EventRouterFactory, shutdownTimeout time.Duration) *EventRouterService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	return &EventRouterService{
		factory:         factory,
		shutdownTimeout: shutdownTimeout,
		name:            "event-router",
	}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	router, err := s.factory(ctx)
	if err != nil {
		return fmt.Errorf("event router setup failed: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- router.Run(ctx)
	}()

	select {
	case err := <-errCh:
		_ = router.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return fmt.Errorf("event router failed: %w", err)
		}
		return fmt.Errorf("event router stopped unexpectedly")

	case <-ctx.Done():
		closeErr := router.Close()
		select {
		case <-errCh:
		case <-time.After(s.shutdownTimeout):
			return fmt.Errorf("event router did not stop within %s", s.shutdownTimeout)
		}
		if closeErr != nil {
			return fmt.Errorf("event router close failed: %w", closeErr)
		}
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture logs.
func (s *EventRouterService) String() string {
	return s.name
}
