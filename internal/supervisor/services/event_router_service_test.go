// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// stubRouter runs until closed or its context ends.
type stubRouter struct {
	runErr    error
	closeOnce sync.Once
	closed    chan struct{}
	closes    atomic.Int32
}

func newStubRouter() *stubRouter {
	return &stubRouter{closed: make(chan struct{})}
}

func (r *stubRouter) Run(ctx context.Context) error {
	if r.runErr != nil {
		return r.runErr
	}
	select {
	case <-ctx.Done():
	case <-r.closed:
	}
	return nil
}

func (r *stubRouter) Close() error {
	r.closes.Add(1)
	r.closeOnce.Do(func() { close(r.closed) })
	return nil
}

var _ suture.Service = (*EventRouterService)(nil)

func TestEventRouterService_StopsOnCancel(t *testing.T) {
	t.Parallel()

	router := newStubRouter()
	svc := NewEventRouterService(func(context.Context) (EventRouter, error) { return router, nil }, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if router.closes.Load() < 1 {
		t.Error("expected router to be closed")
	}
}

func TestEventRouterService_Failures(t *testing.T) {
	t.Parallel()

	runErr := errors.New("nats: connection closed")
	failing := newStubRouter()
	failing.runErr = runErr
	svc := NewEventRouterService(func(context.Context) (EventRouter, error) { return failing, nil }, time.Second)
	if err := svc.Serve(context.Background()); !errors.Is(err, runErr) {
		t.Errorf("expected run error, got %v", err)
	}

	setupErr := errors.New("jetstream unavailable")
	svc = NewEventRouterService(func(context.Context) (EventRouter, error) { return nil, setupErr }, 0)
	if err := svc.Serve(context.Background()); !errors.Is(err, setupErr) {
		t.Errorf("expected setup error, got %v", err)
	}
	if svc.shutdownTimeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", svc.shutdownTimeout)
	}
}

func TestEventRouterService_FreshRouterPerRestart(t *testing.T) {
	t.Parallel()

	var built atomic.Int32
	svc := NewEventRouterService(func(context.Context) (EventRouter, error) {
		built.Add(1)
		r := newStubRouter()
		if built.Load() == 1 {
			r.runErr = errors.New("first attempt fails")
		}
		return r, nil
	}, time.Second)

	sup := suture.New("test", suture.Spec{
		FailureThreshold: 5,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for built.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-errCh

	if built.Load() < 2 {
		t.Errorf("expected a new router after failure, built %d", built.Load())
	}
}
