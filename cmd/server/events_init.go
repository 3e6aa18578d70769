// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/tunegraph/internal/cache"
	"github.com/tomtom215/tunegraph/internal/config"
	"github.com/tomtom215/tunegraph/internal/events"
	"github.com/tomtom215/tunegraph/internal/logging"
	"github.com/tomtom215/tunegraph/internal/supervisor/services"
)

// eventPipeline owns one router together with its NATS connections.
type eventPipeline struct {
	router     *events.Router
	subscriber message.Subscriber
	publisher  message.Publisher
}

func (p *eventPipeline) Run(ctx context.Context) error {
	return p.router.Run(ctx)
}

func (p *eventPipeline) Close() error {
	errs := []error{p.router.Close(), p.subscriber.Close()}
	if p.publisher != nil {
		errs = append(errs, p.publisher.Close())
	}
	return errors.Join(errs...)
}

// newEventRouterFactory returns a factory that connects to NATS and builds
// the interaction consumer. The dedup set outlives router restarts.
func newEventRouterFactory(cfg *config.Config, model events.GraphModel, scalars events.ScalarStore) services.EventRouterFactory {
	seen := cache.NewDedupSet(cfg.NATS.DedupCapacity, cfg.NATS.DedupTTL)
	handler := events.NewHandler(model, scalars, seen)
	wmLogger := logging.NewWatermillAdapter(logging.WithComponent("events"))

	natsCfg := events.DefaultNATSConfig()
	natsCfg.URL = cfg.NATS.URL
	if cfg.NATS.Durable != "" {
		natsCfg.DurableName = cfg.NATS.Durable
	}
	if cfg.NATS.QueueGroup != "" {
		natsCfg.QueueGroup = cfg.NATS.QueueGroup
	}
	natsCfg.SubscribersCount = cfg.NATS.SubscribersCount
	natsCfg.CloseTimeout = cfg.NATS.CloseTimeout

	routerCfg := events.DefaultRouterConfig()
	routerCfg.Topic = cfg.NATS.Topic
	routerCfg.CloseTimeout = cfg.NATS.CloseTimeout
	routerCfg.RetryMaxRetries = cfg.NATS.RetryCount
	if cfg.NATS.RetryInitialInterval > 0 {
		routerCfg.RetryInitialInterval = cfg.NATS.RetryInitialInterval
	}
	routerCfg.PoisonQueueTopic = ""
	if cfg.NATS.PoisonQueueEnabled {
		routerCfg.PoisonQueueTopic = cfg.NATS.PoisonQueueTopic
	}

	return func(ctx context.Context) (services.EventRouter, error) {
		sub, err := events.NewNATSSubscriber(natsCfg, wmLogger)
		if err != nil {
			return nil, err
		}

		var pub message.Publisher
		if routerCfg.PoisonQueueTopic != "" {
			if pub, err = events.NewNATSPublisher(natsCfg, wmLogger); err != nil {
				_ = sub.Close()
				return nil, err
			}
		}

		router, err := events.NewRouter(routerCfg, sub, pub, handler, wmLogger)
		if err != nil {
			_ = sub.Close()
			if pub != nil {
				_ = pub.Close()
			}
			return nil, fmt.Errorf("build event router: %w", err)
		}

		logging.Ctx(ctx).Info().
			Str("url", natsCfg.URL).
			Str("topic", routerCfg.Topic).
			Str("poison_topic", routerCfg.PoisonQueueTopic).
			Msg("Event router connected")
		return &eventPipeline{router: router, subscriber: sub, publisher: pub}, nil
	}
}
