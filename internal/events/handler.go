// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tunegraph/internal/cache"
	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/logging"
	"github.com/tomtom215/tunegraph/internal/metrics"
)

// GraphModel is the part of graph.Model the consumer drives.
type GraphModel interface {
	RegisterMember(ctx context.Context, id graph.MemberID) error
	DefineTag(ctx context.Context, id graph.TagID) error
	PublishTrack(ctx context.Context, track graph.TrackID, author graph.MemberID, tags []graph.TagID) error
	Record(ctx context.Context, member graph.MemberID, track graph.TrackID, kind graph.Interaction) error
	Follow(ctx context.Context, from, to graph.MemberID) error
	Unfollow(ctx context.Context, from, to graph.MemberID) error
	SetEnabled(ctx context.Context, kind graph.VertexKind, id int64, enabled bool) error
}

// ScalarStore is the part of the relational store the consumer writes to.
type ScalarStore interface {
	UpsertMember(ctx context.Context, id int64) error
	UpsertTag(ctx context.Context, id int64, name string) error
	UpsertTrack(ctx context.Context, id, authorID int64, tagIDs []int64, createdAt time.Time) error
	RecordLike(ctx context.Context, member, track int64, at time.Time) error
	RemoveLike(ctx context.Context, member, track int64) error
	RecordView(ctx context.Context, member, track int64, at time.Time) error
}

// Handler applies interaction events to the graph and the scalar store.
// Events are deduplicated by EventID; an id is only remembered once its
// event applied cleanly, so a failed attempt can be retried. An interaction
// whose graph update succeeded but whose scalar write failed skips the graph
// update on retry, so its weight is added once.
type Handler struct {
	graph   GraphModel
	scalars ScalarStore
	seen    *cache.DedupSet
	weighed *cache.DedupSet
	logger  zerolog.Logger
}

// NewHandler creates a handler. seen may be nil to disable deduplication.
func NewHandler(g GraphModel, scalars ScalarStore, seen *cache.DedupSet) *Handler {
	return &Handler{
		graph:   g,
		scalars: scalars,
		seen:    seen,
		weighed: cache.NewDedupSet(0, 0),
		logger:  logging.WithComponent("events"),
	}
}

// HandleMessage is the watermill handler function.
func (h *Handler) HandleMessage(msg *message.Message) error {
	start := time.Now()

	event, err := Unmarshal(msg.Payload)
	if err != nil {
		metrics.RecordEvent("unknown", "invalid", time.Since(start))
		h.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Rejected malformed interaction event")
		return err
	}

	ctx := logging.ContextWithCorrelationID(msg.Context(), event.EventID)
	if err := h.Apply(ctx, event); err != nil {
		metrics.RecordEvent(string(event.Type), "error", time.Since(start))
		return err
	}
	return nil
}

// Apply processes one event. Duplicates return nil without side effects.
func (h *Handler) Apply(ctx context.Context, event *InteractionEvent) error {
	start := time.Now()

	if h.seen != nil && h.seen.Seen(event.EventID) {
		metrics.RecordEvent(string(event.Type), "duplicate", time.Since(start))
		logging.Ctx(ctx).Debug().Str("event_id", event.EventID).Msg("Skipped duplicate event")
		return nil
	}

	if err := h.apply(ctx, event); err != nil {
		if h.seen != nil {
			h.seen.Forget(event.EventID)
		}
		return fmt.Errorf("apply %s event %s: %w", event.Type, event.EventID, err)
	}

	metrics.RecordEvent(string(event.Type), "success", time.Since(start))
	return nil
}

func (h *Handler) apply(ctx context.Context, e *InteractionEvent) error {
	at := e.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	switch e.Type {
	case EventMemberRegistered:
		if err := h.graph.RegisterMember(ctx, graph.MemberID(e.MemberID)); err != nil {
			return err
		}
		return h.scalars.UpsertMember(ctx, e.MemberID)

	case EventTagDefined:
		if err := h.graph.DefineTag(ctx, graph.TagID(e.TagID)); err != nil {
			return err
		}
		return h.scalars.UpsertTag(ctx, e.TagID, e.Name)

	case EventTrackPublished:
		tags := make([]graph.TagID, len(e.TagIDs))
		for i, id := range e.TagIDs {
			tags[i] = graph.TagID(id)
		}
		if err := h.graph.PublishTrack(ctx, graph.TrackID(e.TrackID), graph.MemberID(e.MemberID), tags); err != nil {
			return err
		}
		return h.scalars.UpsertTrack(ctx, e.TrackID, e.MemberID, e.TagIDs, at)

	case EventTrackInteraction:
		if !h.weighed.Has(e.EventID) {
			if err := h.graph.Record(ctx, graph.MemberID(e.MemberID), graph.TrackID(e.TrackID), e.Interaction); err != nil {
				return err
			}
			h.weighed.Seen(e.EventID)
		}
		if err := h.recordScalar(ctx, e, at); err != nil {
			return err
		}
		h.weighed.Forget(e.EventID)
		return nil

	case EventMemberFollowed:
		return h.graph.Follow(ctx, graph.MemberID(e.MemberID), graph.MemberID(e.TargetID))

	case EventMemberUnfollowed:
		return h.graph.Unfollow(ctx, graph.MemberID(e.MemberID), graph.MemberID(e.TargetID))

	case EventVertexToggled:
		return h.graph.SetEnabled(ctx, e.VertexKind, e.TargetID, e.Enabled)
	}
	return &InvalidEventError{EventID: e.EventID, Reason: fmt.Sprintf("unknown event type %q", e.Type)}
}

// recordScalar mirrors an interaction into the counts the leaderboards read.
func (h *Handler) recordScalar(ctx context.Context, e *InteractionEvent, at time.Time) error {
	switch e.Interaction {
	case graph.InteractionPlay:
		return h.scalars.RecordView(ctx, e.MemberID, e.TrackID, at)
	case graph.InteractionLike:
		return h.scalars.RecordLike(ctx, e.MemberID, e.TrackID, at)
	case graph.InteractionDislike:
		return h.scalars.RemoveLike(ctx, e.MemberID, e.TrackID)
	}
	return fmt.Errorf("%w: %q", graph.ErrUnknownInteraction, string(e.Interaction))
}
