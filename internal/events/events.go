// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/tunegraph/internal/graph"
	"github.com/tomtom215/tunegraph/internal/validation"
)

// EventType names what an InteractionEvent describes.
type EventType string

const (
	EventMemberRegistered EventType = "member.registered"
	EventTagDefined       EventType = "tag.defined"
	EventTrackPublished   EventType = "track.published"
	EventTrackInteraction EventType = "track.interaction"
	EventMemberFollowed   EventType = "member.followed"
	EventMemberUnfollowed EventType = "member.unfollowed"
	EventVertexToggled    EventType = "vertex.toggled"
)

// ErrInvalidEvent is matched by every *InvalidEventError.
var ErrInvalidEvent = errors.New("invalid event")

// InvalidEventError reports a payload that can never be applied.
type InvalidEventError struct {
	EventID string
	Reason  string
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("invalid event %s: %s", e.EventID, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidEvent) match.
func (e *InvalidEventError) Is(target error) bool {
	return target == ErrInvalidEvent
}

// InteractionEvent is the message consumed from the interactions topic.
// Which id fields are required depends on Type.
type InteractionEvent struct {
	EventID    string    `json:"event_id" validate:"required"`
	Type       EventType `json:"type" validate:"required"`
	OccurredAt time.Time `json:"occurred_at"`

	MemberID int64   `json:"member_id,omitempty"`
	TrackID  int64   `json:"track_id,omitempty"`
	TagID    int64   `json:"tag_id,omitempty"`
	TargetID int64   `json:"target_id,omitempty"`
	TagIDs   []int64 `json:"tag_ids,omitempty"`

	// Name is the tag name for tag.defined.
	Name string `json:"name,omitempty"`

	// Interaction is play, like or dislike for track.interaction.
	Interaction graph.Interaction `json:"interaction,omitempty"`

	// VertexKind and Enabled drive vertex.toggled.
	VertexKind graph.VertexKind `json:"vertex_kind,omitempty"`
	Enabled    bool             `json:"enabled,omitempty"`
}

// NewEvent creates an event of type t with a fresh id, stamped now.
func NewEvent(t EventType) *InteractionEvent {
	return &InteractionEvent{
		EventID:    uuid.New().String(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate checks that the fields Type needs are present.
func (e *InteractionEvent) Validate() error {
	if verr := validation.ValidateStruct(e); verr != nil {
		return &InvalidEventError{EventID: e.EventID, Reason: verr.Error()}
	}

	invalid := func(reason string) error {
		return &InvalidEventError{EventID: e.EventID, Reason: reason}
	}

	switch e.Type {
	case EventMemberRegistered:
		if e.MemberID == 0 {
			return invalid("member_id is required")
		}
	case EventTagDefined:
		if e.TagID == 0 {
			return invalid("tag_id is required")
		}
	case EventTrackPublished:
		if e.TrackID == 0 || e.MemberID == 0 {
			return invalid("track_id and member_id are required")
		}
	case EventTrackInteraction:
		if e.TrackID == 0 || e.MemberID == 0 {
			return invalid("track_id and member_id are required")
		}
		switch e.Interaction {
		case graph.InteractionPlay, graph.InteractionLike, graph.InteractionDislike:
		default:
			return invalid(fmt.Sprintf("unknown interaction %q", e.Interaction))
		}
	case EventMemberFollowed, EventMemberUnfollowed:
		if e.MemberID == 0 || e.TargetID == 0 {
			return invalid("member_id and target_id are required")
		}
		if e.MemberID == e.TargetID {
			return invalid("a member cannot follow itself")
		}
	case EventVertexToggled:
		if !e.VertexKind.Valid() {
			return invalid(fmt.Sprintf("unknown vertex kind %q", e.VertexKind))
		}
		if e.TargetID == 0 {
			return invalid("target_id is required")
		}
	default:
		return invalid(fmt.Sprintf("unknown event type %q", e.Type))
	}
	return nil
}

// Marshal validates and encodes an event.
func Marshal(event *InteractionEvent) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates an event.
func Unmarshal(data []byte) (*InteractionEvent, error) {
	var event InteractionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, &InvalidEventError{Reason: fmt.Sprintf("decode: %v", err)}
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}
