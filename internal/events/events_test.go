// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package events

import (
	"errors"
	"testing"

	"github.com/tomtom215/tunegraph/internal/graph"
)

func TestInteractionEvent_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		event   InteractionEvent
		wantErr bool
	}{
		{
			name:  "member registered",
			event: InteractionEvent{EventID: "e1", Type: EventMemberRegistered, MemberID: 1},
		},
		{
			name:    "missing event id",
			event:   InteractionEvent{Type: EventMemberRegistered, MemberID: 1},
			wantErr: true,
		},
		{
			name:    "unknown type",
			event:   InteractionEvent{EventID: "e1", Type: "track.deleted", TrackID: 1},
			wantErr: true,
		},
		{
			name:  "like",
			event: InteractionEvent{EventID: "e1", Type: EventTrackInteraction, MemberID: 1, TrackID: 2, Interaction: graph.InteractionLike},
		},
		{
			name:    "unknown interaction",
			event:   InteractionEvent{EventID: "e1", Type: EventTrackInteraction, MemberID: 1, TrackID: 2, Interaction: "share"},
			wantErr: true,
		},
		{
			name:    "self follow",
			event:   InteractionEvent{EventID: "e1", Type: EventMemberFollowed, MemberID: 1, TargetID: 1},
			wantErr: true,
		},
		{
			name:    "published without author",
			event:   InteractionEvent{EventID: "e1", Type: EventTrackPublished, TrackID: 5},
			wantErr: true,
		},
		{
			name:    "toggle unknown kind",
			event:   InteractionEvent{EventID: "e1", Type: EventVertexToggled, VertexKind: "Album", TargetID: 1},
			wantErr: true,
		},
		{
			name:  "toggle track",
			event: InteractionEvent{EventID: "e1", Type: EventVertexToggled, VertexKind: graph.KindTrack, TargetID: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("expected ErrInvalidEvent, got %v", err)
			}
		})
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	t.Parallel()

	e := NewEvent(EventTrackPublished)
	e.TrackID, e.MemberID, e.TagIDs = 7, 3, []int64{1, 2}

	data, err := Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.EventID != e.EventID || got.TrackID != 7 || len(got.TagIDs) != 2 {
		t.Errorf("expected %+v, got %+v", e, got)
	}

	if _, err := Unmarshal([]byte("{not json")); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent for bad JSON, got %v", err)
	}
	if _, err := Marshal(&InteractionEvent{Type: EventTagDefined}); err == nil {
		t.Error("expected Marshal to reject an invalid event")
	}
}
