// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tunegraph/internal/logging"
)

// ModelStore is what the Model needs from a backend.
type ModelStore interface {
	VertexStore
	EdgeWriter
}

// Model applies the mutation rules of the interaction graph on top of a store.
//
// Weight accumulation is plain addition with no decay and no floor, so a
// negative delta may drive a weight below zero. RecordInteraction is not
// transactional across tags: if a PREFER update fails part way, the LIKE
// update and the PREFER updates before it stay applied.
type Model struct {
	store   ModelStore
	weights Weights
	logger  zerolog.Logger

	hooksMu  sync.RWMutex
	onChange []func()
}

// NewModel creates a Model over store using the given interaction weights.
func NewModel(store ModelStore, weights Weights) *Model {
	return &Model{
		store:   store,
		weights: weights,
		logger:  logging.WithComponent("graph"),
	}
}

// OnChange registers fn to run after every mutation that may have changed
// an edge or a vertex flag, including a RecordInteraction that failed after
// its LIKE update.
func (m *Model) OnChange(fn func()) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.onChange = append(m.onChange, fn)
}

func (m *Model) changed() {
	m.hooksMu.RLock()
	defer m.hooksMu.RUnlock()
	for _, fn := range m.onChange {
		fn()
	}
}

// Weights returns the interaction weights the model was built with.
func (m *Model) Weights() Weights {
	return m.weights
}

// RecordInteraction adds delta to LIKE(member, track) and to PREFER(member, tag)
// for every tag of the track.
func (m *Model) RecordInteraction(ctx context.Context, member MemberID, track TrackID, delta float64) error {
	if err := m.requireVertex(ctx, KindMember, int64(member)); err != nil {
		return err
	}
	if err := m.requireVertex(ctx, KindTrack, int64(track)); err != nil {
		return err
	}

	if err := m.store.AddLikeWeight(ctx, member, track, delta); err != nil {
		return fmt.Errorf("add like weight: %w", err)
	}
	defer m.changed()

	tags, err := m.store.TagsOfTrack(ctx, track)
	if err != nil {
		return fmt.Errorf("list tags of track %d: %w", track, err)
	}
	for i, tag := range tags {
		if err := m.store.AddPreferWeight(ctx, member, tag, delta); err != nil {
			m.logger.Warn().Err(err).
				Int64("member_id", int64(member)).
				Int64("track_id", int64(track)).
				Int("applied_tags", i).
				Int("total_tags", len(tags)).
				Msg("Prefer update failed part way, earlier updates stay applied")
			return fmt.Errorf("add prefer weight for tag %d: %w", tag, err)
		}
	}
	return nil
}

// Record applies an interaction using the configured weight for kind.
func (m *Model) Record(ctx context.Context, member MemberID, track TrackID, kind Interaction) error {
	delta, err := m.weights.Delta(kind)
	if err != nil {
		return err
	}
	return m.RecordInteraction(ctx, member, track, delta)
}

// Follow creates FOLLOW(from, to). Following twice is a no-op.
func (m *Model) Follow(ctx context.Context, from, to MemberID) error {
	if err := m.requireMembers(ctx, from, to); err != nil {
		return err
	}
	return m.notify(m.store.MergeFollow(ctx, from, to))
}

// Unfollow removes FOLLOW(from, to). Removing a missing edge is a no-op.
func (m *Model) Unfollow(ctx context.Context, from, to MemberID) error {
	if err := m.requireMembers(ctx, from, to); err != nil {
		return err
	}
	return m.notify(m.store.DeleteFollow(ctx, from, to))
}

// RecordAuthorship creates WRITE(member, track) once.
func (m *Model) RecordAuthorship(ctx context.Context, member MemberID, track TrackID) error {
	if err := m.requireVertex(ctx, KindMember, int64(member)); err != nil {
		return err
	}
	if err := m.requireVertex(ctx, KindTrack, int64(track)); err != nil {
		return err
	}
	return m.notify(m.store.MergeWrite(ctx, member, track))
}

// RegisterMember creates the member vertex if it does not exist.
func (m *Model) RegisterMember(ctx context.Context, id MemberID) error {
	return m.notify(m.store.MergeVertex(ctx, KindMember, int64(id)))
}

// DefineTag creates the tag vertex if it does not exist.
func (m *Model) DefineTag(ctx context.Context, id TagID) error {
	return m.notify(m.store.MergeVertex(ctx, KindTag, int64(id)))
}

// PublishTrack creates a track with its HAVE edges and the author's WRITE edge.
// HAVE is only written when the track is created; publishing an existing
// track again leaves its tags untouched.
func (m *Model) PublishTrack(ctx context.Context, track TrackID, author MemberID, tags []TagID) error {
	if err := m.requireVertex(ctx, KindMember, int64(author)); err != nil {
		return err
	}
	for _, tag := range tags {
		if err := m.requireVertex(ctx, KindTag, int64(tag)); err != nil {
			return err
		}
	}

	exists, err := m.store.VertexExists(ctx, KindTrack, int64(track))
	if err != nil {
		return fmt.Errorf("check track %d: %w", track, err)
	}
	if !exists {
		if err := m.store.MergeVertex(ctx, KindTrack, int64(track)); err != nil {
			return fmt.Errorf("create track %d: %w", track, err)
		}
		defer m.changed()
		for _, tag := range tags {
			if err := m.store.MergeHave(ctx, track, tag); err != nil {
				return fmt.Errorf("tag track %d with %d: %w", track, tag, err)
			}
		}
	}
	return m.notify(m.store.MergeWrite(ctx, author, track))
}

// SetEnabled toggles the read-path flag of a vertex.
func (m *Model) SetEnabled(ctx context.Context, kind VertexKind, id int64, enabled bool) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown vertex kind %q", string(kind))
	}
	return m.notify(m.store.SetVertexEnabled(ctx, kind, id, enabled))
}

// SetWeight overwrites the weight of a LIKE or PREFER edge. It is an
// administrative correction and the only way a weight can be lowered
// without a negative interaction.
func (m *Model) SetWeight(ctx context.Context, kind EdgeKind, from, to int64, weight float64) error {
	if !kind.Weighted() {
		return fmt.Errorf("%w: %s has no weight", ErrUnknownEdge, kind)
	}
	fromKind, toKind, err := kind.Endpoints()
	if err != nil {
		return err
	}
	if err := m.requireVertex(ctx, fromKind, from); err != nil {
		return err
	}
	if err := m.requireVertex(ctx, toKind, to); err != nil {
		return err
	}

	m.logger.Info().
		Str("edge", string(kind)).
		Int64("from", from).
		Int64("to", to).
		Float64("weight", weight).
		Msg("Edge weight set explicitly")
	return m.notify(m.store.SetEdgeWeight(ctx, kind, from, to, weight))
}

// notify runs the change hooks when err is nil and passes err through.
func (m *Model) notify(err error) error {
	if err == nil {
		m.changed()
	}
	return err
}

func (m *Model) requireMembers(ctx context.Context, ids ...MemberID) error {
	for _, id := range ids {
		if err := m.requireVertex(ctx, KindMember, int64(id)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) requireVertex(ctx context.Context, kind VertexKind, id int64) error {
	ok, err := m.store.VertexExists(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("check %s %d: %w", kind, id, err)
	}
	if !ok {
		return NewNotFound(kind, id)
	}
	return nil
}
