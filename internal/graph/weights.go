// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package graph

import "fmt"

// Interaction is a kind of member-track interaction that moves LIKE weight.
type Interaction string

const (
	InteractionPlay    Interaction = "play"
	InteractionLike    Interaction = "like"
	InteractionDislike Interaction = "dislike"
)

// Weights maps interaction kinds to weight deltas. It is configuration,
// fixed at construction of the Model.
type Weights struct {
	Play    float64 `koanf:"play"`
	Like    float64 `koanf:"like"`
	Dislike float64 `koanf:"dislike"`
}

// DefaultWeights returns the production deltas.
func DefaultWeights() Weights {
	return Weights{
		Play:    1,
		Like:    3,
		Dislike: -3,
	}
}

// Delta returns the weight delta for kind.
func (w Weights) Delta(kind Interaction) (float64, error) {
	switch kind {
	case InteractionPlay:
		return w.Play, nil
	case InteractionLike:
		return w.Like, nil
	case InteractionDislike:
		return w.Dislike, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInteraction, string(kind))
}
