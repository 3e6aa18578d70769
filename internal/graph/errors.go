// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every *NotFoundError via errors.Is.
	ErrNotFound = errors.New("vertex not found")

	// ErrUnknownEdge is returned for edge kinds the operation does not support.
	ErrUnknownEdge = errors.New("unknown edge kind")

	// ErrUnknownInteraction is returned when no weight is configured for an interaction kind.
	ErrUnknownInteraction = errors.New("unknown interaction kind")
)

// NotFoundError reports a referenced vertex that does not exist.
type NotFoundError struct {
	Kind VertexKind
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFound is a shorthand for &NotFoundError{Kind: kind, ID: id}.
func NewNotFound(kind VertexKind, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
