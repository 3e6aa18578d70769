// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package similarity

import (
	"errors"
	"fmt"
)

// ErrReconcileInProgress is returned when a run starts while another is still writing.
var ErrReconcileInProgress = errors.New("similarity reconciliation already in progress")

// ExternalServiceError means the similarity service returned nothing usable.
// The run was aborted before any SIMILAR edge was touched.
type ExternalServiceError struct {
	Err error
}

func (e *ExternalServiceError) Error() string {
	if e.Err == nil {
		return "similarity service returned no data"
	}
	return fmt.Sprintf("similarity service: %v", e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// PartialWriteError records one batch that failed to persist. Other batches
// of the same run are unaffected.
type PartialWriteError struct {
	Batch int   `json:"batch"`
	Size  int   `json:"size"`
	Err   error `json:"-"`
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("batch %d (%d edges): %v", e.Batch, e.Size, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
