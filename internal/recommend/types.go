// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/tunegraph/internal/graph"
)

// Strategy names a recommendation algorithm.
type Strategy string

const (
	StrategyMemberLikeSim    Strategy = "member-like-sim"
	StrategyFollowingLike    Strategy = "following-like"
	StrategyFollowingLikeSim Strategy = "following-like-sim"
	StrategySimilarTracks    Strategy = "similar"
	StrategyFanMix           Strategy = "fanmix"
)

// ErrUnknownStrategy is returned for a strategy that is not registered.
var ErrUnknownStrategy = errors.New("unknown recommendation strategy")

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case StrategyMemberLikeSim, StrategyFollowingLike, StrategyFollowingLikeSim, StrategySimilarTracks, StrategyFanMix:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// NeedsTag reports whether the strategy filters candidates by tag.
func (s Strategy) NeedsTag() bool {
	switch s {
	case StrategyMemberLikeSim, StrategyFollowingLike, StrategyFollowingLikeSim:
		return true
	}
	return false
}

// Request is one recommendation query. Which ids matter depends on Strategy.
type Request struct {
	Strategy Strategy       `json:"strategy"`
	MemberID graph.MemberID `json:"memberId,omitempty"`
	TagID    graph.TagID    `json:"tagId,omitempty"`
	TrackID  graph.TrackID  `json:"trackId,omitempty"`
	Limit    int            `json:"limit"`
}

// Response is the answer to a Request.
type Response struct {
	Strategy    Strategy        `json:"strategy"`
	Tracks      []graph.TrackID `json:"tracks"`
	Cached      bool            `json:"cached"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// Algorithm computes recommendations for one strategy. Implementations
// return de-duplicated track ids, most relevant first, at most req.Limit long.
type Algorithm interface {
	Strategy() Strategy
	Recommend(ctx context.Context, req Request) ([]graph.TrackID, error)
}
