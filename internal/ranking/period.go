// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

package ranking

import (
	"fmt"
	"strings"
	"time"
)

// Period is a leaderboard time window.
type Period string

const (
	PeriodWeek  Period = "WEEK"
	PeriodMonth Period = "MONTH"
)

// Periods lists every supported period in rebuild order.
var Periods = []Period{PeriodWeek, PeriodMonth}

// InvalidPeriodError is returned for a period string that is neither WEEK nor MONTH.
type InvalidPeriodError struct {
	Value string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid ranking period %q (want WEEK or MONTH)", e.Value)
}

// ParsePeriod parses a period name, case-insensitively.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", &InvalidPeriodError{Value: s}
	}
	return p, nil
}

// Valid reports whether p is a supported period.
func (p Period) Valid() bool {
	return p == PeriodWeek || p == PeriodMonth
}

// Start returns the beginning of the window ending at now.
func (p Period) Start(now time.Time) time.Time {
	if p == PeriodMonth {
		return now.AddDate(0, -1, 0)
	}
	return now.AddDate(0, 0, -7)
}

func (p Period) String() string { return string(p) }

// Key returns the cache key holding the leaderboard of tag for p.
func Key(tag int64, p Period) string {
	return fmt.Sprintf("ranking:%d:%s", tag, p)
}
