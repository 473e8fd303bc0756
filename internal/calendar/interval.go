// Package calendar implements meeting availability and booking: interval
// math, working-hours slot generation, free/busy resolution against Google
// Calendar, and an in-memory demo fallback used when no calendar credential
// is connected.
package calendar

import (
	"errors"
	"time"
)

// ErrInvalidInterval is returned when an interval's start is not before its end.
var ErrInvalidInterval = errors.New("calendar: interval start must be before end")

// Interval is a half-open time range [Start, End). Immutable once constructed.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Validate checks the Start < End invariant.
func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps reports whether a and b strictly overlap. Intervals that merely
// touch at an endpoint do not overlap.
func Overlaps(a, b Interval) (bool, error) {
	if err := a.Validate(); err != nil {
		return false, err
	}
	if err := b.Validate(); err != nil {
		return false, err
	}
	return a.Start.Before(b.End) && b.Start.Before(a.End), nil
}
