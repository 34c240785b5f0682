// Package period computes billing windows from an interval unit, a count,
// and an anchor date. It is a pure calculation package with no dependencies
// on the rest of the billing core.
package period

import "time"

// Interval is a calendar unit used to size a billing window.
type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// Valid reports whether the interval is one of the supported calendar units.
func (i Interval) Valid() bool {
	switch i {
	case IntervalDay, IntervalWeek, IntervalMonth, IntervalYear:
		return true
	}
	return false
}

// Period is a billing window. Start is the anchor date, End is the anchor
// shifted forward by count intervals. The window is half-open: [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// New computes the window starting at anchor and spanning count intervals.
// All returned timestamps are in UTC. Calendar arithmetic follows
// time.AddDate semantics, so adding one month to Jan 31 normalizes to
// Mar 2/3 rather than clamping to the end of February.
func New(interval Interval, count int, anchor time.Time) (Period, error) {
	if !interval.Valid() {
		return Period{}, ErrInvalidInterval
	}
	if count < 0 {
		return Period{}, ErrInvalidCount
	}

	start := anchor.UTC()
	return Period{
		Start: start,
		End:   add(start, interval, count),
	}, nil
}

// Contains reports whether t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(p.Start) && t.Before(p.End)
}

// Duration returns the calendar length of the window.
func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

func add(t time.Time, interval Interval, count int) time.Time {
	switch interval {
	case IntervalDay:
		return t.AddDate(0, 0, count)
	case IntervalWeek:
		return t.AddDate(0, 0, 7*count)
	case IntervalMonth:
		return t.AddDate(0, count, 0)
	case IntervalYear:
		return t.AddDate(count, 0, 0)
	}
	return t
}
