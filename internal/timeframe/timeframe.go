// Package timeframe resolves report spans into calendar-day windows.
package timeframe

import (
	"fmt"
	"time"
)

// DateLayout is the day format used in URLs, CSV exports and filenames.
const DateLayout = "2006-01-02"

// Supported report spans, in days.
const (
	Span7Days  = 7
	Span30Days = 30
	Span90Days = 90

	DefaultSpan = Span30Days
)

// AllowedSpans lists the spans an operator may request.
var AllowedSpans = []int{Span7Days, Span30Days, Span90Days}

type TimeProvider interface {
	Now(loc *time.Location) time.Time
}

// DefaultTimeProvider uses the system clock.
type DefaultTimeProvider struct{}

func (p *DefaultTimeProvider) Now(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// PeriodWindow is an inclusive range of calendar days.
// Start and End are midnight UTC values that identify a day, not an instant.
type PeriodWindow struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	LengthDays int       `json:"length_days"`
}

// NewPeriodWindow builds a window from two days. Any time-of-day component is dropped.
func NewPeriodWindow(start, end time.Time) (PeriodWindow, error) {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return PeriodWindow{}, fmt.Errorf("window end %s is before start %s",
			end.Format(DateLayout), start.Format(DateLayout))
	}
	return PeriodWindow{
		Start:      start,
		End:        end,
		LengthDays: daysBetween(start, end) + 1,
	}, nil
}

// Contains reports whether t falls on one of the window's days.
func (w PeriodWindow) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// String renders the window as "YYYY-MM-DD..YYYY-MM-DD".
func (w PeriodWindow) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}

// Day returns the calendar day of t, as observed in t's own location, at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsAllowedSpan reports whether span is one of AllowedSpans.
func IsAllowedSpan(span int) bool {
	for _, s := range AllowedSpans {
		if s == span {
			return true
		}
	}
	return false
}

// daysBetween counts whole days from a to b. Both must be UTC midnights.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
