package timeframe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSpan is returned by a strict Resolver for spans outside AllowedSpans.
var ErrInvalidSpan = errors.New("invalid span")

// Periods is the resolved pair of windows for one report.
type Periods struct {
	Span     int          `json:"span"`
	Current  PeriodWindow `json:"current"`
	Previous PeriodWindow `json:"previous"`
}

type ResolverParams struct {
	// Location decides which calendar day "today" is. Defaults to UTC.
	Location *time.Location
	// DefaultSpan replaces unsupported spans. Defaults to DefaultSpan.
	DefaultSpan int
	// Strict rejects unsupported spans with ErrInvalidSpan instead of
	// falling back to DefaultSpan.
	Strict bool
}

type Resolver struct {
	timeProvider TimeProvider
	loc          *time.Location
	defaultSpan  int
	strict       bool
}

func NewResolver(params ResolverParams, timeProvider ...TimeProvider) *Resolver {
	var provider TimeProvider = &DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}

	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}

	def := params.DefaultSpan
	if !IsAllowedSpan(def) {
		def = DefaultSpan
	}

	return &Resolver{
		timeProvider: provider,
		loc:          loc,
		defaultSpan:  def,
		strict:       params.Strict,
	}
}

// DefaultSpan returns the span used when none, or an unsupported one, is requested.
func (r *Resolver) DefaultSpan() int {
	return r.defaultSpan
}

// NormalizeSpan maps span onto the allow-list.
func (r *Resolver) NormalizeSpan(span int) (int, error) {
	if IsAllowedSpan(span) {
		return span, nil
	}
	if r.strict {
		return 0, fmt.Errorf("%w: %d (allowed: 7, 30, 90)", ErrInvalidSpan, span)
	}
	return r.defaultSpan, nil
}

// Resolve returns the current window ending today and the equally long window
// immediately before it.
func (r *Resolver) Resolve(span int) (Periods, error) {
	span, err := r.NormalizeSpan(span)
	if err != nil {
		return Periods{}, err
	}

	today := Day(r.timeProvider.Now(r.loc))

	current := PeriodWindow{
		Start:      today.AddDate(0, 0, -span+1),
		End:        today,
		LengthDays: span,
	}
	previous := PeriodWindow{
		Start:      current.Start.AddDate(0, 0, -span),
		End:        current.Start.AddDate(0, 0, -1),
		LengthDays: span,
	}

	return Periods{Span: span, Current: current, Previous: previous}, nil
}

// ResolveRaw resolves a span taken verbatim from a request. An empty value means
// the default span in every mode; anything that does not start with an integer is
// treated as an unsupported span.
func (r *Resolver) ResolveRaw(raw string) (Periods, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return r.Resolve(r.defaultSpan)
	}

	span, ok := ParseSpan(raw)
	if !ok {
		if r.strict {
			return Periods{}, fmt.Errorf("%w: %q is not a number", ErrInvalidSpan, raw)
		}
		return r.Resolve(r.defaultSpan)
	}
	return r.Resolve(span)
}

// ParseSpan reads the leading base-10 integer of s, so "7" and "7d" both yield 7.
func ParseSpan(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
