package timeframe_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagepulse/internal/timeframe"
)

// TestTimeProvider implements the TimeProvider interface for testing
type TestTimeProvider struct {
	CurrentTime time.Time
}

// Now returns the fixed test time, allowing stable tests with predictable times
func (t *TestTimeProvider) Now(loc *time.Location) time.Time {
	return t.CurrentTime.In(loc)
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("Failed to load time zone location: " + name)
	}
	return loc
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	// 2024-07-15 14:30 UTC (Monday)
	fixedTime := time.Date(2024, 7, 15, 14, 30, 0, 0, time.UTC)
	resolver := timeframe.NewResolver(timeframe.ResolverParams{}, &TestTimeProvider{CurrentTime: fixedTime})

	testCases := []struct {
		name          string
		span          int
		expectedSpan  int
		currentStart  time.Time
		previousStart time.Time
		previousEnd   time.Time
	}{
		{
			name:          "7 days",
			span:          7,
			expectedSpan:  7,
			currentStart:  day(2024, 7, 9),
			previousStart: day(2024, 7, 2),
			previousEnd:   day(2024, 7, 8),
		},
		{
			name:          "30 days",
			span:          30,
			expectedSpan:  30,
			currentStart:  day(2024, 6, 16),
			previousStart: day(2024, 5, 17),
			previousEnd:   day(2024, 6, 15),
		},
		{
			name:          "90 days",
			span:          90,
			expectedSpan:  90,
			currentStart:  day(2024, 4, 17),
			previousStart: day(2024, 1, 18),
			previousEnd:   day(2024, 4, 16),
		},
		{
			name:          "unsupported span falls back to 30",
			span:          15,
			expectedSpan:  30,
			currentStart:  day(2024, 6, 16),
			previousStart: day(2024, 5, 17),
			previousEnd:   day(2024, 6, 15),
		},
		{
			name:          "zero falls back to 30",
			span:          0,
			expectedSpan:  30,
			currentStart:  day(2024, 6, 16),
			previousStart: day(2024, 5, 17),
			previousEnd:   day(2024, 6, 15),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			periods, err := resolver.Resolve(tc.span)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedSpan, periods.Span)
			assert.Equal(t, tc.currentStart, periods.Current.Start)
			assert.Equal(t, day(2024, 7, 15), periods.Current.End)
			assert.Equal(t, tc.expectedSpan, periods.Current.LengthDays)

			assert.Equal(t, tc.previousStart, periods.Previous.Start)
			assert.Equal(t, tc.previousEnd, periods.Previous.End)
			assert.Equal(t, tc.expectedSpan, periods.Previous.LengthDays)

			// No gap, no overlap.
			assert.Equal(t, periods.Current.Start, periods.Previous.End.AddDate(0, 0, 1))

			// LengthDays agrees with the boundaries.
			recomputed, err := timeframe.NewPeriodWindow(periods.Previous.Start, periods.Previous.End)
			require.NoError(t, err)
			assert.Equal(t, periods.Previous, recomputed)
		})
	}
}

func TestResolveUsesConfiguredTimezone(t *testing.T) {
	// 02:00 UTC on the 15th is still the 14th in New York.
	fixedTime := time.Date(2024, 7, 15, 2, 0, 0, 0, time.UTC)

	resolver := timeframe.NewResolver(timeframe.ResolverParams{
		Location: mustLoadLocation("America/New_York"),
	}, &TestTimeProvider{CurrentTime: fixedTime})

	periods, err := resolver.Resolve(7)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 7, 14), periods.Current.End)
	assert.Equal(t, day(2024, 7, 8), periods.Current.Start)

	utcResolver := timeframe.NewResolver(timeframe.ResolverParams{}, &TestTimeProvider{CurrentTime: fixedTime})
	periods, err = utcResolver.Resolve(7)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 7, 15), periods.Current.End)
}

func TestResolveStrict(t *testing.T) {
	fixedTime := time.Date(2024, 7, 15, 14, 30, 0, 0, time.UTC)
	resolver := timeframe.NewResolver(timeframe.ResolverParams{Strict: true}, &TestTimeProvider{CurrentTime: fixedTime})

	_, err := resolver.Resolve(15)
	require.Error(t, err)
	assert.True(t, errors.Is(err, timeframe.ErrInvalidSpan))

	_, err = resolver.ResolveRaw("abc")
	assert.ErrorIs(t, err, timeframe.ErrInvalidSpan)

	periods, err := resolver.ResolveRaw("")
	require.NoError(t, err)
	assert.Equal(t, 30, periods.Span)

	periods, err = resolver.ResolveRaw("90")
	require.NoError(t, err)
	assert.Equal(t, 90, periods.Span)
}

func TestResolveRaw(t *testing.T) {
	fixedTime := time.Date(2024, 7, 15, 14, 30, 0, 0, time.UTC)
	resolver := timeframe.NewResolver(timeframe.ResolverParams{}, &TestTimeProvider{CurrentTime: fixedTime})

	testCases := []struct {
		raw      string
		expected int
	}{
		{raw: "", expected: 30},
		{raw: "7", expected: 7},
		{raw: " 90 ", expected: 90},
		{raw: "15", expected: 30},
		{raw: "abc", expected: 30},
		{raw: "7days", expected: 7},
		{raw: "-7", expected: 30},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			periods, err := resolver.ResolveRaw(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, periods.Span)
		})
	}
}

func TestResolverDefaultSpan(t *testing.T) {
	resolver := timeframe.NewResolver(timeframe.ResolverParams{DefaultSpan: 7})
	assert.Equal(t, 7, resolver.DefaultSpan())

	span, err := resolver.NormalizeSpan(12)
	require.NoError(t, err)
	assert.Equal(t, 7, span)

	// An unsupported default is ignored.
	resolver = timeframe.NewResolver(timeframe.ResolverParams{DefaultSpan: 12})
	assert.Equal(t, timeframe.DefaultSpan, resolver.DefaultSpan())
}

func TestPeriodWindow(t *testing.T) {
	w, err := timeframe.NewPeriodWindow(
		time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 1, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.Equal(t, 31, w.LengthDays)
	assert.Equal(t, "2024-03-01..2024-03-31", w.String())
	assert.True(t, w.Contains(time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, w.Contains(day(2024, 4, 1)))
	assert.False(t, w.Contains(day(2024, 2, 29)))

	single, err := timeframe.NewPeriodWindow(day(2024, 3, 1), day(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, single.LengthDays)

	_, err = timeframe.NewPeriodWindow(day(2024, 3, 2), day(2024, 3, 1))
	assert.Error(t, err)
}

func TestParseSpan(t *testing.T) {
	n, ok := timeframe.ParseSpan("30")
	assert.True(t, ok)
	assert.Equal(t, 30, n)

	_, ok = timeframe.ParseSpan("days")
	assert.False(t, ok)

	assert.True(t, timeframe.IsAllowedSpan(90))
	assert.False(t, timeframe.IsAllowedSpan(60))
}
