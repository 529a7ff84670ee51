package analytics_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagepulse/internal/analytics"
)

func TestTopSourcesMergesDays(t *testing.T) {
	records := []analytics.DailyRecord{
		{Views: 50, TopReferrers: analytics.SourceCounts{"google.com": 50}},
		{Views: 50, TopReferrers: analytics.SourceCounts{"google.com": 30, "twitter.com": 20}},
	}

	entries, err := analytics.TopSources(records, analytics.DimensionReferrers, 100, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "google.com", entries[0].Name)
	assert.Equal(t, "Google", entries[0].Label)
	assert.Equal(t, int64(80), entries[0].Views)
	assert.InDelta(t, 8.0, entries[0].ConversionRate, 1e-9)

	assert.Equal(t, "twitter.com", entries[1].Name)
	assert.Equal(t, int64(20), entries[1].Views)
	assert.InDelta(t, 2.0, entries[1].ConversionRate, 1e-9)
}

func TestTopSourcesCapsAndOrders(t *testing.T) {
	counts := analytics.SourceCounts{}
	for i := 1; i <= 8; i++ {
		counts[fmt.Sprintf("site%d.com", i)] = int64(i * 10)
	}
	records := []analytics.DailyRecord{{Views: 360, TopUTMSources: counts}}

	entries, err := analytics.TopSources(records, analytics.DimensionUTMSources, 360, 5)
	require.NoError(t, err)
	require.Len(t, entries, analytics.MaxSourceEntries)

	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].ConversionRate, entries[i].ConversionRate)
	}
	assert.Equal(t, "site8.com", entries[0].Name)
	assert.Equal(t, "site4.com", entries[4].Name)
}

func TestTopSourcesTies(t *testing.T) {
	records := []analytics.DailyRecord{
		{Views: 40, TopReferrers: analytics.SourceCounts{"b.com": 10, "a.com": 10, "c.com": 20}},
	}

	// Without conversions every estimate is zero, so views then name decide.
	entries, err := analytics.TopSources(records, analytics.DimensionReferrers, 40, 0)
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"c.com", "a.com", "b.com"}, names)
}

func TestTopSourcesEmpty(t *testing.T) {
	entries, err := analytics.TopSources(nil, analytics.DimensionReferrers, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	entries, err = analytics.TopSources([]analytics.DailyRecord{{Views: 10}}, analytics.DimensionUTMSources, 10, 50)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTopSourcesWithoutViews(t *testing.T) {
	records := []analytics.DailyRecord{{TopReferrers: analytics.SourceCounts{"google.com": 3}}}

	entries, err := analytics.TopSources(records, analytics.DimensionReferrers, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, float64(0), entries[0].ConversionRate)
}

func TestTopSourcesUnknownDimension(t *testing.T) {
	records := []analytics.DailyRecord{{Views: 1}}

	_, err := analytics.TopSources(records, analytics.Dimension("countries"), 1, 0)
	assert.Error(t, err)
}

func TestMergeSourceCounts(t *testing.T) {
	records := []analytics.DailyRecord{
		{TopUTMSources: analytics.SourceCounts{"newsletter": 4}},
		{TopUTMSources: nil},
		{TopUTMSources: analytics.SourceCounts{"newsletter": 1, "twitter": 2}},
	}

	merged, err := analytics.MergeSourceCounts(records, analytics.DimensionUTMSources)
	require.NoError(t, err)
	assert.Equal(t, analytics.SourceCounts{"newsletter": 5, "twitter": 2}, merged)
}
