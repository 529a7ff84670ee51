package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagepulse/internal/analytics"
	"pagepulse/internal/testsupport"
)

func TestStoreFetchDailyRecords(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	testsupport.CleanAllTables(db)
	store := analytics.NewStore(db)

	testsupport.CreateDailyRecord(t, db, "launch", analytics.DailyRecord{
		Date: testsupport.Day(2024, 7, 14), Views: 20,
		TopReferrers: analytics.SourceCounts{"google.com": 12},
	})
	testsupport.CreateDailyRecord(t, db, "launch", analytics.DailyRecord{Date: testsupport.Day(2024, 7, 12), Views: 10})
	testsupport.CreateDailyRecord(t, db, "launch", analytics.DailyRecord{Date: testsupport.Day(2024, 7, 1), Views: 99})
	testsupport.CreateDailyRecord(t, db, "other", analytics.DailyRecord{Date: testsupport.Day(2024, 7, 13), Views: 5})

	records, err := store.FetchDailyRecords(context.Background(), "launch",
		testsupport.Day(2024, 7, 10), time.Date(2024, 7, 14, 18, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, records[0].Date.Equal(testsupport.Day(2024, 7, 12)))
	assert.True(t, records[1].Date.Equal(testsupport.Day(2024, 7, 14)))
	assert.Equal(t, analytics.SourceCounts{"google.com": 12}, records[1].TopReferrers)
	assert.Empty(t, records[0].TopUTMSources)
}

func TestStoreFetchUnknownSlug(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	store := analytics.NewStore(db)

	records, err := store.FetchDailyRecords(context.Background(), "missing", testsupport.Day(2024, 7, 1), testsupport.Day(2024, 7, 31))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStoreSaveDailyRecordsUpserts(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	store := analytics.NewStore(db)
	ctx := context.Background()

	require.NoError(t, store.SaveDailyRecords(ctx, []analytics.DailyRecord{
		{Slug: "launch", Date: time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC), Views: 10, FormSubmissions: 1},
	}))
	require.NoError(t, store.SaveDailyRecords(ctx, []analytics.DailyRecord{
		{Slug: "launch", Date: testsupport.Day(2024, 7, 15), Views: 25, FormSubmissions: 2, AvgTimeOnPage: testsupport.Float(31)},
	}))
	require.NoError(t, store.SaveDailyRecords(ctx, nil))

	records, err := store.FetchDailyRecords(ctx, "launch", testsupport.Day(2024, 7, 15), testsupport.Day(2024, 7, 15))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(25), records[0].Views)
	assert.Equal(t, int64(2), records[0].FormSubmissions)
	require.NotNil(t, records[0].AvgTimeOnPage)
	assert.Equal(t, float64(31), *records[0].AvgTimeOnPage)
}

func TestLastUpdated(t *testing.T) {
	assert.Nil(t, analytics.LastUpdated(nil))

	newest := time.Date(2024, 7, 15, 22, 0, 0, 0, time.UTC)
	records := []analytics.DailyRecord{
		{UpdatedAt: time.Date(2024, 7, 14, 23, 0, 0, 0, time.UTC)},
		{UpdatedAt: newest},
		{UpdatedAt: time.Date(2024, 7, 13, 23, 0, 0, 0, time.UTC)},
	}

	got := analytics.LastUpdated(records)
	require.NotNil(t, got)
	assert.True(t, got.Equal(newest))
}
