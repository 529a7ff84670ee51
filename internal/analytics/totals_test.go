package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pagepulse/internal/analytics"
	"pagepulse/internal/testsupport"
)

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name     string
		records  []analytics.DailyRecord
		expected analytics.TotalsSnapshot
	}{
		{
			name:     "No records",
			records:  nil,
			expected: analytics.TotalsSnapshot{},
		},
		{
			name: "Single day",
			records: []analytics.DailyRecord{
				{Views: 100, UniqueVisitors: 80, FormSubmissions: 5, CTAClicks: 12},
			},
			expected: analytics.TotalsSnapshot{
				Views: 100, UniqueVisitors: 80, Submissions: 5, CTAClicks: 12, ConversionRate: 5,
			},
		},
		{
			name: "Rate comes from summed counts",
			records: []analytics.DailyRecord{
				{Views: 10, FormSubmissions: 5},
				{Views: 90, FormSubmissions: 0},
			},
			// Averaging the daily rates would give 25%.
			expected: analytics.TotalsSnapshot{Views: 100, Submissions: 5, ConversionRate: 5},
		},
		{
			name: "Submissions without views",
			records: []analytics.DailyRecord{
				{Views: 0, FormSubmissions: 3},
			},
			expected: analytics.TotalsSnapshot{Submissions: 3, ConversionRate: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analytics.CalculateTotals(tt.records)
			assert.Equal(t, tt.expected.Views, got.Views)
			assert.Equal(t, tt.expected.UniqueVisitors, got.UniqueVisitors)
			assert.Equal(t, tt.expected.Submissions, got.Submissions)
			assert.Equal(t, tt.expected.CTAClicks, got.CTAClicks)
			assert.InDelta(t, tt.expected.ConversionRate, got.ConversionRate, 1e-9)
		})
	}
}

func TestCalculateTotalsIgnoresOrder(t *testing.T) {
	records := []analytics.DailyRecord{
		{Date: testsupport.Day(2024, 7, 1), Views: 40, UniqueVisitors: 30, FormSubmissions: 2, CTAClicks: 7},
		{Date: testsupport.Day(2024, 7, 2), Views: 25, UniqueVisitors: 20, FormSubmissions: 1, CTAClicks: 3},
		{Date: testsupport.Day(2024, 7, 4), Views: 35, UniqueVisitors: 33, FormSubmissions: 4, CTAClicks: 9},
	}
	reversed := []analytics.DailyRecord{records[2], records[0], records[1]}

	assert.Equal(t, analytics.CalculateTotals(records), analytics.CalculateTotals(reversed))
}

func TestCalculateTotalsWeightedAverages(t *testing.T) {
	records := []analytics.DailyRecord{
		{Views: 300, AvgTimeOnPage: testsupport.Float(40), BounceRate: testsupport.Float(50)},
		{Views: 100, AvgTimeOnPage: testsupport.Float(80), BounceRate: testsupport.Float(30)},
		// Days without a value do not pull the average towards zero.
		{Views: 600},
	}

	got := analytics.CalculateTotals(records)

	assert.Equal(t, int64(1000), got.Views)
	assert.Equal(t, float64(50), got.AvgTimeOnPage)
	assert.InDelta(t, 45.0, got.BounceRate, 1e-9)
}

func TestDailyRecordConversionRate(t *testing.T) {
	assert.InDelta(t, 12.5, analytics.DailyRecord{Views: 8, FormSubmissions: 1}.ConversionRate(), 1e-9)
	assert.Equal(t, float64(0), analytics.DailyRecord{FormSubmissions: 1}.ConversionRate())
}
