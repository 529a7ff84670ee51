package analytics

import (
	"fmt"
	"sort"

	"pagepulse/internal/pkg/referrers"
)

// MaxSourceEntries caps a source breakdown.
const MaxSourceEntries = 5

// Dimension selects which per-day source map a breakdown reads.
type Dimension string

const (
	DimensionReferrers  Dimension = "referrers"
	DimensionUTMSources Dimension = "utm_sources"
)

func (d Dimension) counts(r DailyRecord) (SourceCounts, error) {
	switch d {
	case DimensionReferrers:
		return r.TopReferrers, nil
	case DimensionUTMSources:
		return r.TopUTMSources, nil
	default:
		return nil, fmt.Errorf("unknown source dimension: %q", d)
	}
}

// SourceBreakdownEntry is one ranked traffic source.
type SourceBreakdownEntry struct {
	Name           string  `json:"name"`
	// Label is the display name of a referrer host. UTM sources are shown as tagged.
	Label          string  `json:"label"`
	Views          int64   `json:"views"`
	ConversionRate float64 `json:"conversion_rate"`
}

// MergeSourceCounts sums the selected per-day maps across records. A key missing
// from a day contributes nothing for that day.
func MergeSourceCounts(records []DailyRecord, dim Dimension) (SourceCounts, error) {
	merged := SourceCounts{}
	for _, r := range records {
		counts, err := dim.counts(r)
		if err != nil {
			return nil, err
		}
		for name, views := range counts {
			merged[name] += views
		}
	}
	return merged, nil
}

// TopSources ranks the merged sources of a period.
//
// Records carry no per-source submissions, so each source is credited with the
// period's conversion rate in proportion to its share of the period's views:
// views/totalViews*conversionRate. This is an allocation estimate and not a measured
// per-source rate.
//
// Entries are ordered by estimated conversion rate, then views, both descending, then
// by name, and at most MaxSourceEntries are returned.
func TopSources(records []DailyRecord, dim Dimension, totalViews int64, conversionRate float64) ([]SourceBreakdownEntry, error) {
	merged, err := MergeSourceCounts(records, dim)
	if err != nil {
		return nil, err
	}

	entries := make([]SourceBreakdownEntry, 0, len(merged))
	for name, views := range merged {
		entry := SourceBreakdownEntry{Name: name, Label: name, Views: views}
		if dim == DimensionReferrers {
			entry.Label = referrers.Label(name)
		}
		if totalViews > 0 {
			entry.ConversionRate = float64(views) / float64(totalViews) * conversionRate
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ConversionRate != b.ConversionRate {
			return a.ConversionRate > b.ConversionRate
		}
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		return a.Name < b.Name
	})

	if len(entries) > MaxSourceEntries {
		entries = entries[:MaxSourceEntries]
	}
	return entries, nil
}
