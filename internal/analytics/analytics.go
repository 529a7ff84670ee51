// Package analytics turns a published page's daily traffic records into the
// dashboard's metrics, comparisons and breakdowns.
//
// The package is organized into focused modules:
//   - records.go: DailyRecord model and per-day source maps
//   - totals.go: Period totals and derived rates
//   - comparison.go: Period-over-period deltas
//   - referrers.go: Referrer and UTM source rankings
//   - conversions.go: Device breakdown and conversion funnel
//   - export.go: CSV export
//   - utm.go: UTM-tagged link builder
//   - store.go: gorm-backed record retrieval
//   - report.go: Report assembly and the ReportService
//
// Every aggregation is a pure function over the rows it is given; only
// ReportService performs I/O.
package analytics

// Models lists the gorm models owned by this package.
func Models() []any {
	return []any{&DailyRecord{}}
}
