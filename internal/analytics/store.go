package analytics

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pagepulse/internal/timeframe"
)

// RecordFetcher loads a page's daily records for an inclusive day range. Days without
// traffic may be absent from the result.
type RecordFetcher interface {
	FetchDailyRecords(ctx context.Context, slug string, start, end time.Time) ([]DailyRecord, error)
}

// Store reads and writes daily records through gorm.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FetchDailyRecords returns the page's records between start and end, oldest first.
func (s *Store) FetchDailyRecords(ctx context.Context, slug string, start, end time.Time) ([]DailyRecord, error) {
	var records []DailyRecord

	err := s.db.WithContext(ctx).
		Where("slug = ?", slug).
		Where("date BETWEEN ? AND ?", timeframe.Day(start), timeframe.Day(end)).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching daily records for %s: %w", slug, err)
	}

	return records, nil
}

// SaveDailyRecords inserts records, replacing the counters of any row that already
// exists for the same page and day.
func (s *Store) SaveDailyRecords(ctx context.Context, records []DailyRecord) error {
	if len(records) == 0 {
		return nil
	}

	for i := range records {
		records[i].Date = timeframe.Day(records[i].Date)
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"views", "unique_visitors", "form_submissions", "cta_clicks",
			"desktop_views", "mobile_views", "tablet_views",
			"desktop_conversions", "mobile_conversions", "tablet_conversions",
			"top_referrers", "top_utm_sources", "avg_time_on_page", "bounce_rate",
			"updated_at",
		}),
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("error saving daily records: %w", err)
	}

	return nil
}

// LastUpdated returns the newest UpdatedAt among records, or nil for none.
func LastUpdated(records []DailyRecord) *time.Time {
	var latest *time.Time
	for i := range records {
		t := records[i].UpdatedAt
		if latest == nil || t.After(*latest) {
			latest = &t
		}
	}
	return latest
}
