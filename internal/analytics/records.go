package analytics

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SourceCounts maps a traffic source (referrer host or UTM source) to its view count.
// Keys carry no ordering; only ranked breakdown output is ordered.
type SourceCounts map[string]int64

// Value stores the map as a JSON object.
func (s SourceCounts) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]int64(s))
	if err != nil {
		return nil, fmt.Errorf("encoding source counts: %w", err)
	}
	return string(b), nil
}

// Scan reads a JSON object written by Value. NULL and empty values scan to an empty map.
func (s *SourceCounts) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = SourceCounts{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported type for source counts: %T", value)
	}

	if len(raw) == 0 {
		*s = SourceCounts{}
		return nil
	}

	m := map[string]int64{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("decoding source counts: %w", err)
	}
	*s = m
	return nil
}

// DailyRecord holds one page's traffic for one calendar day.
// Rows are written by the collection pipeline and are read-only here.
type DailyRecord struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	Slug string    `gorm:"uniqueIndex:idx_daily_record_unique;not null" json:"slug"`
	Date time.Time `gorm:"uniqueIndex:idx_daily_record_unique;type:datetime;not null" json:"date"`

	Views           int64 `gorm:"not null;default:0" json:"views"`
	UniqueVisitors  int64 `gorm:"not null;default:0" json:"unique_visitors"`
	FormSubmissions int64 `gorm:"not null;default:0" json:"form_submissions"`
	CTAClicks       int64 `gorm:"column:cta_clicks;not null;default:0" json:"cta_clicks"`

	// Device counts may add up to less than Views when the device is unknown.
	DesktopViews       int64 `gorm:"not null;default:0" json:"desktop_views"`
	MobileViews        int64 `gorm:"not null;default:0" json:"mobile_views"`
	TabletViews        int64 `gorm:"not null;default:0" json:"tablet_views"`
	DesktopConversions int64 `gorm:"not null;default:0" json:"desktop_conversions"`
	MobileConversions  int64 `gorm:"not null;default:0" json:"mobile_conversions"`
	TabletConversions  int64 `gorm:"not null;default:0" json:"tablet_conversions"`

	TopReferrers  SourceCounts `gorm:"type:text" json:"top_referrers"`
	TopUTMSources SourceCounts `gorm:"column:top_utm_sources;type:text" json:"top_utm_sources"`

	AvgTimeOnPage *float64 `json:"avg_time_on_page,omitempty"` // seconds
	BounceRate    *float64 `json:"bounce_rate,omitempty"`      // percent

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversionRate returns the day's submissions per hundred views, or 0 without views.
func (r DailyRecord) ConversionRate() float64 {
	return rate(r.FormSubmissions, r.Views)
}

// rate returns part/whole*100, or 0 when whole is not positive.
func rate(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
