package seeder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"pagepulse/internal/analytics"
	"pagepulse/internal/pages"
	"pagepulse/internal/pkg/referrers"
	"pagepulse/internal/timeframe"
)

// Fixture is the YAML layout accepted by LoadFixture.
//
//	pages:
//	  - slug: launch
//	    title: Launch page
//	    records:
//	      - date: 2024-07-14
//	        views: 120
//	        form_submissions: 6
//	        referrers: {"https://www.google.com/search": 80}
//	        utm_sources: {newsletter: 20}
type Fixture struct {
	Pages []FixturePage `yaml:"pages"`
}

type FixturePage struct {
	Slug    string          `yaml:"slug"`
	Title   string          `yaml:"title"`
	Records []FixtureRecord `yaml:"records"`
}

type FixtureRecord struct {
	Date               string           `yaml:"date"`
	Views              int64            `yaml:"views"`
	UniqueVisitors     int64            `yaml:"unique_visitors"`
	FormSubmissions    int64            `yaml:"form_submissions"`
	CTAClicks          int64            `yaml:"cta_clicks"`
	DesktopViews       int64            `yaml:"desktop_views"`
	MobileViews        int64            `yaml:"mobile_views"`
	TabletViews        int64            `yaml:"tablet_views"`
	DesktopConversions int64            `yaml:"desktop_conversions"`
	MobileConversions  int64            `yaml:"mobile_conversions"`
	TabletConversions  int64            `yaml:"tablet_conversions"`
	Referrers          map[string]int64 `yaml:"referrers"`
	UTMSources         map[string]int64 `yaml:"utm_sources"`
	AvgTimeOnPage      *float64         `yaml:"avg_time_on_page"`
	BounceRate         *float64         `yaml:"bounce_rate"`
}

// Seeder writes pages and their daily records, either from a fixture file or
// generated demo traffic.
type Seeder struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{DB: db, Logger: logger}
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()
	return ParseFixture(f)
}

// ParseFixture decodes a fixture, rejecting unknown keys so typos surface.
func ParseFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fixture Fixture
	if err := dec.Decode(&fixture); err != nil {
		if err == io.EOF {
			return &fixture, nil
		}
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &fixture, nil
}

// Apply creates the fixture's pages and upserts their records. Referrer keys
// are normalized to bare hosts, so URLs and hostnames can be mixed.
func (s *Seeder) Apply(ctx context.Context, fixture *Fixture) error {
	start := time.Now()
	store := analytics.NewStore(s.DB)

	for _, fp := range fixture.Pages {
		page, err := pages.FindOrCreatePage(s.DB, fp.Slug, fp.Title)
		if err != nil {
			return err
		}

		records := make([]analytics.DailyRecord, 0, len(fp.Records))
		for _, fr := range fp.Records {
			record, err := fr.toRecord(page.Slug)
			if err != nil {
				return fmt.Errorf("page %s: %w", page.Slug, err)
			}
			records = append(records, record)
		}

		if err := store.SaveDailyRecords(ctx, records); err != nil {
			return fmt.Errorf("page %s: %w", page.Slug, err)
		}

		s.Logger.Info("Seeded page from fixture",
			slog.String("slug", page.Slug),
			slog.Int("records", len(records)))
	}

	s.Logger.Info("Fixture seeding completed", slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (fr FixtureRecord) toRecord(slug string) (analytics.DailyRecord, error) {
	date, err := time.Parse(timeframe.DateLayout, fr.Date)
	if err != nil {
		return analytics.DailyRecord{}, fmt.Errorf("invalid record date %q: %w", fr.Date, err)
	}

	refs := analytics.SourceCounts{}
	for raw, views := range fr.Referrers {
		refs[referrers.NormalizeHost(raw)] += views
	}
	utm := analytics.SourceCounts{}
	for source, views := range fr.UTMSources {
		utm[source] += views
	}

	return analytics.DailyRecord{
		Slug:               slug,
		Date:               date,
		Views:              fr.Views,
		UniqueVisitors:     fr.UniqueVisitors,
		FormSubmissions:    fr.FormSubmissions,
		CTAClicks:          fr.CTAClicks,
		DesktopViews:       fr.DesktopViews,
		MobileViews:        fr.MobileViews,
		TabletViews:        fr.TabletViews,
		DesktopConversions: fr.DesktopConversions,
		MobileConversions:  fr.MobileConversions,
		TabletConversions:  fr.TabletConversions,
		TopReferrers:       refs,
		TopUTMSources:      utm,
		AvgTimeOnPage:      fr.AvgTimeOnPage,
		BounceRate:         fr.BounceRate,
	}, nil
}

// SeedDemo generates days of plausible traffic for slug ending at today. About
// one day in ten is skipped so reports see sparse rows.
func (s *Seeder) SeedDemo(ctx context.Context, slug string, days int, today time.Time) error {
	if days <= 0 {
		return fmt.Errorf("days must be positive, got %d", days)
	}

	page, err := pages.FindOrCreatePage(s.DB, slug, "Demo page")
	if err != nil {
		return err
	}

	today = timeframe.Day(today)
	records := make([]analytics.DailyRecord, 0, days)
	for i := days - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if rand.Intn(10) == 0 {
			continue
		}
		records = append(records, demoRecord(page.Slug, today.AddDate(0, 0, -i)))
	}

	if err := analytics.NewStore(s.DB).SaveDailyRecords(ctx, records); err != nil {
		return err
	}

	s.Logger.Info("Generated demo traffic",
		slog.String("slug", page.Slug),
		slog.Int("days", days),
		slog.Int("records", len(records)))
	return nil
}

func demoRecord(slug string, date time.Time) analytics.DailyRecord {
	views := int64(rand.Intn(400) + 20)

	// Device split roughly 55/35/5, with a few views left unattributed.
	desktop := views * int64(50+rand.Intn(8)) / 100
	mobile := views * int64(30+rand.Intn(8)) / 100
	tablet := views * int64(rand.Intn(6)) / 100

	submissions := views * int64(rand.Intn(8)+1) / 100
	desktopConv := submissions * 6 / 10
	mobileConv := submissions - desktopConv

	refs := analytics.SourceCounts{}
	remaining := views
	for _, raw := range demoReferrers() {
		if remaining == 0 {
			break
		}
		n := int64(rand.Intn(int(remaining) + 1))
		refs[referrers.NormalizeHost(raw)] += n
		remaining -= n
	}

	utm := analytics.SourceCounts{}
	for _, source := range []string{"newsletter", "twitter", "linkedin", "google"} {
		if rand.Intn(3) == 0 {
			utm[source] = int64(rand.Intn(int(views/4) + 1))
		}
	}

	avgTime := float64(rand.Intn(150) + 15)
	bounce := float64(rand.Intn(50) + 25)

	return analytics.DailyRecord{
		Slug:               slug,
		Date:               date,
		Views:              views,
		UniqueVisitors:     views * int64(70+rand.Intn(25)) / 100,
		FormSubmissions:    submissions,
		CTAClicks:          submissions + views*int64(rand.Intn(15))/100,
		DesktopViews:       desktop,
		MobileViews:        mobile,
		TabletViews:        tablet,
		DesktopConversions: desktopConv,
		MobileConversions:  mobileConv,
		TopReferrers:       refs,
		TopUTMSources:      utm,
		AvgTimeOnPage:      &avgTime,
		BounceRate:         &bounce,
	}
}

// demoReferrers returns a list of common referrer URLs
func demoReferrers() []string {
	return []string{
		"https://www.google.com/search",
		"https://twitter.com",
		"https://news.ycombinator.com/item",
		"https://www.linkedin.com/feed",
		"https://www.producthunt.com/posts",
		"",
	}
}
