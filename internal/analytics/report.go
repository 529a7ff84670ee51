package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pagepulse/internal/pkg/async"
	"pagepulse/internal/timeframe"
)

// Report is everything the analytics dashboard shows for one page and span.
type Report struct {
	Slug            string                 `json:"slug"`
	Span            int                    `json:"span"`
	CurrentPeriod   timeframe.PeriodWindow `json:"current_period"`
	PreviousPeriod  timeframe.PeriodWindow `json:"previous_period"`
	CurrentTotals   TotalsSnapshot         `json:"current_totals"`
	PreviousTotals  TotalsSnapshot         `json:"previous_totals"`
	Deltas          ComparisonMetrics      `json:"deltas"`
	TopReferrers    []SourceBreakdownEntry `json:"top_referrers"`
	TopUTMSources   []SourceBreakdownEntry `json:"top_utm_sources"`
	DeviceBreakdown DeviceBreakdown        `json:"device_breakdown"`
	Funnel          []FunnelStage          `json:"funnel"`
	DailySeries     []DailyRecord          `json:"daily_series"`
	LastUpdated     *time.Time             `json:"last_updated"`
	// HasData is false when the current period has no rows yet, which the
	// dashboard shows as an empty state rather than an error.
	HasData bool `json:"has_data"`
}

// BuildReport aggregates already-fetched rows. current must be sorted by date.
func BuildReport(slug string, periods timeframe.Periods, current, previous []DailyRecord) (*Report, error) {
	totals := CalculateTotals(current)
	previousTotals := CalculateTotals(previous)

	referrers, err := TopSources(current, DimensionReferrers, totals.Views, totals.ConversionRate)
	if err != nil {
		return nil, err
	}
	utmSources, err := TopSources(current, DimensionUTMSources, totals.Views, totals.ConversionRate)
	if err != nil {
		return nil, err
	}

	if current == nil {
		current = []DailyRecord{}
	}

	return &Report{
		Slug:            slug,
		Span:            periods.Span,
		CurrentPeriod:   periods.Current,
		PreviousPeriod:  periods.Previous,
		CurrentTotals:   totals,
		PreviousTotals:  previousTotals,
		Deltas:          CalculateComparison(totals, previousTotals),
		TopReferrers:    referrers,
		TopUTMSources:   utmSources,
		DeviceBreakdown: CalculateDeviceBreakdown(current),
		Funnel:          CalculateFunnel(totals),
		DailySeries:     current,
		LastUpdated:     LastUpdated(current),
		HasData:         len(current) > 0,
	}, nil
}

// ReportService fetches rows for a page and turns them into reports and exports.
type ReportService struct {
	fetcher      RecordFetcher
	resolver     *timeframe.Resolver
	pool         *async.Pool
	logger       *slog.Logger
	fetchTimeout time.Duration
}

type ReportServiceParams struct {
	Fetcher  RecordFetcher
	Resolver *timeframe.Resolver
	Logger   *slog.Logger
	// FetchTimeout bounds both period fetches together. Zero means no bound beyond
	// the caller's context.
	FetchTimeout time.Duration
}

func NewReportService(params ReportServiceParams) *ReportService {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolver := params.Resolver
	if resolver == nil {
		resolver = timeframe.NewResolver(timeframe.ResolverParams{})
	}
	return &ReportService{
		fetcher:      params.Fetcher,
		resolver:     resolver,
		pool:         async.NewPool(2),
		logger:       logger,
		fetchTimeout: params.FetchTimeout,
	}
}

// Resolve maps a requested span onto report periods.
func (s *ReportService) Resolve(rawSpan string) (timeframe.Periods, error) {
	return s.resolver.ResolveRaw(rawSpan)
}

// GetReport resolves span and builds the page's report.
func (s *ReportService) GetReport(ctx context.Context, slug string, span int) (*Report, error) {
	periods, err := s.resolver.Resolve(span)
	if err != nil {
		return nil, err
	}
	return s.GetReportForPeriods(ctx, slug, periods)
}

// GetReportForPeriods fetches both periods concurrently and aggregates them. A fetch
// failure is returned as an error, never as an empty report.
func (s *ReportService) GetReportForPeriods(ctx context.Context, slug string, periods timeframe.Periods) (*Report, error) {
	ctx, cancel := s.withFetchTimeout(ctx)
	defer cancel()

	tasks := []async.Task{
		{
			Name: "current",
			Execute: func(ctx context.Context) (interface{}, error) {
				return s.fetcher.FetchDailyRecords(ctx, slug, periods.Current.Start, periods.Current.End)
			},
		},
		{
			Name: "previous",
			Execute: func(ctx context.Context) (interface{}, error) {
				return s.fetcher.FetchDailyRecords(ctx, slug, periods.Previous.Start, periods.Previous.End)
			},
		},
	}

	results := s.pool.Execute(ctx, tasks)

	for _, name := range []string{"current", "previous"} {
		if err := results[name].Err; err != nil {
			s.logger.Error("Failed to fetch daily records",
				slog.String("slug", slug),
				slog.String("period", name),
				slog.Any("error", err))
			return nil, fmt.Errorf("fetching %s period for %s: %w", name, slug, err)
		}
	}

	current, _ := results["current"].Data.([]DailyRecord)
	previous, _ := results["previous"].Data.([]DailyRecord)

	s.logger.Debug("Building analytics report",
		slog.String("slug", slug),
		slog.Int("span", periods.Span),
		slog.Int("currentRows", len(current)),
		slog.Int("previousRows", len(previous)))

	return BuildReport(slug, periods, current, previous)
}

// ExportCSV renders the current period of span as CSV.
func (s *ReportService) ExportCSV(ctx context.Context, slug string, span int) ([]byte, error) {
	periods, err := s.resolver.Resolve(span)
	if err != nil {
		return nil, err
	}
	return s.ExportCSVForPeriods(ctx, slug, periods)
}

// ExportCSVForPeriods renders the current period's rows as CSV.
func (s *ReportService) ExportCSVForPeriods(ctx context.Context, slug string, periods timeframe.Periods) ([]byte, error) {
	ctx, cancel := s.withFetchTimeout(ctx)
	defer cancel()

	records, err := s.fetcher.FetchDailyRecords(ctx, slug, periods.Current.Start, periods.Current.End)
	if err != nil {
		s.logger.Error("Failed to fetch daily records for export",
			slog.String("slug", slug),
			slog.Any("error", err))
		return nil, fmt.Errorf("fetching export rows for %s: %w", slug, err)
	}

	return ExportCSV(records)
}

func (s *ReportService) withFetchTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.fetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.fetchTimeout)
}
