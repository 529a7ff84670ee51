package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pagepulse/internal/analytics"
)

// Metrics holds all Prometheus metrics for the reporting engine.
type Metrics struct {
	registry *prometheus.Registry

	// Request metrics
	Reports *prometheus.CounterVec
	Exports *prometheus.CounterVec

	// Row store metrics
	FetchLatency *prometheus.HistogramVec
	FetchErrors  prometheus.Counter
	FetchedRows  prometheus.Histogram
}

// NewMetrics creates the metrics on their own registry so that several instances can
// coexist, as they do in tests.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Reports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_total",
				Help:      "Total number of analytics reports served",
			},
			[]string{"span", "status"},
		),
		Exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Total number of CSV exports served",
			},
			[]string{"span", "status"},
		),
		FetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "record_fetch_duration_seconds",
				Help:      "Time spent loading daily records",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		FetchErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "record_fetch_errors_total",
				Help:      "Total number of failed daily record fetches",
			},
		),
		FetchedRows: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "record_fetch_rows",
				Help:      "Rows returned per daily record fetch",
				Buckets:   []float64{0, 1, 7, 30, 90},
			},
		),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// InstrumentedFetcher records latency, row counts and failures of another fetcher.
type InstrumentedFetcher struct {
	next    analytics.RecordFetcher
	metrics *Metrics
}

// InstrumentFetcher wraps next so every fetch is observed by m.
func InstrumentFetcher(next analytics.RecordFetcher, m *Metrics) *InstrumentedFetcher {
	return &InstrumentedFetcher{next: next, metrics: m}
}

func (f *InstrumentedFetcher) FetchDailyRecords(ctx context.Context, slug string, start, end time.Time) ([]analytics.DailyRecord, error) {
	began := time.Now()
	records, err := f.next.FetchDailyRecords(ctx, slug, start, end)

	status := "ok"
	if err != nil {
		status = "error"
		f.metrics.FetchErrors.Inc()
	} else {
		f.metrics.FetchedRows.Observe(float64(len(records)))
	}
	f.metrics.FetchLatency.WithLabelValues(status).Observe(time.Since(began).Seconds())

	return records, err
}
