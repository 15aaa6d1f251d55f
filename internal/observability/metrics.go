// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	TradeRowsRead    prometheus.Counter
	TradeRowsSkipped prometheus.Counter
	DonationRowsRead prometheus.Counter
	DonationRowsKept prometheus.Counter
	IngestionErrors  *prometheus.CounterVec

	// Aggregation metrics
	OddsPointsComputed   prometheus.Counter
	PeriodPointsComputed *prometheus.CounterVec
	AlignedRowsComputed  *prometheus.CounterVec
	SegmentSourceUsed    *prometheus.CounterVec

	// Pipeline metrics
	SlugRunsTotal *prometheus.CounterVec
	SlugDuration  *prometheus.HistogramVec

	// API client metrics
	APICallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "election_market_lab"
	}

	return &Metrics{
		// Ingestion metrics
		TradeRowsRead: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "trade_rows_read_total",
			Help:      "Total number of trade CSV rows parsed",
		}),
		TradeRowsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "trade_rows_skipped_total",
			Help:      "Total number of malformed trade rows skipped",
		}),
		DonationRowsRead: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "donation_rows_read_total",
			Help:      "Total number of donation CSV rows scanned",
		}),
		DonationRowsKept: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "donation_rows_kept_total",
			Help:      "Total number of donation rows kept after filtering",
		}),
		IngestionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by file type",
		}, []string{"file_type"}),

		// Aggregation metrics
		OddsPointsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "odds_points_computed_total",
			Help:      "Total number of odds series points computed",
		}),
		PeriodPointsComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "period_points_computed_total",
			Help:      "Total number of donation period points computed by granularity",
		}, []string{"granularity", "variant"}),
		AlignedRowsComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "aligned_rows_computed_total",
			Help:      "Total number of aligned summary rows computed by granularity",
		}, []string{"granularity"}),
		SegmentSourceUsed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "segment_source_used_total",
			Help:      "How trader segments were resolved (volume table or derived)",
		}, []string{"source"}),

		// Pipeline metrics
		SlugRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "slug_runs_total",
			Help:      "Total number of per-slug pipeline runs by status",
		}, []string{"status"}),
		SlugDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "slug_duration_seconds",
			Help:      "Per-slug pipeline execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"slug"}),

		// API client metrics
		APICallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "polymarket",
			Name:      "api_call_latency_seconds",
			Help:      "Polymarket API call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTradeRows records parsed and skipped trade row counts.
func RecordTradeRows(read, skipped int) {
	DefaultMetrics.TradeRowsRead.Add(float64(read))
	DefaultMetrics.TradeRowsSkipped.Add(float64(skipped))
}

// RecordDonationRows records scanned and kept donation row counts.
func RecordDonationRows(scanned, kept int) {
	DefaultMetrics.DonationRowsRead.Add(float64(scanned))
	DefaultMetrics.DonationRowsKept.Add(float64(kept))
}

// RecordIngestionError records an ingestion failure for one file type.
func RecordIngestionError(fileType string) {
	DefaultMetrics.IngestionErrors.WithLabelValues(fileType).Inc()
}

// RecordOddsPoints records computed odds series points.
func RecordOddsPoints(n int) {
	DefaultMetrics.OddsPointsComputed.Add(float64(n))
}

// RecordPeriodPoints records computed donation period points.
func RecordPeriodPoints(granularity, variant string, n int) {
	DefaultMetrics.PeriodPointsComputed.WithLabelValues(granularity, variant).Add(float64(n))
}

// RecordAlignedRows records computed aligned summary rows.
func RecordAlignedRows(granularity string, n int) {
	DefaultMetrics.AlignedRowsComputed.WithLabelValues(granularity).Add(float64(n))
}

// RecordSegmentSource records which segment resolution path was taken.
func RecordSegmentSource(source string) {
	DefaultMetrics.SegmentSourceUsed.WithLabelValues(source).Inc()
}

// RecordSlugRun records a per-slug pipeline run.
func RecordSlugRun(slug, status string, durationSeconds float64) {
	DefaultMetrics.SlugRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.SlugDuration.WithLabelValues(slug).Observe(durationSeconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
