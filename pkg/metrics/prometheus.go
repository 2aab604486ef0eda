// Package metrics provides Prometheus metrics for the ecoscore build pipeline.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for a build process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Build outcome
	buildsTotal    *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	lastBuildUnix  prometheus.Gauge
	productsScored prometheus.Gauge

	// Data quality
	validationFailures *prometheus.CounterVec
	sourceRows         *prometheus.GaugeVec
	coercedValues      *prometheus.GaugeVec
	unmatchedRows      *prometheus.GaugeVec

	// Scoring
	scoreDistribution prometheus.Histogram
	gradeRecords      *prometheus.GaugeVec
	bounds            *prometheus.GaugeVec

	// Preview server
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ecoscore",
		subsystem:        "build",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.buildsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of build runs by outcome",
	}, []string{"outcome"})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_duration_seconds",
		Help:      "Duration of each pipeline stage in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"stage"})

	m.lastBuildUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful build",
	})

	m.productsScored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "products_scored",
		Help:      "Number of products scored by the last build",
	})

	m.validationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Validation failures by error kind and table",
	}, []string{"kind", "table"})

	m.sourceRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_rows",
		Help:      "Rows read from each source table",
	}, []string{"table"})

	m.coercedValues = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "coerced_values",
		Help:      "Metric values replaced by the configured default in the last build",
	}, []string{"metric"})

	m.unmatchedRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unmatched_rows",
		Help:      "Metric rows whose identifier matched no product in the last build",
	}, []string{"table"})

	m.scoreDistribution = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score",
		Help:      "Distribution of composite scores (0-100)",
		Buckets:   prometheus.LinearBuckets(10, 10, 10),
	})

	m.gradeRecords = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "grade_records",
		Help:      "Products per grade in the last build",
	}, []string{"grade"})

	m.bounds = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "normalization_bound",
		Help:      "Resolved normalization bound per metric",
	}, []string{"metric", "edge", "origin"})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of preview-server requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "request_duration_milliseconds",
			Help:      "Preview-server request duration in milliseconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordBuild increments the build counter for outcome ("success" or an error kind).
func RecordBuild(outcome string) {
	globalManager.buildsTotal.WithLabelValues(outcome).Inc()
}

// RecordStageDuration records how long a pipeline stage took.
func RecordStageDuration(stage string, seconds float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// MarkBuildSuccess sets the last-success timestamp and product count.
func MarkBuildSuccess(unix int64, products int) {
	globalManager.lastBuildUnix.Set(float64(unix))
	globalManager.productsScored.Set(float64(products))
}

// RecordValidationFailure counts a fatal validation error.
func RecordValidationFailure(kind, table string) {
	globalManager.validationFailures.WithLabelValues(kind, table).Inc()
}

// UpdateSourceRows sets the row count of a source table.
func UpdateSourceRows(table string, rows int) {
	globalManager.sourceRows.WithLabelValues(table).Set(float64(rows))
}

// UpdateCoercedValues sets the number of defaulted values for a metric.
func UpdateCoercedValues(metric string, count int) {
	globalManager.coercedValues.WithLabelValues(metric).Set(float64(count))
}

// UpdateUnmatchedRows sets the number of unmatched rows for a metric table.
func UpdateUnmatchedRows(table string, count int) {
	globalManager.unmatchedRows.WithLabelValues(table).Set(float64(count))
}

// ObserveScore adds a composite score to the distribution.
func ObserveScore(score float64) {
	globalManager.scoreDistribution.Observe(score)
}

// UpdateGradeRecords sets the number of products that received grade.
func UpdateGradeRecords(grade string, count int) {
	globalManager.gradeRecords.WithLabelValues(grade).Set(float64(count))
}

// UpdateBounds publishes the resolved bounds of a metric.
func UpdateBounds(metric, origin string, lo, hi float64) {
	globalManager.bounds.WithLabelValues(metric, "min", origin).Set(lo)
	globalManager.bounds.WithLabelValues(metric, "max", origin).Set(hi)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the current metrics in the text exposition format, for
// node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %v", ErrObserveFailed, err)
	}
	return nil
}
