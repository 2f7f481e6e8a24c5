// Package metrics provides farm domain metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FarmMetrics contains Prometheus metrics for the alert log, sound catalog
// and settings store.
type FarmMetrics struct {
	registry *prometheus.Registry

	operationsTotal     *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	operationErrors     *prometheus.CounterVec
	detectionConfidence prometheus.Histogram
	defaultedFields     *prometheus.CounterVec
	alertLogSize        prometheus.Gauge
	catalogSize         prometheus.Gauge
	uploadBytes         prometheus.Histogram
	settingsFields      *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewFarmMetrics creates and registers new farm metrics
func NewFarmMetrics(registry *prometheus.Registry) (*FarmMetrics, error) {
	m := &FarmMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *FarmMetrics) initMetrics() {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartfarm_operations_total",
			Help: "Total number of farm operations",
		},
		[]string{"operation", "status"}, // operation: detection, upload, select, settings_update, command
	)

	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smartfarm_operation_duration_seconds",
			Help:    "Time taken for farm operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
		},
		[]string{"operation"},
	)

	m.operationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartfarm_operation_errors_total",
			Help: "Total number of farm operation errors",
		},
		[]string{"operation", "error_type"},
	)

	m.detectionConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "smartfarm_detection_confidence",
			Help:    "Confidence of recorded detections",
			Buckets: ConfidenceBuckets,
		},
	)

	m.defaultedFields = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartfarm_detection_defaulted_fields_total",
			Help: "Detections where the server substituted a default value",
		},
		[]string{"field"}, // field: confidence, time
	)

	m.alertLogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartfarm_alert_log_size",
			Help: "Number of alerts held in memory",
		},
	)

	m.catalogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartfarm_sound_catalog_size",
			Help: "Number of sounds in the catalog",
		},
	)

	m.uploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "smartfarm_upload_size_bytes",
			Help:    "Size of uploaded sound files",
			Buckets: prometheus.ExponentialBuckets(BucketStart1KB, BucketFactor4, BucketCount8),
		},
	)

	m.settingsFields = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartfarm_settings_fields_total",
			Help: "Settings fields applied or ignored by partial updates",
		},
		[]string{"field", "result"}, // result: applied, ignored
	)

	m.collectors = []prometheus.Collector{
		m.operationsTotal,
		m.operationDuration,
		m.operationErrors,
		m.detectionConfidence,
		m.defaultedFields,
		m.alertLogSize,
		m.catalogSize,
		m.uploadBytes,
		m.settingsFields,
	}
}

// Describe implements the Collector interface
func (m *FarmMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *FarmMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordOperation implements Recorder
func (m *FarmMetrics) RecordOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder
func (m *FarmMetrics) RecordDuration(operation string, seconds float64) {
	m.operationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder
func (m *FarmMetrics) RecordError(operation, errorType string) {
	m.operationErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordDetection records a stored detection, its confidence, and which
// fields were filled in by the server.
func (m *FarmMetrics) RecordDetection(confidence float64, defaultedConfidence, defaultedTime bool) {
	m.detectionConfidence.Observe(confidence)
	if defaultedConfidence {
		m.defaultedFields.WithLabelValues("confidence").Inc()
	}
	if defaultedTime {
		m.defaultedFields.WithLabelValues("time").Inc()
	}
}

// SetAlertLogSize updates the alert log size gauge
func (m *FarmMetrics) SetAlertLogSize(size int) {
	m.alertLogSize.Set(float64(size))
}

// SetCatalogSize updates the sound catalog size gauge
func (m *FarmMetrics) SetCatalogSize(size int) {
	m.catalogSize.Set(float64(size))
}

// RecordUploadSize records the byte size of a stored upload
func (m *FarmMetrics) RecordUploadSize(size int64) {
	m.uploadBytes.Observe(float64(size))
}

// RecordSettingsField records whether a partial update applied a field
func (m *FarmMetrics) RecordSettingsField(field string, applied bool) {
	result := "ignored"
	if applied {
		result = "applied"
	}
	m.settingsFields.WithLabelValues(field, result).Inc()
}
