// Package metrics provides constants used across metric definitions.
package metrics

// Operation label values for farm metrics.
const (
	// OpDetection is a detection event reported by a device.
	OpDetection = "detection"
	// OpUpload is a deterrent sound upload.
	OpUpload = "upload"
	// OpSelect is an explicit sound selection.
	OpSelect = "select"
	// OpSettingsUpdate is a partial settings update.
	OpSettingsUpdate = "settings_update"
	// OpCommand is a device command acknowledgment.
	OpCommand = "command"
)

// Status label values.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not_found"
	StatusRejected = "rejected"
)

// Histogram bucket constants.
const (
	// BucketStart1ms is the first latency bucket in seconds.
	BucketStart1ms = 0.001
	// BucketFactor2 doubles each latency bucket.
	BucketFactor2 = 2
	// BucketCount12 covers 1ms to ~2s.
	BucketCount12 = 12
	// BucketStart1KB is the first size bucket in bytes.
	BucketStart1KB = 1024
	// BucketFactor4 quadruples each size bucket.
	BucketFactor4 = 4
	// BucketCount8 covers 1KB to ~16MB.
	BucketCount8 = 8
)

// ConfidenceBuckets partitions detection confidence in [0,1].
var ConfidenceBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
