// Package metrics provides custom Prometheus metrics for the SmartFarm service.
package metrics

// Recorder defines a minimal interface for recording metrics.
// Components depend on it rather than on concrete metric implementations.
type Recorder interface {
	// RecordOperation records an operation with its status.
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type.
	RecordError(operation, errorType string)
}

// NoopRecorder discards everything. Used when telemetry is disabled.
type NoopRecorder struct{}

func (NoopRecorder) RecordOperation(string, string) {}
func (NoopRecorder) RecordDuration(string, float64) {}
func (NoopRecorder) RecordError(string, string)     {}
