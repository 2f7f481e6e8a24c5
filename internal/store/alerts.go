package store

import (
	"slices"
	"sync"
	"time"

	"github.com/smartfarm/smartfarm-go/internal/idgen"
	"github.com/smartfarm/smartfarm-go/internal/logger"
	"github.com/smartfarm/smartfarm-go/internal/observability/metrics"
)

// DefaultConfidence is stored when a detection carries no usable confidence.
const DefaultConfidence = 0.8

// AlertTimeLayout renders the server clock when a detection has no time.
const AlertTimeLayout = "3:04:05 PM"

// Alert is a recorded detection event. Time is whatever the device sent and
// is never parsed or used for ordering.
type Alert struct {
	ID         string  `json:"id"`
	Time       string  `json:"time"`
	Confidence float64 `json:"confidence"`
}

// AlertLog keeps alerts newest first. Growth is unbounded.
type AlertLog struct {
	mu                sync.RWMutex
	alerts            []Alert
	ids               idgen.Generator
	now               func() time.Time
	defaultConfidence float64
	metrics           *metrics.FarmMetrics
}

// AlertLogOption configures an AlertLog.
type AlertLogOption func(*AlertLog)

// WithClock overrides the wall clock used for default alert times.
func WithClock(now func() time.Time) AlertLogOption {
	return func(l *AlertLog) { l.now = now }
}

// WithDefaultConfidence overrides the confidence stored for detections
// without one.
func WithDefaultConfidence(c float64) AlertLogOption {
	return func(l *AlertLog) { l.defaultConfidence = c }
}

// NewAlertLog returns an empty log that draws ids from ids.
func NewAlertLog(ids idgen.Generator, opts ...AlertLogOption) *AlertLog {
	l := &AlertLog{
		ids:               ids,
		now:               time.Now,
		defaultConfidence: DefaultConfidence,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetMetrics attaches farm metrics. Nil disables recording.
func (l *AlertLog) SetMetrics(m *metrics.FarmMetrics) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.metrics = m
}

// RecordDetection stores a detection built from the raw request fields and
// returns it. A missing or non-numeric confidence becomes the default; a
// missing, empty or non-string time becomes the current server time.
func (l *AlertLog) RecordDetection(patch Patch) Alert {
	confidence, confOK := 0.0, false
	if raw, ok := patch.field("confidence"); ok {
		confidence, confOK = tryNumeric(raw)
	}
	if !confOK {
		confidence = l.defaultConfidence
	}

	at, timeOK := "", false
	if raw, ok := patch.field("time"); ok {
		at, timeOK = tryString(raw)
		timeOK = timeOK && at != ""
	}
	if !timeOK {
		at = l.now().Format(AlertTimeLayout)
	}

	alert := Alert{
		ID:         l.ids.NewID(),
		Time:       at,
		Confidence: confidence,
	}

	l.mu.Lock()
	l.alerts = slices.Insert(l.alerts, 0, alert)
	size := len(l.alerts)
	m := l.metrics
	l.mu.Unlock()

	if m != nil {
		m.RecordDetection(confidence, !confOK, !timeOK)
		m.SetAlertLogSize(size)
	}

	GetLogger().Info("Detection recorded",
		logger.String("alert_id", alert.ID),
		logger.Float64("confidence", alert.Confidence),
		logger.Bool("default_confidence", !confOK),
		logger.Bool("default_time", !timeOK),
		logger.Int("log_size", size))
	return alert
}

// List returns a newest-first copy of the log.
func (l *AlertLog) List() []Alert {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Alert, len(l.alerts))
	copy(out, l.alerts)
	return out
}

// Len returns the number of alerts.
func (l *AlertLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.alerts)
}
