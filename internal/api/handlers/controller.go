// Package handlers implements the SmartFarm HTTP endpoints on top of the
// in-memory stores.
package handlers

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	mw "github.com/smartfarm/smartfarm-go/internal/api/middleware"
	"github.com/smartfarm/smartfarm-go/internal/errors"
	"github.com/smartfarm/smartfarm-go/internal/idgen"
	"github.com/smartfarm/smartfarm-go/internal/logger"
	"github.com/smartfarm/smartfarm-go/internal/observability/metrics"
	"github.com/smartfarm/smartfarm-go/internal/securefs"
	"github.com/smartfarm/smartfarm-go/internal/store"
)

// RootMessage is the plain-text body of GET /.
const RootMessage = "Smart Farm Cloud API is running"

// Error messages returned to clients.
const (
	MsgNoFileUploaded = "No file uploaded"
	MsgSoundNotFound  = "Sound not found"
	MsgUploadFailed   = "Failed to store uploaded file"
)

// GetLogger returns the handlers module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("api").Module("handlers")
}

// Controller wires the HTTP endpoints to the stores.
type Controller struct {
	Sounds   *store.SoundCatalog
	Settings *store.SettingsStore
	Alerts   *store.AlertLog
	Blobs    *securefs.SecureFS

	ids       idgen.Generator
	now       func() time.Time
	recorder  metrics.Recorder
	farm      *metrics.FarmMetrics
	version   string
	buildDate string
	startTime time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithIDGenerator sets the generator for uploaded sound ids.
func WithIDGenerator(g idgen.Generator) Option {
	return func(c *Controller) { c.ids = g }
}

// WithClock overrides the wall clock used for upload file names.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithMetrics attaches farm metrics for operation counters and upload sizes.
func WithMetrics(m *metrics.FarmMetrics) Option {
	return func(c *Controller) {
		if m != nil {
			c.farm = m
			c.recorder = m
		}
	}
}

// WithVersion sets the build information reported by /health.
func WithVersion(version, buildDate string) Option {
	return func(c *Controller) {
		c.version = version
		c.buildDate = buildDate
	}
}

// New creates a controller. All stores and the blob directory are required.
func New(sounds *store.SoundCatalog, settings *store.SettingsStore, alerts *store.AlertLog,
	blobs *securefs.SecureFS, opts ...Option) (*Controller, error) {
	if sounds == nil || settings == nil || alerts == nil || blobs == nil {
		return nil, errors.Newf("handlers: stores and blob directory are required").
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}

	c := &Controller{
		Sounds:    sounds,
		Settings:  settings,
		Alerts:    alerts,
		Blobs:     blobs,
		ids:       idgen.NewUUID(),
		now:       time.Now,
		recorder:  metrics.NoopRecorder{},
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RegisterRoutes adds every endpoint to e.
func (c *Controller) RegisterRoutes(e *echo.Echo) {
	e.GET("/", c.Root)
	e.GET("/health", c.HealthCheck)

	e.GET("/alerts", c.ListAlerts)
	e.POST("/device/detection", c.RecordDetection)
	e.POST("/device/command", c.DeviceCommand)

	e.GET("/sounds", c.ListSounds)
	e.POST("/sounds/upload", c.UploadSound)
	e.POST("/sounds/select", c.SelectSound)
	e.GET("/uploads/:filename", c.ServeUpload)

	e.GET("/settings", c.GetSettings)
	e.PUT("/settings", c.UpdateSettings)
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// generateCorrelationID creates a short random id for tying a response to its log entry.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// StatusForError maps an error category to an HTTP status code.
func StatusForError(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsMissingInput(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleError logs err and writes {"error": message} with code.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	correlationID := generateCorrelationID()
	ctx.Response().Header().Set(mw.HeaderCorrelationID, correlationID)

	fields := []logger.Field{
		logger.String("correlation_id", correlationID),
		logger.String("message", message),
		logger.Int("code", code),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("method", ctx.Request().Method),
		logger.String("ip", ctx.RealIP()),
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}

	if code >= http.StatusInternalServerError {
		GetLogger().Error("API error", fields...)
	} else {
		GetLogger().Warn("API error", fields...)
	}

	return ctx.JSON(code, ErrorResponse{Error: message})
}

// Root handles GET /.
func (c *Controller) Root(ctx echo.Context) error {
	return ctx.String(http.StatusOK, RootMessage)
}

// HealthCheck handles GET /health.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	uptime := time.Since(c.startTime)

	return ctx.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        c.version,
		"build_date":     c.buildDate,
		"uptime":         uptime.String(),
		"uptime_seconds": uptime.Seconds(),
		"timestamp":      time.Now().Format(time.RFC3339),
		"sounds":         c.Sounds.Len(),
		"alerts":         c.Alerts.Len(),
	})
}

// observe records the outcome and duration of an operation.
func (c *Controller) observe(operation, status string, start time.Time) {
	c.recorder.RecordOperation(operation, status)
	c.recorder.RecordDuration(operation, time.Since(start).Seconds())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...(%d bytes)", s[:n], len(s))
}
