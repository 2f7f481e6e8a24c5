package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/smartfarm/smartfarm-go/internal/api/handlers"
	mw "github.com/smartfarm/smartfarm-go/internal/api/middleware"
	"github.com/smartfarm/smartfarm-go/internal/conf"
	"github.com/smartfarm/smartfarm-go/internal/errors"
	"github.com/smartfarm/smartfarm-go/internal/idgen"
	"github.com/smartfarm/smartfarm-go/internal/logger"
	"github.com/smartfarm/smartfarm-go/internal/observability"
	"github.com/smartfarm/smartfarm-go/internal/securefs"
	"github.com/smartfarm/smartfarm-go/internal/store"
)

// Server is the SmartFarm HTTP server. It owns the echo instance, the
// in-memory stores and the blob directory.
type Server struct {
	echo     *echo.Echo
	config   *Config
	settings *conf.Settings
	metrics  *observability.Metrics

	blobs      *securefs.SecureFS
	sounds     *store.SoundCatalog
	device     *store.SettingsStore
	alerts     *store.AlertLog
	controller *handlers.Controller

	ids idgen.Generator
	now func() time.Time

	wg        sync.WaitGroup
	startTime time.Time
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithMetrics sets the observability metrics for the server.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithIDGenerator sets the id source for alerts and uploaded sounds.
func WithIDGenerator(g idgen.Generator) ServerOption {
	return func(s *Server) {
		s.ids = g
	}
}

// WithClock overrides the wall clock used for alert times and upload names.
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a new HTTP server with the given settings and options.
func New(settings *conf.Settings, opts ...ServerOption) (*Server, error) {
	config := ConfigFromSettings(settings)
	if err := config.Validate(); err != nil {
		return nil, errors.New(fmt.Errorf("invalid server configuration: %w", err)).
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}

	s := &Server{
		config:    config,
		settings:  settings,
		ids:       idgen.NewUUID(),
		now:       time.Now,
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if config.MetricsEnabled && s.metrics == nil {
		m, err := observability.NewMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
		s.metrics = m
	}

	if err := s.initStores(); err != nil {
		return nil, err
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.JSONSerializer = jsonSerializer{}
	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout
	s.echo.Server.IdleTimeout = config.IdleTimeout

	s.setupMiddleware()

	if err := s.setupRoutes(); err != nil {
		_ = s.blobs.Close()
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}

	GetLogger().Info("HTTP server initialized",
		logger.String("address", config.Address()),
		logger.String("uploads", s.blobs.BaseDir()),
		logger.Bool("metrics", s.metrics != nil),
		logger.Bool("debug", config.Debug))

	return s, nil
}

// initStores creates the blob directory and seeds the in-memory stores
// from the device section of the settings.
func (s *Server) initStores() error {
	blobs, err := securefs.New(s.config.UploadsPath)
	if err != nil {
		return fmt.Errorf("failed to open uploads directory: %w", err)
	}
	s.blobs = blobs

	initial := store.DefaultSettings()
	device := s.settings.Device
	initial.ConfidenceThreshold = device.ConfidenceThreshold
	initial.AutoSound = device.AutoSound
	initial.PushAlerts = device.PushAlerts
	initial.Volume = device.Volume

	s.sounds = store.NewSoundCatalog()
	s.device = store.NewSettingsStore(s.sounds, initial)

	alertOpts := []store.AlertLogOption{store.WithClock(s.now)}
	if device.DefaultConfidence > 0 {
		alertOpts = append(alertOpts, store.WithDefaultConfidence(device.DefaultConfidence))
	}
	s.alerts = store.NewAlertLog(s.ids, alertOpts...)

	if s.metrics != nil {
		s.sounds.SetMetrics(s.metrics.Farm)
		s.device.SetMetrics(s.metrics.Farm)
		s.alerts.SetMetrics(s.metrics.Farm)
	}

	return nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	// Recovery middleware - should be first
	s.echo.Use(echomw.Recover())

	s.echo.Use(mw.NewRequestLoggerWithSkipper(GetLogger().Module("http"), func(c echo.Context) bool {
		return c.Path() == "/metrics"
	}))

	if s.metrics != nil {
		s.echo.Use(mw.NewMetrics(s.metrics.HTTP))
	}

	s.echo.Use(mw.NewCORS(mw.SecurityConfig{AllowedOrigins: s.config.AllowedOrigins}))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))

	if s.config.RateLimit > 0 {
		s.echo.Use(mw.NewRateLimiter(s.config.RateLimit, s.config.RateBurst))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	opts := []handlers.Option{
		handlers.WithIDGenerator(s.ids),
		handlers.WithClock(s.now),
		handlers.WithVersion(s.settings.Version, s.settings.BuildDate),
	}
	if s.metrics != nil {
		opts = append(opts, handlers.WithMetrics(s.metrics.Farm))
	}

	controller, err := handlers.New(s.sounds, s.device, s.alerts, s.blobs, opts...)
	if err != nil {
		return err
	}
	s.controller = controller
	s.controller.RegisterRoutes(s.echo)

	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	GetLogger().Debug("Routes initialized", logger.Int("count", len(s.echo.Routes())))
	return nil
}

// Start begins serving HTTP requests in a background goroutine and returns
// immediately. Use Shutdown to stop the server.
func (s *Server) Start() {
	s.wg.Go(func() {
		if err := s.startBlocking(); err != nil {
			GetLogger().Error("Server error", logger.Error(err))
		}
	})
	GetLogger().Info("HTTP server starting", logger.String("address", s.config.Address()))
}

// startBlocking serves HTTP requests until the server is shut down.
func (s *Server) startBlocking() error {
	err := s.echo.Start(s.config.Address())
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartWithGracefulShutdown starts the server and blocks until ctx is done
// or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (s *Server) StartWithGracefulShutdown(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.Start()
	<-ctx.Done()

	GetLogger().Info("Shutdown signal received, initiating graceful shutdown")
	return s.Shutdown()
}

// Shutdown gracefully stops the server and releases the blob directory.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		GetLogger().Error("Error during server shutdown", logger.Error(err))
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.wg.Wait()

	if err := s.blobs.Close(); err != nil {
		GetLogger().Warn("Failed to close uploads directory", logger.Error(err))
	}

	GetLogger().Info("Server shutdown complete",
		logger.Duration("uptime", time.Since(s.startTime)))
	return nil
}

// ListenerAddr returns the bound address once the server is listening, or nil.
func (s *Server) ListenerAddr() net.Addr {
	return s.echo.ListenerAddr()
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Controller returns the endpoint controller.
func (s *Server) Controller() *handlers.Controller {
	return s.controller
}
