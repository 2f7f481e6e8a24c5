// Package observability provides metrics and monitoring capabilities for the SmartFarm service.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartfarm/smartfarm-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	HTTP     *metrics.HTTPMetrics
	Farm     *metrics.FarmMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
// Each call uses its own registry so instances never collide.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register Go collector: %w", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("failed to register process collector: %w", err)
	}

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	farmMetrics, err := metrics.NewFarmMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create farm metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		HTTP:     httpMetrics,
		Farm:     farmMetrics,
	}, nil
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      promErrorLog{},
		ErrorHandling: promhttp.HTTPErrorOnError,
		Registry:      m.registry,
	})
}

// promErrorLog routes promhttp errors to the telemetry logger.
type promErrorLog struct{}

func (promErrorLog) Println(v ...any) {
	GetLogger().Error("metrics handler: " + fmt.Sprint(v...))
}
