// Package observability provides Prometheus metrics functionality for monitoring the SmartFarm service.
package observability

import "github.com/smartfarm/smartfarm-go/internal/logger"

// GetLogger returns the telemetry module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}
