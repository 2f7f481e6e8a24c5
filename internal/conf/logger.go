// Package conf provides configuration management for SmartFarm.
package conf

import "github.com/smartfarm/smartfarm-go/internal/logger"

// GetLogger returns the config package logger scoped to the config module.
// The logger is fetched from the global logger each time so it follows the
// centralized logger installed at startup.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}
