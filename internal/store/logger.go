package store

import "github.com/smartfarm/smartfarm-go/internal/logger"

// GetLogger returns the store module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("store")
}
