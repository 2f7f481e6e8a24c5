// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Default values shared with other packages.
const (
	DefaultPort              = "5000"
	DefaultUploadsPath       = "uploads"
	DefaultConfidence        = 0.8
	DefaultBodyLimit         = "10M"
	DefaultShutdownTimeout   = "10s"
	DefaultInstanceName      = "Smart Farm Cloud API"
	DefaultDeviceVolume      = 70
	DefaultDeviceSensitivity = 0.5
)

// setDefaultConfig sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", DefaultInstanceName)

	viper.SetDefault("webserver.port", DefaultPort)
	viper.SetDefault("webserver.bodylimit", DefaultBodyLimit)
	viper.SetDefault("webserver.allowedorigins", []string{"*"})
	viper.SetDefault("webserver.shutdowntimeout", DefaultShutdownTimeout)
	viper.SetDefault("webserver.ratelimit", 0)
	viper.SetDefault("webserver.rateburst", 20)
	viper.SetDefault("webserver.debug", false)

	viper.SetDefault("uploads.path", DefaultUploadsPath)

	viper.SetDefault("telemetry.enabled", true)

	viper.SetDefault("device.confidencethreshold", DefaultDeviceSensitivity)
	viper.SetDefault("device.autosound", true)
	viper.SetDefault("device.pushalerts", true)
	viper.SetDefault("device.volume", DefaultDeviceVolume)
	viper.SetDefault("device.defaultconfidence", DefaultConfidence)

	viper.SetDefault("logging.defaultlevel", "info")
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", "info")
	viper.SetDefault("logging.fileoutput.enabled", false)
	viper.SetDefault("logging.fileoutput.path", "logs/smartfarm.log")
	viper.SetDefault("logging.fileoutput.level", "info")
}
