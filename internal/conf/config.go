// config.go: settings struct and functions to load, dump and save the configuration.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/smartfarm/smartfarm-go/internal/errors"
	"github.com/smartfarm/smartfarm-go/internal/logger"
)

// WebServerSettings contains settings for the HTTP listener.
type WebServerSettings struct {
	Port            string        `yaml:"port"`            // port to listen on, PORT env overrides
	BodyLimit       string        `yaml:"bodylimit"`       // maximum request body size, e.g. "10M"
	AllowedOrigins  []string      `yaml:"allowedorigins"`  // CORS allowed origins
	ShutdownTimeout time.Duration `yaml:"shutdowntimeout"` // graceful shutdown budget
	RateLimit       float64       `yaml:"ratelimit"`       // requests per second per client IP, 0 disables
	RateBurst       int           `yaml:"rateburst"`       // burst allowance for the rate limiter
	Debug           bool          `yaml:"debug"`           // verbose request logging
}

// UploadSettings contains settings for uploaded deterrent sounds.
type UploadSettings struct {
	Path string `yaml:"path"` // blob directory for uploaded sounds, created at startup
}

// TelemetrySettings controls the Prometheus metrics endpoint.
type TelemetrySettings struct {
	Enabled bool `yaml:"enabled"` // expose GET /metrics
}

// DeviceSettings holds the initial device configuration applied at startup.
type DeviceSettings struct {
	ConfidenceThreshold float64 `yaml:"confidencethreshold"` // initial detection sensitivity, 0..1
	AutoSound           bool    `yaml:"autosound"`           // play the selected sound on detection
	PushAlerts          bool    `yaml:"pushalerts"`          // notify the app on detection
	Volume              int     `yaml:"volume"`              // initial playback volume, 0..100
	DefaultConfidence   float64 `yaml:"defaultconfidence"`   // confidence used when a detection omits it
}

// Settings contains all configuration options for the application.
type Settings struct {
	Debug     bool   `yaml:"debug"`
	Version   string `yaml:"-"` // runtime value
	BuildDate string `yaml:"-"` // runtime value

	Main struct {
		Name string `yaml:"name"` // instance name shown in startup logs
	} `yaml:"main"`

	WebServer WebServerSettings    `yaml:"webserver"`
	Uploads   UploadSettings       `yaml:"uploads"`
	Telemetry TelemetrySettings    `yaml:"telemetry"`
	Device    DeviceSettings       `yaml:"device"`
	Logging   logger.LoggingConfig `yaml:"logging"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file, .env file and environment variables
// into a validated Settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Context("operation", "unmarshal").
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets defaults, environment bindings and reads the optional config file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return err
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	// .env values only fill variables the environment has not set
	if err := loadDotEnv(DotEnvFile); err != nil {
		GetLogger().Warn("Ignoring unreadable .env file", logger.Error(err))
	}

	if err := configureEnvironmentVariables(); err != nil {
		GetLogger().Warn("Environment variable issues", logger.Error(err))
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			GetLogger().Debug("No config file found, using defaults and environment")
			return nil
		}
		return errors.New(err).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Context("operation", "read-config").
			Build()
	}

	GetLogger().Info("Loaded config file", logger.String("path", viper.ConfigFileUsed()))
	return nil
}

// GetSettings returns the most recently loaded settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Dump renders the settings as YAML.
func Dump(settings *Settings) ([]byte, error) {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return data, nil
}

// SaveYAMLConfig writes the settings to configPath. The write goes through a
// temporary file in the same directory followed by a rename.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := Dump(settings)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return errors.FileError(fmt.Errorf("error replacing config file: %w", err), filepath.Base(configPath), int64(len(yamlData)))
	}

	return nil
}
