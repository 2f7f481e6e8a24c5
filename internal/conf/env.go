// env.go - Environment variable configuration and validation for SmartFarm
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"webserver.port", "PORT", validateEnvPort},
		{"uploads.path", "SMARTFARM_UPLOADS_PATH", validateEnvPath},
		{"debug", "SMARTFARM_DEBUG", validateEnvBool},
		{"logging.defaultlevel", "SMARTFARM_LOG_LEVEL", validateEnvLogLevel},
		{"telemetry.enabled", "SMARTFARM_TELEMETRY", validateEnvBool},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return bindEnvVars()
}

// loadDotEnv exports KEY=VALUE pairs from a dotenv file into the process
// environment. Variables already present in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		envVar := strings.ToUpper(key)
		if _, set := os.LookupEnv(envVar); set {
			continue
		}
		if err := os.Setenv(envVar, v.GetString(key)); err != nil {
			return fmt.Errorf("failed to export %s: %w", envVar, err)
		}
	}

	return nil
}

// Environment variable validation functions

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvPort(value string) error {
	return validatePort(value)
}

func validateEnvPath(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("path must not be blank")
	}
	if strings.ContainsRune(value, 0) {
		return fmt.Errorf("path contains a NUL byte")
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(value) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("log level must be one of trace, debug, info, warn, error; got '%s'", value)
	}
}
