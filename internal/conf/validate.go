// conf/validate.go

package conf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/gommon/bytes"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateUploadSettings(&settings.Uploads); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateDeviceSettings(&settings.Device); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}

	return nil
}

// validateWebServerSettings validates the web server settings
func validateWebServerSettings(settings *WebServerSettings) error {
	if err := validatePort(settings.Port); err != nil {
		return fmt.Errorf("webserver.port: %w", err)
	}

	if settings.BodyLimit != "" {
		if _, err := bytes.Parse(settings.BodyLimit); err != nil {
			return fmt.Errorf("webserver.bodylimit: invalid size '%s'", settings.BodyLimit)
		}
	}

	if settings.RateLimit < 0 {
		return fmt.Errorf("webserver.ratelimit must not be negative")
	}

	if settings.RateLimit > 0 && settings.RateBurst < 1 {
		return fmt.Errorf("webserver.rateburst must be at least 1 when rate limiting is enabled")
	}

	if settings.ShutdownTimeout < 0 {
		return fmt.Errorf("webserver.shutdowntimeout must not be negative")
	}

	return nil
}

// validateUploadSettings validates the upload settings
func validateUploadSettings(settings *UploadSettings) error {
	if strings.TrimSpace(settings.Path) == "" {
		return fmt.Errorf("uploads.path must not be empty")
	}
	return nil
}

// validateDeviceSettings validates the initial device settings
func validateDeviceSettings(settings *DeviceSettings) error {
	if settings.ConfidenceThreshold < 0 || settings.ConfidenceThreshold > 1 {
		return fmt.Errorf("device.confidencethreshold must be between 0 and 1, got %g", settings.ConfidenceThreshold)
	}
	if settings.Volume < 0 || settings.Volume > 100 {
		return fmt.Errorf("device.volume must be between 0 and 100, got %d", settings.Volume)
	}
	if settings.DefaultConfidence < 0 || settings.DefaultConfidence > 1 {
		return fmt.Errorf("device.defaultconfidence must be between 0 and 1, got %g", settings.DefaultConfidence)
	}
	return nil
}

// validatePort checks a TCP port string
func validatePort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port '%s': must be a number", value)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
