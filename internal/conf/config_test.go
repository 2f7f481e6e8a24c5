package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolate points the working directory and HOME at empty temp dirs and
// resets viper so each test loads from a clean slate.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	for _, b := range getEnvBindings() {
		t.Setenv(b.EnvVar, "")
		require.NoError(t, os.Unsetenv(b.EnvVar))
	}
	viper.Reset()
	t.Cleanup(viper.Reset)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, settings.WebServer.Port)
	assert.Equal(t, DefaultUploadsPath, settings.Uploads.Path)
	assert.Equal(t, 10*time.Second, settings.WebServer.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, settings.WebServer.AllowedOrigins)
	assert.InDelta(t, 0.5, settings.Device.ConfidenceThreshold, 1e-9)
	assert.True(t, settings.Device.AutoSound)
	assert.True(t, settings.Device.PushAlerts)
	assert.Equal(t, 70, settings.Device.Volume)
	assert.InDelta(t, 0.8, settings.Device.DefaultConfidence, 1e-9)
	assert.Equal(t, "info", settings.Logging.DefaultLevel)
	require.NotNil(t, settings.Logging.Console)
	assert.True(t, settings.Logging.Console.Enabled)
	assert.Same(t, settings, GetSettings())
}

func TestLoadPortFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "8080")
	t.Setenv("SMARTFARM_UPLOADS_PATH", "/tmp/farm-sounds")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", settings.WebServer.Port)
	assert.Equal(t, "/tmp/farm-sounds", settings.Uploads.Path)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 1)
	assert.Contains(t, ve.Errors[0], "webserver.port")
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := isolate(t)

	config := []byte("webserver:\n  port: \"6000\"\ndevice:\n  volume: 40\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), config, 0o600))

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "6000", settings.WebServer.Port)
	assert.Equal(t, 40, settings.Device.Volume)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFile),
		[]byte("PORT=7000\nSMARTFARM_UPLOADS_PATH=dotenv-uploads\n"), 0o600))
	t.Setenv("SMARTFARM_UPLOADS_PATH", "env-uploads")
	t.Cleanup(func() { _ = os.Unsetenv("PORT") })

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", settings.WebServer.Port)
	assert.Equal(t, "env-uploads", settings.Uploads.Path)
}

func TestValidateSettingsCollectsErrors(t *testing.T) {
	t.Parallel()

	s := &Settings{}
	s.WebServer.Port = "70000"
	s.WebServer.BodyLimit = "lots"
	s.Device.Volume = 101
	s.Device.ConfidenceThreshold = 0.5

	err := ValidateSettings(s)
	require.Error(t, err)
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)
}

func TestSaveYAMLConfig(t *testing.T) {
	t.Parallel()

	s := &Settings{Version: "1.2.3"}
	s.WebServer.Port = "5000"
	s.Uploads.Path = "uploads"
	s.Device.Volume = 70

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveYAMLConfig(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "1.2.3")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	webserver, ok := decoded["webserver"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "5000", webserver["port"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestEnvValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fn      func(string) error
		value   string
		wantErr bool
	}{
		{"valid port", validateEnvPort, "5000", false},
		{"port zero", validateEnvPort, "0", true},
		{"bool", validateEnvBool, "true", false},
		{"bad bool", validateEnvBool, "yes please", true},
		{"log level", validateEnvLogLevel, "DEBUG", false},
		{"bad level", validateEnvLogLevel, "loud", true},
		{"blank path", validateEnvPath, "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.fn(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
