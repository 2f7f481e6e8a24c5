package configcmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/smartfarm/smartfarm-go/internal/conf"
)

func testSettings() *conf.Settings {
	settings := &conf.Settings{}
	settings.WebServer.Port = "5000"
	settings.Uploads.Path = "uploads"
	settings.Device.Volume = 70
	return settings
}

func TestConfigCommandPrintsYAML(t *testing.T) {
	t.Parallel()

	cmd := Command(testSettings())
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	var printed conf.Settings
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, "5000", printed.WebServer.Port)
	assert.Equal(t, "uploads", printed.Uploads.Path)
	assert.Equal(t, 70, printed.Device.Volume)
}

func TestConfigCommandSave(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cmd := Command(testSettings())
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--save", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Configuration saved to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "port: \"5000\"")
}
