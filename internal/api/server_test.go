package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/smartfarm/smartfarm-go/internal/conf"
	"github.com/smartfarm/smartfarm-go/internal/idgen"
	"github.com/smartfarm/smartfarm-go/internal/store"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()

	settings := &conf.Settings{Version: "test", BuildDate: "today"}
	settings.WebServer.Port = "0"
	settings.WebServer.BodyLimit = "1M"
	settings.WebServer.ShutdownTimeout = 5 * time.Second
	settings.Uploads.Path = filepath.Join(t.TempDir(), "uploads")
	settings.Telemetry.Enabled = true
	settings.Device = conf.DeviceSettings{
		ConfidenceThreshold: 0.5,
		AutoSound:           true,
		PushAlerts:          true,
		Volume:              70,
		DefaultConfidence:   0.8,
	}
	return settings
}

func newTestServer(t *testing.T, settings *conf.Settings) *Server {
	t.Helper()

	s, err := New(settings,
		WithIDGenerator(idgen.NewSequence("id")),
		WithClock(func() time.Time { return time.Date(2026, 5, 1, 15, 4, 5, 0, time.UTC) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.blobs.Close() })
	return s
}

func serve(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServerRoutes(t *testing.T) {
	s := newTestServer(t, testSettings(t))

	rec := serve(s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Smart Farm Cloud API is running", rec.Body.String())

	rec = serve(s, http.MethodGet, "/sounds", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sounds struct {
		Sounds          []store.Sound `json:"sounds"`
		SelectedSoundID string        `json:"selectedSoundId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sounds))
	require.Len(t, sounds.Sounds, 1)
	assert.Equal(t, store.DefaultSoundID, sounds.SelectedSoundID)

	rec = serve(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec = serve(s, http.MethodPost, "/sounds/select", `{"soundId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Sound not found"}`, rec.Body.String())
}

func TestServerAppliesDeviceSettings(t *testing.T) {
	settings := testSettings(t)
	settings.Device.ConfidenceThreshold = 0.3
	settings.Device.Volume = 40
	settings.Device.AutoSound = false
	settings.Device.DefaultConfidence = 0.6
	s := newTestServer(t, settings)

	rec := serve(s, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Settings store.Settings `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.InDelta(t, 0.3, got.Settings.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 40, got.Settings.Volume)
	assert.False(t, got.Settings.AutoSound)
	assert.True(t, got.Settings.PushAlerts)
	assert.Equal(t, store.DefaultSoundID, got.Settings.SelectedSoundID)

	rec = serve(s, http.MethodPost, "/device/detection", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	alerts := s.alerts.List()
	require.Len(t, alerts, 1)
	assert.InDelta(t, 0.6, alerts[0].Confidence, 1e-9)
	assert.Equal(t, "3:04:05 PM", alerts[0].Time)
	assert.Equal(t, "id-1", alerts[0].ID)
}

func TestServerMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, testSettings(t))

	serve(s, http.MethodPost, "/device/detection", `{"confidence":0.9}`)
	serve(s, http.MethodGet, "/alerts", "")

	rec := serve(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, "smartfarm_alert_log_size 1")
	assert.Contains(t, body, `path="/alerts"`)
}

func TestServerMetricsDisabled(t *testing.T) {
	settings := testSettings(t)
	settings.Telemetry.Enabled = false
	s := newTestServer(t, settings)

	assert.Nil(t, s.metrics)
	rec := serve(s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerRateLimit(t *testing.T) {
	settings := testSettings(t)
	settings.WebServer.RateLimit = 1
	settings.WebServer.RateBurst = 1
	s := newTestServer(t, settings)

	first := serve(s, http.MethodGet, "/alerts", "")
	second := serve(s, http.MethodGet, "/alerts", "")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, second.Body.String())
}

func TestServerBodyLimit(t *testing.T) {
	settings := testSettings(t)
	settings.WebServer.BodyLimit = "1K"
	s := newTestServer(t, settings)

	rec := serve(s, http.MethodPut, "/settings", `{"volume":`+strings.Repeat(" ", 2048)+`10}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	settings := testSettings(t)
	settings.Uploads.Path = ""

	_, err := New(settings)
	require.Error(t, err)
}

func TestServerStartShutdownNoLeaks(t *testing.T) {
	defer goleak.VerifyNone(t)

	settings := testSettings(t)
	settings.Telemetry.Enabled = false

	s, err := New(settings)
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool {
		return s.ListenerAddr() != nil
	}, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + s.ListenerAddr().String() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	http.DefaultClient.CloseIdleConnections()

	require.NoError(t, s.Shutdown())
}

func TestConfigFromSettings(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.WebServer.Port = "8080"
	settings.Uploads.Path = "blobs"
	settings.Telemetry.Enabled = false
	settings.WebServer.AllowedOrigins = []string{"https://farm.example"}

	cfg := ConfigFromSettings(settings)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, "blobs", cfg.UploadsPath)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"https://farm.example"}, cfg.AllowedOrigins)
	assert.Equal(t, conf.DefaultBodyLimit, cfg.BodyLimit)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
	require.NoError(t, cfg.Validate())

	cfg.Host = "127.0.0.1"
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())

	cfg.Port = ""
	require.Error(t, cfg.Validate())
}
