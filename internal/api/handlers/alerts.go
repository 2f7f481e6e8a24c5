package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartfarm/smartfarm-go/internal/logger"
	"github.com/smartfarm/smartfarm-go/internal/observability/metrics"
	"github.com/smartfarm/smartfarm-go/internal/store"
)

// maxLoggedBody caps how much of a raw request body is copied into logs.
const maxLoggedBody = 512

// ListAlerts handles GET /alerts.
func (c *Controller) ListAlerts(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"alerts": c.Alerts.List(),
	})
}

// RecordDetection handles POST /device/detection. Malformed bodies are
// treated as empty, so a detection is always recorded.
func (c *Controller) RecordDetection(ctx echo.Context) error {
	start := time.Now()
	body := readBody(ctx)

	GetLogger().Debug("Detection event", logger.String("body", truncate(string(body), maxLoggedBody)))

	c.Alerts.RecordDetection(store.ParsePatch(body))
	c.observe(metrics.OpDetection, metrics.StatusSuccess, start)

	return ctx.JSON(http.StatusOK, map[string]string{"status": "received"})
}

// DeviceCommand handles POST /device/command. The command is logged and
// acknowledged; nothing is forwarded to the device.
func (c *Controller) DeviceCommand(ctx echo.Context) error {
	start := time.Now()
	body := readBody(ctx)

	GetLogger().Info("Command from app",
		logger.String("body", truncate(string(body), maxLoggedBody)),
		logger.String("ip", ctx.RealIP()))
	c.observe(metrics.OpCommand, metrics.StatusSuccess, start)

	return ctx.JSON(http.StatusOK, map[string]string{"status": "command sent"})
}

// readBody returns the request body, or nil when it cannot be read.
func readBody(ctx echo.Context) []byte {
	req := ctx.Request()
	if req.Body == nil {
		return nil
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		GetLogger().Warn("Failed to read request body",
			logger.String("path", req.URL.Path),
			logger.Error(err))
		return nil
	}
	return body
}
