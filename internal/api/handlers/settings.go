package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartfarm/smartfarm-go/internal/observability/metrics"
	"github.com/smartfarm/smartfarm-go/internal/store"
)

// GetSettings handles GET /settings.
func (c *Controller) GetSettings(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"settings": c.Settings.Get(),
	})
}

// UpdateSettings handles PUT /settings with a partial settings object.
func (c *Controller) UpdateSettings(ctx echo.Context) error {
	start := time.Now()
	updated := c.Settings.Update(store.ParsePatch(readBody(ctx)))
	c.observe(metrics.OpSettingsUpdate, metrics.StatusSuccess, start)

	return ctx.JSON(http.StatusOK, map[string]any{
		"status":   "updated",
		"settings": updated,
	})
}
