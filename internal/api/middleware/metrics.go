package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartfarm/smartfarm-go/internal/observability/metrics"
)

// unmatchedRoute labels requests that did not match any route, keeping
// label cardinality bounded.
const unmatchedRoute = "unmatched"

// NewMetrics records request count, latency and response size per route
// template. A nil m returns a pass-through middleware.
func NewMetrics(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if m == nil {
			return next
		}
		return func(c echo.Context) error {
			start := time.Now()
			m.RequestStarted()

			if err := next(c); err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" || path == "/*" {
				path = unmatchedRoute
			}

			res := c.Response()
			m.RecordHTTPRequest(c.Request().Method, path, res.Status, time.Since(start).Seconds(), res.Size)
			return nil
		}
	}
}
