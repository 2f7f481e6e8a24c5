package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// HeaderCorrelationID carries the id that ties an error response to its log entry.
const HeaderCorrelationID = "X-Correlation-ID"

// SecurityConfig holds CORS settings.
type SecurityConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// DefaultSecurityConfig allows every origin, matching a device-facing API
// with no authentication.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		AllowedOrigins: []string{"*"},
	}
}

// NewCORS creates CORS middleware from config.
func NewCORS(config SecurityConfig) echo.MiddlewareFunc {
	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			"X-Requested-With",
		},
		ExposeHeaders:    []string{HeaderCorrelationID},
		AllowCredentials: config.AllowCredentials,
	})
}

// NewBodyLimit limits request bodies, e.g. "10M".
func NewBodyLimit(limit string) echo.MiddlewareFunc {
	return middleware.BodyLimit(limit)
}

// NewRateLimiter limits each client IP to perSecond requests with the given
// burst. Rejected requests get 429 with a JSON error body.
func NewRateLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Unable to identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
		},
	})
}
