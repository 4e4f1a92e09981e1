package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
)

// Common adds the edge-only middleware; recover, request id, request logging,
// metrics and the body limit come from server.NewEcho.
func Common(rps, burst int) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Secure(),
		RateLimit(rps, burst),
	}
}

// RateLimit throttles per client IP. Health and metrics probes are never limited.
func RateLimit(rps, burst int) echo.MiddlewareFunc {
	store := ecM.NewRateLimiterMemoryStoreWithConfig(ecM.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return ecM.RateLimiterWithConfig(ecM.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/metrics" || p == "/health/live" || p == "/health/ready"
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "cannot identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logging.FromContext(c.Request().Context()).Warn("rate_limited", "client", identifier)
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		},
	})
}
