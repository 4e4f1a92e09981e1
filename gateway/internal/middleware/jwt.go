package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	authmw "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/vente_shop/pkg/tokens"
)

// RequireRole checks the access token at the edge. The upstream service
// authenticates the request again with its own user lookup.
func RequireRole(secret []byte, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := authmw.BearerToken(c.Request())
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			claims, err := tokens.AccessClaimsFromToken(raw, secret)
			if err != nil {
				logging.FromContext(c.Request().Context()).Warn("gateway_auth_error", "status", 401, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			if !slices.Contains(roles, claims.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			return next(c)
		}
	}
}
