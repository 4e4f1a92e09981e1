package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/tokens"
)

const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"

	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// UserResolver confirms that the subject of a valid token still exists.
type UserResolver interface {
	UserExists(ctx context.Context, id uint) (bool, error)
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

type Authenticator struct {
	JWTSecret []byte
	Users     UserResolver
}

func NewAuthenticator(secret []byte, users UserResolver) *Authenticator {
	return &Authenticator{JWTSecret: secret, Users: users}
}

func (m *Authenticator) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, nil)
}

func (m *Authenticator) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, func(claims *tokens.AccessClaims) error {
		if !claims.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

// OptionalAuth lets anonymous callers through, but a presented token must be valid.
func (m *Authenticator) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if BearerToken(c.Request()) == "" {
			return next(c)
		}
		return m.require(next, nil)(c)
	}
}

func (m *Authenticator) require(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth")

		raw := BearerToken(c.Request())
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		claims, err := m.Authenticate(ctx, raw)
		if err != nil {
			if errors.Is(err, errResolverUnavailable) {
				l.Error("auth_error", "status", 503, "reason", "user lookup failed")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "authentication unavailable")
			}
			l.Warn("auth_error", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		if validator != nil {
			if verr := validator(claims); verr != nil {
				return verr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

type resolverError string

func (e resolverError) Error() string { return string(e) }

const errResolverUnavailable = resolverError("user resolver unavailable")

// Authenticate verifies a raw access token and resolves its subject.
func (m *Authenticator) Authenticate(ctx context.Context, raw string) (*tokens.AccessClaims, error) {
	claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
	if err != nil {
		return nil, err
	}
	if m.Users != nil {
		ok, err := m.Users.UserExists(ctx, claims.UserID)
		if err != nil {
			logging.FromContext(ctx).Error("user_lookup_failed", "user_id", claims.UserID, "error", err)
			return nil, errResolverUnavailable
		}
		if !ok {
			return nil, tokens.ErrInvalidToken
		}
	}
	return claims, nil
}

func BearerToken(r *http.Request) string {
	if h := r.Header.Get(echo.HeaderAuthorization); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if ck, err := r.Cookie(AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxUsername, claims.Username)
	c.Set(CtxRole, claims.Role)
}

func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(CtxUserID).(uint)
	return id, ok && id != 0
}

func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(CtxRole).(string)
	return role == tokens.RoleAdmin
}
