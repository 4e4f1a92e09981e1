package httpserver

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vente_shop/pkg/authclient"
	"github.com/Skotchmaster/vente_shop/pkg/logging"
	mw "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/vente_shop/pkg/validate"
	"github.com/Skotchmaster/vente_shop/services/auth/internal/service"
	"github.com/Skotchmaster/vente_shop/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc           *service.AuthService
	InternalToken string
}

// httpError maps service errors onto status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return err
	}

	user, err := h.Svc.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		l.Warn("register_error", "error", err)
		return httpError(err)
	}

	l.Info("register_successful", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.NewUserResponse(user))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(mw.CreateCookie(mw.AccessCookie, res.AccessToken, "/", res.AccessExp))
	c.SetCookie(mw.CreateCookie(mw.RefreshCookie, res.RefreshToken, "/", res.RefreshExp))
	l.Info("login_successful", "user_id", res.User.ID)

	user := transport.NewUserResponse(res.User)
	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    res.ExpiresIn,
		User:         &user,
	})
}

// refreshToken reads the token from the body first and the cookie second.
func refreshToken(c echo.Context) string {
	var req transport.RefreshRequest
	if err := c.Bind(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if ck, err := c.Cookie(mw.RefreshCookie); err == nil {
		return ck.Value
	}
	return ""
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	token := refreshToken(c)
	if token == "" {
		l.Warn("refresh_error", "status", 400, "reason", "no refresh token")
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token is required")
	}

	access, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		l.Warn("refresh_error", "error", err)
		return httpError(err)
	}

	c.SetCookie(mw.CreateCookie(mw.AccessCookie, access.Token, "/", access.ExpiresAt))
	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken: access.Token,
		TokenType:   "Bearer",
		ExpiresIn:   access.ExpiresIn,
	})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if token := refreshToken(c); token != "" {
		if err := h.Svc.LogOut(ctx, token); err != nil {
			l.Error("logout_failed", "status", 500, "reason", "cannot revoke refreshToken", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
		}
	}

	c.SetCookie(mw.DeleteCookie(mw.RefreshCookie, "/"))
	c.SetCookie(mw.DeleteCookie(mw.AccessCookie, "/"))

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.Svc.Me(ctx, mw.BearerToken(c.Request()))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(user))
}

func (h *AuthHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_update_profile")

	userID, ok := mw.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}

	var req transport.ProfileRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.Svc.UpdateProfile(ctx, userID, service.ProfileUpdate{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		l.Warn("update_profile_error", "user_id", userID, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(user))
}

func (h *AuthHTTP) PasswordReset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_password_reset")

	var req transport.PasswordResetRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.Svc.RequestPasswordReset(ctx, req.Email); err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			l.Error("password_reset_error", "status", 500, "error", err)
			return httpError(err)
		}
		l.Info("password_reset_unknown_email")
	}
	// Same answer for known and unknown addresses.
	return c.JSON(http.StatusAccepted, echo.Map{"message": "if the address is registered, a reset link was sent"})
}

func (h *AuthHTTP) PasswordResetConfirm(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_password_reset_confirm")

	var req transport.PasswordResetConfirm
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.Svc.ConfirmPasswordReset(ctx, req.Token, req.Password, req.PasswordConfirm); err != nil {
		l.Warn("password_reset_confirm_error", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// InternalUser serves other services. Callers must present the shared internal token.
func (h *AuthHTTP) InternalUser(c echo.Context) error {
	ctx := c.Request().Context()

	given := c.Request().Header.Get(authclient.HeaderInternalToken)
	if h.InternalToken == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.InternalToken)) != 1 {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	user, err := h.Svc.GetUser(ctx, uint(id))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.InternalUser{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
}
