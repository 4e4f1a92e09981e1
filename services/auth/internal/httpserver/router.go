package httpserver

import (
	"github.com/labstack/echo/v4"

	mw "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Auth        *mw.Authenticator
}

func Register(e *echo.Echo, d *Deps) {
	g := e.Group("/auth")
	g.POST("/register", d.AuthHandler.Register)
	g.POST("/login", d.AuthHandler.Login)
	g.POST("/refresh", d.AuthHandler.Refresh)
	g.POST("/logout", d.AuthHandler.LogOut)
	g.POST("/password-reset", d.AuthHandler.PasswordReset)
	g.POST("/password-reset/confirm", d.AuthHandler.PasswordResetConfirm)

	private := g.Group("")
	private.Use(d.Auth.RequireAuth)
	private.GET("/user", d.AuthHandler.Me)
	private.PUT("/user", d.AuthHandler.UpdateProfile)

	e.GET("/internal/users/:id", d.AuthHandler.InternalUser)
}
