package httpserver

import (
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
)

type Deps struct {
	CartHandler *CartHTTP
	Auth        *middleware.Authenticator
}

func Register(e *echo.Echo, d *Deps) {
	cart := e.Group("/cart")
	cart.Use(d.Auth.OptionalAuth)

	cart.GET("", d.CartHandler.GetCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PUT("/items/:type/:id", d.CartHandler.UpdateItem)
	cart.DELETE("/items/:type/:id", d.CartHandler.RemoveItem)

	e.POST("/cart/merge", d.CartHandler.Merge, d.Auth.RequireAuth)
}
