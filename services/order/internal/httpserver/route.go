package httpserver

import (
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
)

type Deps struct {
	OrderHandler *OrderHTTP
	Auth         *middleware.Authenticator
}

func Register(e *echo.Echo, d *Deps) {
	orders := e.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder, d.Auth.OptionalAuth)
	orders.GET("", d.OrderHandler.ListMyOrders, d.Auth.RequireAuth)
	orders.GET("/:id", d.OrderHandler.GetOrder, d.Auth.OptionalAuth)

	payments := e.Group("/payments")
	payments.POST("/session", d.OrderHandler.CreatePaymentSession, d.Auth.OptionalAuth)
	payments.POST("/webhook", d.OrderHandler.PaymentWebhook)

	admin := e.Group("/admin/orders", d.Auth.RequireAdmin)
	admin.GET("", d.OrderHandler.ListOrders)
	admin.POST("/:id/:action", d.OrderHandler.Transition)
}
