package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	middleware "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/vente_shop/pkg/pagination"
	"github.com/Skotchmaster/vente_shop/pkg/validate"
	"github.com/Skotchmaster/vente_shop/services/order/internal/service"
	"github.com/Skotchmaster/vente_shop/services/order/internal/transport"
)

// SessionCookie is shared with the cart service so anonymous checkouts stay tied to the visitor.
const SessionCookie = "cart_session"

type OrderHTTP struct {
	Svc *service.OrderService
}

func caller(c echo.Context) service.Caller {
	cl := service.Caller{Admin: middleware.IsAdmin(c)}
	if id, ok := middleware.UserID(c); ok {
		cl.UserID = id
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		cl.SessionKey = ck.Value
	}
	return cl
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not a positive integer")
	}
	return uint(id), nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidWebhook),
		errors.Is(err, service.ErrPayment):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrIllegalTransition),
		errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	cl := caller(c)
	if cl.UserID == 0 && cl.SessionKey == "" {
		cl.SessionKey = uuid.NewString()
		c.SetCookie(middleware.CreateCookie(SessionCookie, cl.SessionKey, "/", time.Now().Add(30*24*time.Hour)))
	}

	order, err := h.Svc.CreateOrder(ctx, cl, req)
	if err != nil {
		l.Warn("create_order_error", "error", err)
		return httpError(err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, transport.CreateOrderResponse{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		Order:       order,
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.GetOrder(ctx, id, caller(c))
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			l.Error("get_order_error", "status", 500, "error", err)
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_my_orders")

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}

	page := pagination.FromQuery(c)
	total, orders, err := h.Svc.ListMyOrders(ctx, userID, page.Offset, page.Size)
	if err != nil {
		l.Error("list_orders_error", "status", 500, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": pagination.Meta(page, total),
	})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	page := pagination.FromQuery(c)
	total, orders, err := h.Svc.ListOrders(ctx, c.QueryParam("status"), page.Offset, page.Size)
	if err != nil {
		if !errors.Is(err, service.ErrValidation) {
			l.Error("list_orders_error", "status", 500, "error", err)
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": pagination.Meta(page, total),
	})
}

// Transition serves POST /admin/orders/:id/:action.
func (h *OrderHTTP) Transition(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.transition")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.Transition(ctx, id, c.Param("action"))
	if err != nil {
		l.Warn("transition_error", "order_id", id, "action", c.Param("action"), "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "order " + string(order.Status),
		"order":   order,
	})
}
