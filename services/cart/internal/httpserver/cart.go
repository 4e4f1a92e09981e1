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
	"github.com/Skotchmaster/vente_shop/pkg/validate"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/models"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/service"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/transport"
)

const SessionCookie = "cart_session"

type CartHTTP struct {
	Svc *service.CartService
}

// owner resolves the cart owner. Anonymous callers get a session cookie on first use.
func (h *CartHTTP) owner(c echo.Context) models.Owner {
	if id, ok := middleware.UserID(c); ok {
		return models.Owner{UserID: id}
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(ck.Value); err == nil {
			return models.Owner{SessionID: ck.Value}
		}
	}
	sid := uuid.NewString()
	c.SetCookie(middleware.CreateCookie(SessionCookie, sid, "/", time.Now().Add(repo.DefaultTTL)))
	return models.Owner{SessionID: sid}
}

func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "renting equipment requires authentication")
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "cart was modified concurrently, retry")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	cart, err := h.Svc.GetCart(ctx, h.owner(c))
	if err != nil {
		l.Error("get_cart_error", "status", 500, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddItemRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return err
	}

	line, err := h.Svc.Add(ctx, h.owner(c), models.Line{
		Type:     req.Type,
		ID:       req.ID,
		Quantity: req.Quantity,
		Days:     req.Days,
	})
	if err != nil {
		l.Warn("add_to_cart_error", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, line)
}

func itemParams(c echo.Context) (string, uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return "", 0, echo.NewHTTPError(http.StatusBadRequest, "id is not a positive integer")
	}
	return c.Param("type"), uint(id), nil
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	itemType, id, err := itemParams(c)
	if err != nil {
		return err
	}

	var req transport.UpdateItemRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	line, err := h.Svc.Update(ctx, h.owner(c), models.Line{
		Type:     itemType,
		ID:       id,
		Quantity: req.Quantity,
		Days:     req.Days,
	})
	if err != nil {
		l.Warn("update_cart_error", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, line)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemType, id, err := itemParams(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Remove(ctx, h.owner(c), itemType, id); err != nil {
		logging.FromContext(ctx).Warn("remove_from_cart_error", "error", err)
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Svc.Clear(ctx, h.owner(c)); err != nil {
		logging.FromContext(ctx).Error("clear_cart_error", "status", 500, "error", err)
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Merge runs after login: the session cart of the cookie joins the user's cart.
func (h *CartHTTP) Merge(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}

	var sid string
	if ck, err := c.Cookie(SessionCookie); err == nil {
		sid = ck.Value
	}

	cart, err := h.Svc.Merge(ctx, userID, sid)
	if err != nil {
		logging.FromContext(ctx).Error("merge_cart_error", "user_id", userID, "error", err)
		return httpError(err)
	}
	if sid != "" {
		c.SetCookie(middleware.DeleteCookie(SessionCookie, "/"))
	}
	return c.JSON(http.StatusOK, cart)
}
