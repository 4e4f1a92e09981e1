package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/validate"
	"github.com/Skotchmaster/vente_shop/services/order/internal/payment"
	"github.com/Skotchmaster/vente_shop/services/order/internal/service"
	"github.com/Skotchmaster/vente_shop/services/order/internal/transport"
)

const maxWebhookBody = 256 << 10

func (h *OrderHTTP) CreatePaymentSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.create_session")

	var req transport.PaymentSessionRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	sess, err := h.Svc.CreatePaymentSession(ctx, req.OrderID, caller(c))
	if err != nil {
		l.Warn("create_session_error", "order_id", req.OrderID, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

// PaymentWebhook answers {"status":"success"} for everything except a payload
// that fails verification.
func (h *OrderHTTP) PaymentWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.webhook")

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		l.Warn("webhook_read_error", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read body")
	}

	if err := h.Svc.HandlePaymentWebhook(ctx, body, c.Request().Header.Get(payment.SignatureHeader)); err != nil {
		if errors.Is(err, service.ErrInvalidWebhook) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload or signature")
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}
