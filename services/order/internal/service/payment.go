package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/metrics"
	"github.com/Skotchmaster/vente_shop/services/order/internal/models"
	"github.com/Skotchmaster/vente_shop/services/order/internal/payment"
	"github.com/Skotchmaster/vente_shop/services/order/internal/repo"
)

const defaultCurrency = "eur"

var hundred = decimal.NewFromInt(100)

// toMinorUnits converts an amount to cents, rounding half away from zero.
func toMinorUnits(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// checkoutLines bills rentals as quantity times days units of the daily price.
func checkoutLines(order *models.Order) []payment.CheckoutLine {
	lines := make([]payment.CheckoutLine, 0, len(order.Items))
	for _, it := range order.Items {
		qty := int64(it.Quantity)
		name := it.Name
		if it.ItemType == models.ItemEquipment {
			qty *= int64(it.RentalDays)
			name = fmt.Sprintf("%s (%d days)", it.Name, it.RentalDays)
		}
		lines = append(lines, payment.CheckoutLine{
			Name:       name,
			UnitAmount: toMinorUnits(it.UnitPrice),
			Quantity:   qty,
		})
	}
	return lines
}

// CreatePaymentSession opens a hosted checkout for an unpaid order of the caller.
func (s *OrderService) CreatePaymentSession(ctx context.Context, orderID uint, caller Caller) (*payment.CheckoutSession, error) {
	l := logging.FromContext(ctx).With("svc", "order.payment_session", "order_id", orderID)

	order, err := s.GetOrder(ctx, orderID, caller)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentPaid {
		return nil, fmt.Errorf("%w: order is already paid", ErrConflict)
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order is %s", ErrConflict, order.Status)
	}

	currency := s.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	req := payment.CheckoutRequest{
		OrderID:       order.ID,
		Currency:      currency,
		CustomerEmail: s.recipient(ctx, order),
		Lines:         checkoutLines(order),
		SuccessURL:    fmt.Sprintf("%s/orders?payment_success=true&order_id=%d", s.FrontendURL, order.ID),
		CancelURL:     s.FrontendURL + "/cart",
	}
	if order.UserID != nil {
		req.UserID = *order.UserID
	}

	sess, err := s.Payments.CreateCheckoutSession(ctx, req)
	if err != nil {
		l.Warn("checkout_session_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPayment, err)
	}
	if err := s.Repo.SetPaymentSession(ctx, order.ID, sess.ID); err != nil {
		return nil, err
	}

	l.Info("checkout_session_created", "session_id", sess.ID)
	return sess, nil
}

// HandlePaymentWebhook verifies and applies a provider callback. Only a bad
// signature or payload is an error for the provider; unknown orders and
// unrelated event types are acknowledged so the provider stops retrying.
func (s *OrderService) HandlePaymentWebhook(ctx context.Context, body []byte, signature string) error {
	l := logging.FromContext(ctx).With("svc", "order.payment_webhook")

	ev, err := s.Payments.ParseWebhook(body, signature)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "invalid").Inc()
		l.Warn("webhook_rejected", "error", err)
		return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}
	l = l.With("event_id", ev.ID, "event_type", ev.Type)

	switch ev.Type {
	case payment.EventCheckoutCompleted, payment.EventAsyncPaymentSucceeded,
		payment.EventCheckoutExpired, payment.EventAsyncPaymentFailed:
	default:
		metrics.WebhookEventsTotal.WithLabelValues(ev.Type, "ignored").Inc()
		l.Debug("webhook_ignored")
		return nil
	}

	if s.Dedup != nil && ev.ID != "" {
		first, err := s.Dedup.Claim(ctx, ev.ID)
		switch {
		case err != nil:
			// Applying an event twice converges to the same state.
			l.Warn("webhook_dedup_unavailable", "error", err)
		case !first:
			metrics.WebhookEventsTotal.WithLabelValues(ev.Type, "duplicate").Inc()
			l.Info("webhook_duplicate")
			return nil
		}
	}

	if err := s.applyPaymentEvent(ctx, ev); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(ev.Type, "error").Inc()
		l.Error("webhook_apply_failed", "error", err)
		if s.Dedup != nil && ev.ID != "" {
			if ferr := s.Dedup.Forget(ctx, ev.ID); ferr != nil {
				l.Warn("webhook_dedup_forget_failed", "error", ferr)
			}
		}
		return err
	}
	metrics.WebhookEventsTotal.WithLabelValues(ev.Type, "ok").Inc()
	return nil
}

func (s *OrderService) applyPaymentEvent(ctx context.Context, ev *payment.Event) error {
	l := logging.FromContext(ctx).With("event_id", ev.ID, "event_type", ev.Type)

	raw := ev.Metadata[payment.MetadataOrderID]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		l.Warn("webhook_without_order", "order_id", raw)
		return nil
	}
	orderID := uint(id)

	switch ev.Type {
	case payment.EventCheckoutCompleted, payment.EventAsyncPaymentSucceeded:
		// Stripe reports delayed methods (SEPA, bank transfer) as a completed
		// session with payment_status "unpaid"; the money arrives with
		// checkout.session.async_payment_succeeded.
		if ev.Unpaid {
			l.Info("webhook_payment_pending", "order_id", orderID)
			return nil
		}
		confirmed, err := s.Repo.MarkPaid(ctx, orderID, ev.SessionID, ev.PaymentIntentID)
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("webhook_unknown_order", "order_id", orderID)
			return nil
		}
		if err != nil {
			return err
		}
		l.Info("order_paid", "order_id", orderID, "confirmed", confirmed)

		order, err := s.Repo.GetOrder(ctx, orderID)
		if err != nil {
			l.Warn("reload_order_failed", "order_id", orderID, "error", err)
			return nil
		}
		s.publish(ctx, "order_paid", order, map[string]any{
			"order_id":          order.ID,
			"payment_intent_id": ev.PaymentIntentID,
			"status":            order.Status,
		})
		if confirmed {
			s.notifyStatus(ctx, order)
		}

	case payment.EventCheckoutExpired, payment.EventAsyncPaymentFailed:
		changed, err := s.Repo.MarkPaymentFailed(ctx, orderID)
		if err != nil {
			return err
		}
		l.Info("order_payment_failed", "order_id", orderID, "changed", changed)
	}
	return nil
}
