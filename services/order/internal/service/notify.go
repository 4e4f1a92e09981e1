package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/mailer"
	"github.com/Skotchmaster/vente_shop/services/order/internal/models"
)

var statusMail = map[models.Status]struct{ subject, body string }{
	models.StatusConfirmed: {"Order confirmed", "Your order #%d has been confirmed. We will keep you informed of its progress."},
	models.StatusRejected:  {"Order rejected", "Your order #%d has been rejected. Please contact us for more information."},
	models.StatusShipped:   {"Order shipped", "Your order #%d has been shipped and is on its way."},
	models.StatusDelivered: {"Order delivered", "Your order #%d has been delivered. Thank you for your trust!"},
	models.StatusCancelled: {"Order cancelled", "Your order #%d has been cancelled."},
}

// recipient is the explicit recipient email, else the owner's account email, else empty.
func (s *OrderService) recipient(ctx context.Context, order *models.Order) string {
	if order.Recipient.Email != "" {
		return order.Recipient.Email
	}
	if order.UserID == nil || s.Users == nil {
		return ""
	}
	email, err := s.Users.UserEmail(ctx, *order.UserID)
	if err != nil {
		logging.FromContext(ctx).Warn("resolve_recipient_failed", "order_id", order.ID, "user_id", *order.UserID, "error", err)
		return ""
	}
	return email
}

// notifyStatus mails the customer. Failures never reach the caller.
func (s *OrderService) notifyStatus(ctx context.Context, order *models.Order) {
	tpl, ok := statusMail[order.Status]
	if !ok || s.Mailer == nil {
		return
	}
	to := s.recipient(ctx, order)
	if to == "" {
		logging.FromContext(ctx).Debug("order_mail_skipped", "order_id", order.ID, "reason", "no recipient")
		return
	}
	mailer.SendAsync(ctx, s.Mailer, mailer.Message{
		To:      to,
		Subject: tpl.subject,
		Body:    fmt.Sprintf(tpl.body, order.ID),
	})
}
