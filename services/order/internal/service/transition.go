package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/metrics"
	"github.com/Skotchmaster/vente_shop/services/order/internal/models"
	"github.com/Skotchmaster/vente_shop/services/order/internal/repo"
)

// Transition applies an admin action. Repeating the action that produced the
// current status succeeds without side effects; anything outside the status
// table is ErrIllegalTransition.
func (s *OrderService) Transition(ctx context.Context, id uint, action string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.transition", "order_id", id, "action", action)

	to, ok := models.ActionTarget(action)
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: order not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	from := order.Status
	if from == to {
		metrics.OrderTransitionsTotal.WithLabelValues(string(to), "noop").Inc()
		return order, nil
	}
	if !models.CanTransition(from, to) {
		metrics.OrderTransitionsTotal.WithLabelValues(string(to), "illegal").Inc()
		l.Warn("illegal_transition", "from", from, "to", to)
		return nil, fmt.Errorf("%w: cannot %s an order in status %s", ErrIllegalTransition, action, from)
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.SetStatus(ctx, id, from, to); err != nil {
			return err
		}
		if !to.ReleasesStock() {
			return nil
		}
		for _, item := range order.Items {
			if err := tx.Release(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, repo.ErrStale) {
		metrics.OrderTransitionsTotal.WithLabelValues(string(to), "conflict").Inc()
		return nil, fmt.Errorf("%w: order status changed concurrently, reload and retry", ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	order.Status = to
	metrics.OrderTransitionsTotal.WithLabelValues(string(to), "ok").Inc()
	l.Info("order_status_changed", "from", from, "to", to)

	s.publish(ctx, "order_status_changed", order, map[string]any{
		"order_id": order.ID,
		"from":     from,
		"to":       to,
	})
	s.notifyStatus(ctx, order)
	return order, nil
}
