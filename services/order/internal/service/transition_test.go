package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/vente_shop/services/order/internal/models"
	"github.com/Skotchmaster/vente_shop/services/order/internal/transport"
)

func TestTransition_ConfirmTwice(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 5)
	order := env.placeOrder(t, transport.CreateOrderRequest{
		Items:          []transport.OrderItemRequest{productLine(tent.ID, 1)},
		RecipientEmail: "buyer@example.com",
	})
	ctx := context.Background()

	got, err := env.svc.Transition(ctx, order.ID, "confirm")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)

	got, err = env.svc.Transition(ctx, order.ID, "confirm")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, models.StatusConfirmed, env.reload(t, order.ID).Status)

	assert.Equal(t, 1, env.events.count("order_status_changed"), "the repeat has no side effects")
	msg := env.mail.next(t)
	assert.Equal(t, "buyer@example.com", msg.To)
	assert.Equal(t, "Order confirmed", msg.Subject)
	assert.Contains(t, msg.Body, "#1")
}

func TestTransition_Lifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 5)
	order := env.placeOrder(t, transport.CreateOrderRequest{Items: []transport.OrderItemRequest{productLine(tent.ID, 2)}})
	ctx := context.Background()

	for _, step := range []struct {
		action string
		want   models.Status
	}{
		{"confirm", models.StatusConfirmed},
		{"ship", models.StatusShipped},
		{"deliver", models.StatusDelivered},
	} {
		got, err := env.svc.Transition(ctx, order.ID, step.action)
		require.NoError(t, err, step.action)
		assert.Equal(t, step.want, got.Status)
	}

	_, err := env.svc.Transition(ctx, order.ID, "cancel")
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, models.StatusDelivered, env.reload(t, order.ID).Status)
	assert.Equal(t, 3, env.stock(t, tent.ID), "delivered orders keep their stock")
}

func TestTransition_Illegal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 5)
	order := env.placeOrder(t, transport.CreateOrderRequest{Items: []transport.OrderItemRequest{productLine(tent.ID, 1)}})
	ctx := context.Background()

	for _, action := range []string{"deliver", "ship", "cancel"} {
		_, err := env.svc.Transition(ctx, order.ID, action)
		assert.ErrorIs(t, err, ErrIllegalTransition, action)
	}
	assert.Equal(t, models.StatusPending, env.reload(t, order.ID).Status)
	assert.Zero(t, env.events.count("order_status_changed"))

	_, err := env.svc.Transition(ctx, order.ID, "refund")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.Transition(ctx, 999, "confirm")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransition_ReleasesReservation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 5)
	kayak := env.equipment(t, "Kayak", "5", true)
	ctx := context.Background()

	items := []transport.OrderItemRequest{productLine(tent.ID, 2), equipmentLine(kayak.ID, 1, 2)}

	rejected := env.placeOrder(t, transport.CreateOrderRequest{Items: items})
	assert.Equal(t, 3, env.stock(t, tent.ID))
	_, err := env.svc.Transition(ctx, rejected.ID, "reject")
	require.NoError(t, err)
	assert.Equal(t, 5, env.stock(t, tent.ID))
	assert.True(t, env.available(t, kayak.ID))

	cancelled := env.placeOrder(t, transport.CreateOrderRequest{Items: items})
	_, err = env.svc.Transition(ctx, cancelled.ID, "confirm")
	require.NoError(t, err)
	_, err = env.svc.Transition(ctx, cancelled.ID, "cancel")
	require.NoError(t, err)
	assert.Equal(t, 5, env.stock(t, tent.ID))
	assert.True(t, env.available(t, kayak.ID))

	_, err = env.svc.Transition(ctx, cancelled.ID, "cancel")
	require.NoError(t, err)
	assert.Equal(t, 5, env.stock(t, tent.ID), "repeating a cancel releases nothing")
}

func TestTransition_NotifiesOwner(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 5)
	order := env.placeOrder(t, transport.CreateOrderRequest{Items: []transport.OrderItemRequest{productLine(tent.ID, 1)}})

	_, err := env.svc.Transition(context.Background(), order.ID, "reject")
	require.NoError(t, err)

	msg := env.mail.next(t)
	assert.Equal(t, "owner@example.com", msg.To)
	assert.Equal(t, "Order rejected", msg.Subject)
}

func TestTransition_NoRecipient(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 5)
	order, err := env.svc.CreateOrder(context.Background(), Caller{UserID: 42}, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{productLine(tent.ID, 1)},
	})
	require.NoError(t, err)

	got, err := env.svc.Transition(context.Background(), order.ID, "confirm")
	require.NoError(t, err, "a failed owner lookup does not fail the transition")
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Empty(t, env.mail.sent)
}
