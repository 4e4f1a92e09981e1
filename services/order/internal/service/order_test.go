package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/vente_shop/services/order/internal/models"
	"github.com/Skotchmaster/vente_shop/services/order/internal/transport"
)

func TestCreateOrder_Total(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 5)
	kayak := env.equipment(t, "Kayak", "5", true)

	order := env.placeOrder(t, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{productLine(tent.ID, 2), equipmentLine(kayak.ID, 1, 3)},
	})

	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(35)), "total %s", order.TotalAmount)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	require.NotNil(t, order.UserID)
	assert.Equal(t, uint(7), *order.UserID)

	stored := env.reload(t, order.ID)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Tent", stored.Items[0].Name)
	assert.True(t, stored.Items[0].LineTotal.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 0, stored.Items[0].RentalDays)
	assert.Equal(t, 3, stored.Items[1].RentalDays)
	assert.True(t, stored.Items[1].LineTotal.Equal(decimal.NewFromInt(15)))
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(35)))

	assert.Equal(t, 3, env.stock(t, tent.ID))
	assert.False(t, env.available(t, kayak.ID))
	assert.Equal(t, 1, env.events.count("order_created"))
}

func TestCreateOrder_PriceSnapshot(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "12.50", 5)

	order := env.placeOrder(t, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{productLine(tent.ID, 1)},
	})
	require.NoError(t, env.db.Model(&models.Product{}).Where("id = ?", tent.ID).
		Update("price", decimal.NewFromInt(99)).Error)

	stored := env.reload(t, order.ID)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("12.5")))
}

func TestCreateOrder_EquipmentDefaultsToOneDay(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	drill := env.equipment(t, "Drill", "7.25", true)

	order := env.placeOrder(t, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{equipmentLine(drill.ID, 1, 0)},
	})
	assert.Equal(t, 1, order.Items[0].RentalDays)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("7.25")))
}

func TestCreateOrder_NotFoundRollsBack(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 5)
	kayak := env.equipment(t, "Kayak", "5", true)

	tests := []struct {
		name  string
		items []transport.OrderItemRequest
		msg   string
	}{
		{name: "unknown product", items: []transport.OrderItemRequest{productLine(tent.ID, 2), equipmentLine(kayak.ID, 1, 1), productLine(999, 1)}, msg: "product not found"},
		{name: "unknown equipment", items: []transport.OrderItemRequest{productLine(tent.ID, 2), equipmentLine(kayak.ID, 1, 1), equipmentLine(999, 1, 1)}, msg: "equipment not found"},
	}

	for _, tt := range tests {
		_, err := env.svc.CreateOrder(context.Background(), Caller{UserID: 7}, transport.CreateOrderRequest{Items: tt.items})
		require.ErrorIs(t, err, ErrNotFound, tt.name)
		assert.Contains(t, err.Error(), tt.msg)
	}

	assert.Equal(t, int64(0), env.orderCount(t))
	assert.Equal(t, 5, env.stock(t, tent.ID))
	assert.True(t, env.available(t, kayak.ID))
	assert.Zero(t, env.events.count("order_created"))
}

func TestCreateOrder_OutOfStockRollsBack(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 5)
	rented := env.equipment(t, "Kayak", "5", false)

	_, err := env.svc.CreateOrder(context.Background(), Caller{UserID: 7}, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{productLine(tent.ID, 2), equipmentLine(rented.ID, 1, 2)},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, env.stock(t, tent.ID))

	_, err = env.svc.CreateOrder(context.Background(), Caller{UserID: 7}, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{productLine(tent.ID, 6)},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, env.stock(t, tent.ID))
	assert.Equal(t, int64(0), env.orderCount(t))
}

func TestCreateOrder_LineBounds(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 5000)
	kayak := env.equipment(t, "Kayak", "5", true)

	tests := []struct {
		name string
		line transport.OrderItemRequest
		msg  string
	}{
		{name: "huge rental", line: equipmentLine(kayak.ID, 1<<32, 1<<32), msg: "quantity must be at most 999"},
		{name: "long rental", line: equipmentLine(kayak.ID, 1, MaxRentalDays+1), msg: "days must be at most 365"},
		{name: "bulk product", line: productLine(tent.ID, MaxQuantity+1), msg: "quantity must be at most 999"},
	}

	for _, tt := range tests {
		_, err := env.svc.CreateOrder(context.Background(), Caller{UserID: 7}, transport.CreateOrderRequest{
			Items: []transport.OrderItemRequest{tt.line},
		})
		require.ErrorIs(t, err, ErrValidation, tt.name)
		assert.Contains(t, err.Error(), tt.msg, tt.name)
	}
	assert.True(t, env.available(t, kayak.ID))
	assert.Equal(t, 5000, env.stock(t, tent.ID))
	assert.Equal(t, int64(0), env.orderCount(t))

	order := env.placeOrder(t, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{productLine(tent.ID, MaxQuantity), equipmentLine(kayak.ID, 1, MaxRentalDays)},
	})
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(9990+1825)), "total %s", order.TotalAmount)
}

func TestCreateOrder_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 5)

	delivery := transport.DeliveryRequest{Country: "FR", Address: "1 rue", City: "Paris", PostalCode: "75001", Phone: "0102"}
	noCity := delivery
	noCity.City = " "

	tests := []struct {
		name string
		req  transport.CreateOrderRequest
		msg  string
	}{
		{name: "empty cart", req: transport.CreateOrderRequest{}, msg: "cart is empty"},
		{name: "zero quantity", req: transport.CreateOrderRequest{Items: []transport.OrderItemRequest{productLine(tent.ID, 0)}}, msg: "quantity"},
		{name: "days on product", req: transport.CreateOrderRequest{Items: []transport.OrderItemRequest{{Type: models.ItemProduct, ID: tent.ID, Quantity: 1, Days: 2}}}, msg: "days"},
		{name: "negative days", req: transport.CreateOrderRequest{Items: []transport.OrderItemRequest{equipmentLine(1, 1, -2)}}, msg: "days"},
		{name: "unknown type", req: transport.CreateOrderRequest{Items: []transport.OrderItemRequest{{Type: "gift", ID: 1, Quantity: 1}}}, msg: "type"},
		{name: "missing id", req: transport.CreateOrderRequest{Items: []transport.OrderItemRequest{productLine(0, 1)}}, msg: "id"},
		{name: "delivery without city", req: transport.CreateOrderRequest{Items: []transport.OrderItemRequest{productLine(tent.ID, 1)}, RequiresDelivery: true, Delivery: noCity}, msg: "delivery.city"},
		{name: "delivery without anything", req: transport.CreateOrderRequest{Items: []transport.OrderItemRequest{productLine(tent.ID, 1)}, RequiresDelivery: true}, msg: "delivery.country, delivery.address"},
	}

	for _, tt := range tests {
		_, err := env.svc.CreateOrder(context.Background(), Caller{UserID: 7}, tt.req)
		require.ErrorIs(t, err, ErrValidation, tt.name)
		assert.Contains(t, err.Error(), tt.msg, tt.name)
	}
	assert.Equal(t, 5, env.stock(t, tent.ID))

	order := env.placeOrder(t, transport.CreateOrderRequest{
		Items:            []transport.OrderItemRequest{productLine(tent.ID, 1)},
		RequiresDelivery: true,
		Delivery:         delivery,
	})
	assert.Equal(t, "Paris", env.reload(t, order.ID).Delivery.City)
}

func TestCreateOrder_ConcurrentLastUnit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	last := env.product(t, "Lantern", "15", 1)
	kayak := env.equipment(t, "Kayak", "5", true)

	const buyers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		won      int
		rejected int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			_, err := env.svc.CreateOrder(context.Background(), Caller{UserID: uid}, transport.CreateOrderRequest{
				Items: []transport.OrderItemRequest{productLine(last.ID, 1), equipmentLine(kayak.ID, 1, 1)},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case assert.ErrorIs(t, err, ErrInsufficientStock):
				rejected++
			}
		}(uint(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, buyers-1, rejected)
	assert.Equal(t, 0, env.stock(t, last.ID))
	assert.Equal(t, int64(1), env.orderCount(t))
}

func TestGetOrder_Ownership(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 10)
	ctx := context.Background()

	mine := env.placeOrder(t, transport.CreateOrderRequest{Items: []transport.OrderItemRequest{productLine(tent.ID, 1)}})
	anon, err := env.svc.CreateOrder(ctx, Caller{SessionKey: "sess-1"}, transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{productLine(tent.ID, 1)},
	})
	require.NoError(t, err)
	assert.Nil(t, anon.UserID)

	tests := []struct {
		name   string
		id     uint
		caller Caller
		ok     bool
	}{
		{name: "owner", id: mine.ID, caller: Caller{UserID: 7}, ok: true},
		{name: "other user", id: mine.ID, caller: Caller{UserID: 8}},
		{name: "admin", id: mine.ID, caller: Caller{UserID: 1, Admin: true}, ok: true},
		{name: "anonymous on user order", id: mine.ID, caller: Caller{SessionKey: "sess-1"}},
		{name: "same session", id: anon.ID, caller: Caller{SessionKey: "sess-1"}, ok: true},
		{name: "other session", id: anon.ID, caller: Caller{SessionKey: "sess-2"}},
		{name: "no session", id: anon.ID, caller: Caller{}},
		{name: "missing", id: 999, caller: Caller{Admin: true}},
	}

	for _, tt := range tests {
		_, err := env.svc.GetOrder(ctx, tt.id, tt.caller)
		if tt.ok {
			assert.NoError(t, err, tt.name)
		} else {
			assert.ErrorIs(t, err, ErrNotFound, tt.name)
		}
	}
}

func TestListOrders(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tent := env.product(t, "Tent", "10", 10)
	ctx := context.Background()

	first := env.placeOrder(t, transport.CreateOrderRequest{Items: []transport.OrderItemRequest{productLine(tent.ID, 1)}})
	env.placeOrder(t, transport.CreateOrderRequest{Items: []transport.OrderItemRequest{productLine(tent.ID, 1)}})
	_, err := env.svc.CreateOrder(ctx, Caller{UserID: 8}, transport.CreateOrderRequest{Items: []transport.OrderItemRequest{productLine(tent.ID, 1)}})
	require.NoError(t, err)

	_, err = env.svc.Transition(ctx, first.ID, "confirm")
	require.NoError(t, err)

	total, mine, err := env.svc.ListMyOrders(ctx, 7, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	total, confirmed, err := env.svc.ListOrders(ctx, "confirmed", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, confirmed, 1)
	assert.Equal(t, first.ID, confirmed[0].ID)

	total, page, err := env.svc.ListOrders(ctx, "", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	_, _, err = env.svc.ListOrders(ctx, "lost", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}
