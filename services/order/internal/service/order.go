package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/vente_shop/pkg/events"
	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/mailer"
	"github.com/Skotchmaster/vente_shop/pkg/metrics"
	"github.com/Skotchmaster/vente_shop/services/order/internal/models"
	"github.com/Skotchmaster/vente_shop/services/order/internal/payment"
	"github.com/Skotchmaster/vente_shop/services/order/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/order/internal/transport"
)

// Per line limits, matching the cart's quantity cap.
const (
	MaxQuantity   = 999
	MaxRentalDays = 365
)

// UserDirectory resolves the email of an order owner.
type UserDirectory interface {
	UserEmail(ctx context.Context, id uint) (string, error)
}

// WebhookDedup suppresses repeated deliveries of the same payment event.
type WebhookDedup interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type OrderService struct {
	Repo     *repo.GormRepo
	Payments payment.Provider
	Dedup    WebhookDedup
	Events   events.Publisher
	Mailer   mailer.Mailer
	Users    UserDirectory

	FrontendURL string
	Currency    string
}

// Caller is who asks: a user, an admin, or an anonymous session.
type Caller struct {
	UserID     uint
	Admin      bool
	SessionKey string
}

func (c Caller) owns(o *models.Order) bool {
	if c.Admin {
		return true
	}
	if o.UserID != nil {
		return c.UserID != 0 && *o.UserID == c.UserID
	}
	return o.SessionKey != "" && c.SessionKey == o.SessionKey
}

func checkDelivery(req transport.CreateOrderRequest) error {
	if !req.RequiresDelivery {
		return nil
	}
	d := req.Delivery
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"country", d.Country},
		{"address", d.Address},
		{"city", d.City},
		{"postal_code", d.PostalCode},
		{"phone", d.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, "delivery."+f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required for delivery: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func checkItems(items []transport.OrderItemRequest) ([]transport.OrderItemRequest, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	out := make([]transport.OrderItemRequest, len(items))
	for i, it := range items {
		if it.ID == 0 {
			return nil, fmt.Errorf("%w: items[%d]: id is required", ErrValidation, i)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: items[%d]: quantity must be positive", ErrValidation, i)
		}
		if it.Quantity > MaxQuantity {
			return nil, fmt.Errorf("%w: items[%d]: quantity must be at most %d", ErrValidation, i, MaxQuantity)
		}
		switch it.Type {
		case models.ItemProduct:
			if it.Days != 0 {
				return nil, fmt.Errorf("%w: items[%d]: days only apply to equipment", ErrValidation, i)
			}
		case models.ItemEquipment:
			if it.Days < 0 {
				return nil, fmt.Errorf("%w: items[%d]: days must be positive", ErrValidation, i)
			}
			if it.Days > MaxRentalDays {
				return nil, fmt.Errorf("%w: items[%d]: days must be at most %d", ErrValidation, i, MaxRentalDays)
			}
			if it.Days == 0 {
				it.Days = 1
			}
		default:
			return nil, fmt.Errorf("%w: items[%d]: type must be product or equipment", ErrValidation, i)
		}
		out[i] = it
	}
	return out, nil
}

// CreateOrder prices and reserves every line in one transaction. Any failing
// line rolls back the reservations made before it and no order is stored.
func (s *OrderService) CreateOrder(ctx context.Context, caller Caller, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	items, err := checkItems(req.Items)
	if err != nil {
		return nil, err
	}
	if err := checkDelivery(req); err != nil {
		return nil, err
	}

	order := &models.Order{
		Status:           models.StatusPending,
		PaymentStatus:    models.PaymentPending,
		RequiresDelivery: req.RequiresDelivery,
		Recipient: models.Recipient{
			Name:  strings.TrimSpace(req.RecipientName),
			Email: strings.TrimSpace(req.RecipientEmail),
			Phone: strings.TrimSpace(req.RecipientPhone),
		},
	}
	if caller.UserID != 0 {
		uid := caller.UserID
		order.UserID = &uid
	} else {
		order.SessionKey = caller.SessionKey
	}
	if req.RequiresDelivery {
		order.Delivery = models.Delivery{
			Country:    strings.TrimSpace(req.Delivery.Country),
			Address:    strings.TrimSpace(req.Delivery.Address),
			City:       strings.TrimSpace(req.Delivery.City),
			PostalCode: strings.TrimSpace(req.Delivery.PostalCode),
			Phone:      strings.TrimSpace(req.Delivery.Phone),
		}
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		total := decimal.Zero
		order.Items = make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			line, err := reserveLine(ctx, tx, it)
			if err != nil {
				return err
			}
			total = total.Add(line.LineTotal)
			order.Items = append(order.Items, *line)
		}
		order.TotalAmount = total
		return tx.CreateOrder(ctx, order)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			metrics.StockConflictsTotal.Inc()
		}
		l.Warn("create_order_failed", "error", err)
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	l.Info("order_created", "order_id", order.ID, "total", order.TotalAmount.StringFixed(2), "lines", len(order.Items))
	s.publish(ctx, "order_created", order, map[string]any{
		"order_id":     order.ID,
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount,
		"items":        len(order.Items),
	})
	return order, nil
}

// reserveLine resolves the catalog entity, prices the line and takes the stock.
func reserveLine(ctx context.Context, tx *repo.GormRepo, it transport.OrderItemRequest) (*models.OrderItem, error) {
	id := it.ID
	line := &models.OrderItem{ItemType: it.Type, Quantity: it.Quantity}

	switch it.Type {
	case models.ItemProduct:
		p, err := tx.GetProduct(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: product not found (id %d)", ErrNotFound, id)
		}
		if err != nil {
			return nil, err
		}
		if err := tx.ReserveProduct(ctx, id, it.Quantity); err != nil {
			if errors.Is(err, repo.ErrInsufficientStock) {
				return nil, fmt.Errorf("%w: only %d of %q left", ErrInsufficientStock, p.Stock, p.Name)
			}
			return nil, err
		}
		line.ProductID = &id
		line.Name = p.Name
		line.UnitPrice = p.Price
		line.LineTotal = p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))

	case models.ItemEquipment:
		e, err := tx.GetEquipment(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: equipment not found (id %d)", ErrNotFound, id)
		}
		if err != nil {
			return nil, err
		}
		if err := tx.ReserveEquipment(ctx, id); err != nil {
			if errors.Is(err, repo.ErrInsufficientStock) {
				return nil, fmt.Errorf("%w: %q is not available", ErrInsufficientStock, e.Name)
			}
			return nil, err
		}
		line.EquipmentID = &id
		line.Name = e.Name
		line.RentalDays = it.Days
		line.UnitPrice = e.RentalPricePerDay
		line.LineTotal = e.RentalPricePerDay.
			Mul(decimal.NewFromInt(int64(it.Quantity))).
			Mul(decimal.NewFromInt(int64(it.Days)))
	}
	return line, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint, caller Caller) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !caller.owns(order)) {
		return nil, fmt.Errorf("%w: order not found", ErrNotFound)
	}
	return order, err
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, repo.ListFilter{UserID: &userID, Offset: offset, Limit: limit})
}

// ListOrders is the admin listing; status is optional.
func (s *OrderService) ListOrders(ctx context.Context, status string, offset, limit int) (int64, []models.Order, error) {
	st := models.Status(strings.ToUpper(status))
	if st != "" && !st.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.Repo.ListOrders(ctx, repo.ListFilter{Status: st, Offset: offset, Limit: limit})
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order, payload any) {
	if s.Events == nil {
		return
	}
	key := "order-" + strconv.FormatUint(uint64(order.ID), 10)
	if err := s.Events.Publish(ctx, events.TopicOrders, key, eventType, payload); err != nil {
		metrics.SideEffectErrorsTotal.WithLabelValues("event").Inc()
		logging.FromContext(ctx).Warn("publish_event_failed", "event", eventType, "order_id", order.ID, "error", err)
	}
}
