package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/vente_shop/services/order/internal/models"
)

type OrderItemRequest struct {
	Type     string `json:"type" validate:"required,oneof=product equipment"`
	ID       uint   `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0,lte=999"`
	Days     int    `json:"days" validate:"gte=0,lte=365"`
}

type DeliveryRequest struct {
	Country    string `json:"country" validate:"max=100"`
	Address    string `json:"address" validate:"max=255"`
	City       string `json:"city" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	Phone      string `json:"phone" validate:"max=30"`
}

type CreateOrderRequest struct {
	Items            []OrderItemRequest `json:"items" validate:"dive"`
	RequiresDelivery bool               `json:"requires_delivery"`
	Delivery         DeliveryRequest    `json:"delivery"`
	RecipientName    string             `json:"recipient_name" validate:"max=200"`
	RecipientEmail   string             `json:"recipient_email" validate:"omitempty,email,max=254"`
	RecipientPhone   string             `json:"recipient_phone" validate:"max=30"`
}

type CreateOrderResponse struct {
	OrderID     uint            `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Order       *models.Order   `json:"order"`
}

type PaymentSessionRequest struct {
	OrderID uint `json:"order_id" validate:"required"`
}
