package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

const (
	ItemProduct   = "product"
	ItemEquipment = "equipment"
)

type Delivery struct {
	Country    string `gorm:"size:100" json:"country,omitempty"`
	Address    string `gorm:"size:255" json:"address,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	Phone      string `gorm:"size:30" json:"phone,omitempty"`
}

type Recipient struct {
	Name  string `gorm:"size:200" json:"name,omitempty"`
	Email string `gorm:"size:254" json:"email,omitempty"`
	Phone string `gorm:"size:30" json:"phone,omitempty"`
}

// Order keeps the total computed at creation; it is never recomputed.
type Order struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           *uint           `gorm:"index" json:"user_id,omitempty"`
	SessionKey       string          `gorm:"size:64;index" json:"-"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Status           Status          `gorm:"size:20;not null;index" json:"status"`
	PaymentStatus    PaymentStatus   `gorm:"size:20;not null" json:"payment_status"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	RequiresDelivery bool            `gorm:"not null" json:"requires_delivery"`
	Delivery         Delivery        `gorm:"embedded;embeddedPrefix:delivery_" json:"delivery"`
	Recipient        Recipient       `gorm:"embedded;embeddedPrefix:recipient_" json:"recipient"`
	PaymentSessionID string          `gorm:"size:255;index" json:"payment_session_id,omitempty"`
	PaymentIntentID  string          `gorm:"size:255" json:"payment_intent_id,omitempty"`
	Items            []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem references exactly one of ProductID or EquipmentID. Name and
// UnitPrice are copied from the catalog when the order is placed.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"order_id"`
	ItemType    string          `gorm:"size:20;not null" json:"item_type"`
	ProductID   *uint           `gorm:"index" json:"product_id,omitempty"`
	EquipmentID *uint           `gorm:"index" json:"equipment_id,omitempty"`
	Name        string          `gorm:"size:200;not null" json:"name"`
	Quantity    int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	RentalDays  int             `gorm:"not null" json:"rental_days"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}

// Product is the part of the catalog product row that checkout reads and reserves.
type Product struct {
	ID    uint
	Name  string
	Price decimal.Decimal `gorm:"type:decimal(10,2)"`
	Stock int
}

func (Product) TableName() string { return "products" }

type Equipment struct {
	ID                uint
	Name              string
	RentalPricePerDay decimal.Decimal `gorm:"type:decimal(10,2)"`
	Available         bool
}

func (Equipment) TableName() string { return "equipment" }
