package payment

import (
	"context"
	"errors"
)

const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventCheckoutExpired       = "checkout.session.expired"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	MetadataOrderID            = "order_id"
	MetadataUserID             = "user_id"
	sessionPaymentStatusUnpaid = "unpaid"
)

var (
	// ErrInvalidWebhook covers bad signatures and unreadable payloads.
	ErrInvalidWebhook = errors.New("invalid webhook")
	ErrProvider       = errors.New("payment provider error")
)

type CheckoutLine struct {
	Name string
	// UnitAmount is in the minor unit of the currency.
	UnitAmount int64
	Quantity   int64
}

type CheckoutRequest struct {
	OrderID       uint
	UserID        uint
	Currency      string
	CustomerEmail string
	Lines         []CheckoutLine
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

// Event is the part of a provider webhook the order workflow acts on.
type Event struct {
	ID              string
	Type            string
	SessionID       string
	PaymentIntentID string
	// Unpaid is set for completed checkouts whose payment settles later.
	Unpaid   bool
	Metadata map[string]string
}

type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
