package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/vente_shop/pkg/db"
	"github.com/Skotchmaster/vente_shop/pkg/mailer"
	"github.com/Skotchmaster/vente_shop/services/order/internal/models"
	"github.com/Skotchmaster/vente_shop/services/order/internal/payment"
	"github.com/Skotchmaster/vente_shop/services/order/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/order/internal/transport"
)

const testWebhookSecret = "whsec_order_tests"

// fakeProvider verifies webhooks with the real Stripe code and records checkout requests.
type fakeProvider struct {
	*payment.Stripe
	mu       sync.Mutex
	requests []payment.CheckoutRequest
	err      error
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, req)
	id := fmt.Sprintf("cs_test_%d", len(f.requests))
	return &payment.CheckoutSession{ID: id, URL: "https://checkout.example/" + id}, nil
}

type memDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (d *memDedup) Claim(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

func (d *memDedup) Forget(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
	return nil
}

type recordedEvent struct {
	topic, key, eventType string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key, eventType string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{topic: topic, key: key, eventType: eventType})
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}

type captureMailer struct {
	sent chan mailer.Message
}

func (c *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	c.sent <- msg
	return nil
}

func (c *captureMailer) next(t *testing.T) mailer.Message {
	t.Helper()
	select {
	case msg := <-c.sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no mail sent")
		return mailer.Message{}
	}
}

type fakeUsers map[uint]string

func (f fakeUsers) UserEmail(_ context.Context, id uint) (string, error) {
	if email, ok := f[id]; ok {
		return email, nil
	}
	return "", errors.New("user not found")
}

type testEnv struct {
	db     *gorm.DB
	svc    *OrderService
	pay    *fakeProvider
	events *recordingPublisher
	mail   *captureMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := pkgdb.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { pkgdb.Close(db) })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate())
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Equipment{}))

	env := &testEnv{
		db: db,
		pay: &fakeProvider{Stripe: payment.NewStripe(payment.StripeConfig{
			SecretKey:     "sk_test",
			WebhookSecret: testWebhookSecret,
		})},
		events: &recordingPublisher{},
		mail:   &captureMailer{sent: make(chan mailer.Message, 8)},
	}
	env.svc = &OrderService{
		Repo:        r,
		Payments:    env.pay,
		Events:      env.events,
		Mailer:      env.mail,
		Users:       fakeUsers{7: "owner@example.com"},
		FrontendURL: "https://shop.example",
		Currency:    "eur",
	}
	return env
}

func (env *testEnv) product(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, env.db.Create(p).Error)
	return p
}

func (env *testEnv) equipment(t *testing.T, name, perDay string, available bool) *models.Equipment {
	t.Helper()
	e := &models.Equipment{Name: name, RentalPricePerDay: decimal.RequireFromString(perDay), Available: available}
	require.NoError(t, env.db.Create(e).Error)
	return e
}

func (env *testEnv) stock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, env.db.First(&p, id).Error)
	return p.Stock
}

func (env *testEnv) available(t *testing.T, id uint) bool {
	t.Helper()
	var e models.Equipment
	require.NoError(t, env.db.First(&e, id).Error)
	return e.Available
}

func (env *testEnv) reload(t *testing.T, id uint) *models.Order {
	t.Helper()
	o, err := env.svc.Repo.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return o
}

func (env *testEnv) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

// placeOrder creates an order owned by user 7.
func (env *testEnv) placeOrder(t *testing.T, req transport.CreateOrderRequest) *models.Order {
	t.Helper()
	o, err := env.svc.CreateOrder(context.Background(), Caller{UserID: 7}, req)
	require.NoError(t, err)
	return o
}

func productLine(id uint, qty int) transport.OrderItemRequest {
	return transport.OrderItemRequest{Type: models.ItemProduct, ID: id, Quantity: qty}
}

func equipmentLine(id uint, qty, days int) transport.OrderItemRequest {
	return transport.OrderItemRequest{Type: models.ItemEquipment, ID: id, Quantity: qty, Days: days}
}

func signedEvent(t *testing.T, eventID, eventType string, orderID uint) ([]byte, string) {
	t.Helper()
	return signedSessionEvent(t, eventID, eventType, "paid", orderID)
}

func signedSessionEvent(t *testing.T, eventID, eventType, paymentStatus string, orderID uint) ([]byte, string) {
	t.Helper()
	payload := fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"data":{"object":{
		"id":"cs_paid_1","object":"checkout.session","payment_status":%q,
		"payment_intent":"pi_1","metadata":{"order_id":"%d"}}}}`, eventID, eventType, paymentStatus, orderID)
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return sp.Payload, sp.Header
}
