package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/vente_shop/pkg/db"
	middleware "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/vente_shop/pkg/server"
	"github.com/Skotchmaster/vente_shop/pkg/tokens"
	"github.com/Skotchmaster/vente_shop/services/order/internal/models"
	"github.com/Skotchmaster/vente_shop/services/order/internal/payment"
	"github.com/Skotchmaster/vente_shop/services/order/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/order/internal/service"
)

var secret = []byte("test-jwt-secret")

const webhookSecret = "whsec_http_tests"

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := pkgdb.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { pkgdb.Close(db) })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate())
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Equipment{}))

	stripeStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_stub","object":"checkout.session","url":"https://checkout.example/cs_stub"}`))
	}))
	t.Cleanup(stripeStub.Close)

	svc := &service.OrderService{
		Repo: r,
		Payments: payment.NewStripe(payment.StripeConfig{
			SecretKey:     "sk_test",
			WebhookSecret: webhookSecret,
			APIURL:        stripeStub.URL,
		}),
		FrontendURL: "https://shop.example",
	}

	e := server.NewEcho(slog.New(slog.NewJSONHandler(io.Discard, nil)), "order-test")
	Register(e, &Deps{
		OrderHandler: &OrderHTTP{Svc: svc},
		Auth:         middleware.NewAuthenticator(secret, nil),
	})
	return &testServer{e: e, db: db}
}

func (s *testServer) product(t *testing.T, price string, stock int) uint {
	t.Helper()
	p := &models.Product{Name: "Tent", Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, s.db.Create(p).Error)
	return p.ID
}

func bearer(t *testing.T, userID uint, role string) string {
	t.Helper()
	tok, _, err := tokens.NewAccessToken(secret, userID, "someone", role, time.Now(), time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

type request struct {
	method, path, body, auth string
	cookie                   *http.Cookie
	header                   map[string]string
}

func (s *testServer) do(r request) *httptest.ResponseRecorder {
	req := httptest.NewRequest(r.method, r.path, strings.NewReader(r.body))
	if r.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if r.auth != "" {
		req.Header.Set(echo.HeaderAuthorization, r.auth)
	}
	if r.cookie != nil {
		req.AddCookie(r.cookie)
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func orderBody(productID uint, qty int) string {
	return fmt.Sprintf(`{"items":[{"type":"product","id":%d,"quantity":%d}]}`, productID, qty)
}

func TestCreateOrder_Statuses(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	tent := s.product(t, "10", 2)
	user := bearer(t, 7, tokens.RoleUser)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "empty cart", body: `{"items":[]}`, want: http.StatusBadRequest},
		{name: "bad type", body: `{"items":[{"type":"gift","id":1,"quantity":1}]}`, want: http.StatusBadRequest},
		{name: "unknown product", body: orderBody(999, 1), want: http.StatusNotFound},
		{name: "over line limit", body: orderBody(tent, 1000), want: http.StatusBadRequest},
		{name: "too many", body: orderBody(tent, 3), want: http.StatusConflict},
		{name: "malformed", body: `{"items":`, want: http.StatusBadRequest},
		{name: "ok", body: orderBody(tent, 2), want: http.StatusCreated},
		{name: "sold out", body: orderBody(tent, 1), want: http.StatusConflict},
	}

	for _, tt := range tests {
		rec := s.do(request{method: http.MethodPost, path: "/orders", body: tt.body, auth: user})
		assert.Equal(t, tt.want, rec.Code, "%s: %s", tt.name, rec.Body.String())
	}
}

func TestCreateOrder_AnonymousSession(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	tent := s.product(t, "10", 5)

	rec := s.do(request{method: http.MethodPost, path: "/orders", body: orderBody(tent, 2)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		OrderID     uint   `json:"order_id"`
		TotalAmount string `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "20", created.TotalAmount)

	var session *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie {
			session = ck
		}
	}
	require.NotNil(t, session)

	path := fmt.Sprintf("/orders/%d", created.OrderID)
	assert.Equal(t, http.StatusOK, s.do(request{method: http.MethodGet, path: path, cookie: session}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(request{method: http.MethodGet, path: path}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(request{method: http.MethodGet, path: path, auth: bearer(t, 7, tokens.RoleUser)}).Code)

	rec = s.do(request{method: http.MethodPost, path: "/payments/session", body: fmt.Sprintf(`{"order_id":%d}`, created.OrderID), cookie: session})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"session_id":"cs_stub","url":"https://checkout.example/cs_stub"}`, rec.Body.String())
}

func TestListMyOrders(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	tent := s.product(t, "10", 5)
	user := bearer(t, 7, tokens.RoleUser)

	assert.Equal(t, http.StatusUnauthorized, s.do(request{method: http.MethodGet, path: "/orders"}).Code)

	require.Equal(t, http.StatusCreated, s.do(request{method: http.MethodPost, path: "/orders", body: orderBody(tent, 1), auth: user}).Code)

	rec := s.do(request{method: http.MethodGet, path: "/orders", auth: user})
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data []models.Order `json:"data"`
		Meta map[string]any `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, float64(1), page.Meta["total"])

	rec = s.do(request{method: http.MethodGet, path: "/orders", auth: bearer(t, 8, tokens.RoleUser)})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Data)
}

func TestAdminTransitions(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	tent := s.product(t, "10", 5)
	user := bearer(t, 7, tokens.RoleUser)
	admin := bearer(t, 1, tokens.RoleAdmin)

	require.Equal(t, http.StatusCreated, s.do(request{method: http.MethodPost, path: "/orders", body: orderBody(tent, 1), auth: user}).Code)

	tests := []struct {
		name, path, auth string
		want             int
	}{
		{name: "anonymous", path: "/admin/orders/1/confirm", want: http.StatusUnauthorized},
		{name: "not admin", path: "/admin/orders/1/confirm", auth: user, want: http.StatusForbidden},
		{name: "illegal", path: "/admin/orders/1/deliver", auth: admin, want: http.StatusConflict},
		{name: "unknown action", path: "/admin/orders/1/refund", auth: admin, want: http.StatusBadRequest},
		{name: "missing order", path: "/admin/orders/9/confirm", auth: admin, want: http.StatusNotFound},
		{name: "bad id", path: "/admin/orders/x/confirm", auth: admin, want: http.StatusBadRequest},
		{name: "confirm", path: "/admin/orders/1/confirm", auth: admin, want: http.StatusOK},
		{name: "confirm again", path: "/admin/orders/1/confirm", auth: admin, want: http.StatusOK},
		{name: "ship", path: "/admin/orders/1/ship", auth: admin, want: http.StatusOK},
	}

	for _, tt := range tests {
		rec := s.do(request{method: http.MethodPost, path: tt.path, auth: tt.auth})
		assert.Equal(t, tt.want, rec.Code, "%s: %s", tt.name, rec.Body.String())
	}

	rec := s.do(request{method: http.MethodGet, path: "/admin/orders?status=shipped", auth: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"SHIPPED"`)

	rec = s.do(request{method: http.MethodGet, path: "/admin/orders?status=lost", auth: admin})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentWebhook(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	tent := s.product(t, "10", 5)

	require.Equal(t, http.StatusCreated, s.do(request{method: http.MethodPost, path: "/orders", body: orderBody(tent, 1), auth: bearer(t, 7, tokens.RoleUser)}).Code)

	payload := `{"id":"evt_http","object":"event","type":"checkout.session.completed",
		"data":{"object":{"id":"cs_1","object":"checkout.session","payment_status":"paid","metadata":{"order_id":"1"}}}}`
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    webhookSecret,
		Timestamp: time.Now(),
	})

	rec := s.do(request{method: http.MethodPost, path: "/payments/webhook", body: payload,
		header: map[string]string{payment.SignatureHeader: "t=1,v1=bad"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for i := 0; i < 2; i++ {
		rec = s.do(request{method: http.MethodPost, path: "/payments/webhook", body: payload,
			header: map[string]string{payment.SignatureHeader: sp.Header}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	}

	var order models.Order
	require.NoError(t, s.db.First(&order, 1).Error)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, models.StatusConfirmed, order.Status)
}
