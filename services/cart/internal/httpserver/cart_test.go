package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	middleware "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/vente_shop/pkg/server"
	"github.com/Skotchmaster/vente_shop/pkg/tokens"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/service"
)

var secret = []byte("test-jwt-secret")

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	e := server.NewEcho(slog.New(slog.NewJSONHandler(io.Discard, nil)), "cart-test")
	Register(e, &Deps{
		CartHandler: &CartHTTP{Svc: &service.CartService{Store: repo.NewMemoryStore()}},
		Auth:        middleware.NewAuthenticator(secret, nil),
	})
	return e
}

func bearer(t *testing.T, userID uint) string {
	t.Helper()
	tok, _, err := tokens.NewAccessToken(secret, userID, "someone", tokens.RoleUser, time.Now(), time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(e *echo.Echo, method, path, body, auth string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie {
			return ck
		}
	}
	t.Fatalf("no %s cookie in response", SessionCookie)
	return nil
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) service.Cart {
	t.Helper()
	var cart service.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	return cart
}

func TestAnonymousCart(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/cart/items", `{"type":"product","id":1,"quantity":2}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ck := sessionCookie(t, rec)
	assert.True(t, ck.HttpOnly)

	rec = do(e, http.MethodPost, "/cart/items", `{"type":"product","id":1,"quantity":1}`, "", ck)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodGet, "/cart", "", "", ck)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeCart(t, rec)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.TotalItems)

	rec = do(e, http.MethodGet, "/cart", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Lines, "a new session starts empty")
}

func TestAddItem_Statuses(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)

	tests := []struct {
		name string
		body string
		auth string
		want int
	}{
		{name: "anonymous rental", body: `{"type":"equipment","id":4,"quantity":1,"days":2}`, want: http.StatusUnauthorized},
		{name: "signed in rental", body: `{"type":"equipment","id":4,"quantity":1,"days":2}`, auth: bearer(t, 3), want: http.StatusCreated},
		{name: "unknown type", body: `{"type":"gift","id":4,"quantity":1}`, want: http.StatusBadRequest},
		{name: "zero quantity", body: `{"type":"product","id":4,"quantity":0}`, want: http.StatusBadRequest},
		{name: "days on product", body: `{"type":"product","id":4,"quantity":1,"days":3}`, want: http.StatusBadRequest},
		{name: "bad token", body: `{"type":"product","id":4,"quantity":1}`, auth: "Bearer nope", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := do(e, http.MethodPost, "/cart/items", tt.body, tt.auth)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestUpdateAndRemove(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)
	auth := bearer(t, 5)

	rec := do(e, http.MethodPut, "/cart/items/product/1", `{"quantity":3}`, auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/cart/items", `{"type":"product","id":1,"quantity":1}`, auth)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "signed in callers get no session")

	rec = do(e, http.MethodPut, "/cart/items/product/1", `{"quantity":3}`, auth)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPut, "/cart/items/product/abc", `{"quantity":3}`, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/cart/items/product/1", "", auth)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(e, http.MethodDelete, "/cart/items/product/1", "", auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/cart/items", `{"type":"product","id":2,"quantity":1}`, auth)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(e, http.MethodDelete, "/cart", "", auth)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodGet, "/cart", "", auth)
	assert.Empty(t, decodeCart(t, rec).Lines)
}

func TestMerge(t *testing.T) {
	t.Parallel()
	e := newTestServer(t)
	auth := bearer(t, 9)

	rec := do(e, http.MethodPost, "/cart/items", `{"type":"product","id":1,"quantity":2}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	ck := sessionCookie(t, rec)

	rec = do(e, http.MethodPost, "/cart/items", `{"type":"product","id":1,"quantity":1}`, auth)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPost, "/cart/merge", "", "", ck)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/cart/merge", "", auth, ck)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := decodeCart(t, rec)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)

	cleared := sessionCookie(t, rec)
	assert.Equal(t, -1, cleared.MaxAge)

	rec = do(e, http.MethodGet, "/cart", "", "", ck)
	assert.Empty(t, decodeCart(t, rec).Lines)
}
