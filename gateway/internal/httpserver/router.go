package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vente_shop/gateway/internal/config"
	"github.com/Skotchmaster/vente_shop/gateway/internal/middleware"
	"github.com/Skotchmaster/vente_shop/pkg/server"
	"github.com/Skotchmaster/vente_shop/pkg/tokens"
)

type Deps struct {
	Upstreams    config.Upstreams
	JWTSecret    []byte
	ProxyTimeout time.Duration

	CSRF *middleware.CSRFConfig
}

// route sends every path under prefix to one upstream.
type route struct {
	prefix   string
	upstream string
	target   string
	admin    bool
}

func routes(u config.Upstreams) []route {
	return []route{
		{prefix: "/auth", upstream: "auth", target: u.Auth},
		{prefix: "/catalog", upstream: "catalog", target: u.Catalog},
		{prefix: "/cart", upstream: "cart", target: u.Cart},
		{prefix: "/orders", upstream: "order", target: u.Order},
		{prefix: "/payments", upstream: "order", target: u.Order},
		{prefix: "/admin/orders", upstream: "order", target: u.Order, admin: true},
		{prefix: "/feedback", upstream: "feedback", target: u.Feedback},
		{prefix: "/admin/messages", upstream: "feedback", target: u.Feedback, admin: true},
		{prefix: "/admin/reviews", upstream: "feedback", target: u.Feedback, admin: true},
		{prefix: "/admin/dashboard", upstream: "feedback", target: u.Feedback, admin: true},
	}
}

// CSRFSkipPaths are posted without a prior page load: credentials exchange and
// the payment provider callback.
var CSRFSkipPaths = []string{
	APIPrefix + "/auth/login",
	APIPrefix + "/auth/register",
	APIPrefix + "/auth/refresh",
	APIPrefix + "/auth/password-reset",
	APIPrefix + "/auth/password-reset/confirm",
	APIPrefix + "/payments/webhook",
}

func Register(e *echo.Echo, d *Deps) error {
	transport := newTransport(d.ProxyTimeout)
	server.Health(e, upstreamChecks(d.Upstreams, transport)...)

	api := e.Group(APIPrefix)
	if d.CSRF != nil {
		api.Use(middleware.CSRF(*d.CSRF))
	}
	admin := middleware.RequireRole(d.JWTSecret, tokens.RoleAdmin)

	proxies := map[string]echo.HandlerFunc{}
	for _, r := range routes(d.Upstreams) {
		h, ok := proxies[r.upstream]
		if !ok {
			var err error
			if h, err = newProxy(r.upstream, r.target, transport); err != nil {
				return fmt.Errorf("%s upstream: %w", r.upstream, err)
			}
			proxies[r.upstream] = h
		}

		var mw []echo.MiddlewareFunc
		if r.admin {
			mw = append(mw, admin)
		}
		api.Any(r.prefix, h, mw...)
		api.Any(r.prefix+"/*", h, mw...)
	}
	return nil
}

// upstreamChecks makes readiness depend on every service answering its liveness probe.
func upstreamChecks(u config.Upstreams, transport http.RoundTripper) []server.Check {
	client := &http.Client{Transport: transport, Timeout: 2 * time.Second}
	targets := []struct{ name, url string }{
		{"auth", u.Auth},
		{"catalog", u.Catalog},
		{"cart", u.Cart},
		{"order", u.Order},
		{"feedback", u.Feedback},
	}

	checks := make([]server.Check, 0, len(targets))
	for _, t := range targets {
		checks = append(checks, func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url+"/health/live", nil)
			if err != nil {
				return fmt.Errorf("%s: %w", t.name, err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("%s: %w", t.name, err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("%s: status %d", t.name, resp.StatusCode)
			}
			return nil
		})
	}
	return checks
}
