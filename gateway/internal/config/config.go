package config

import (
	"os"
	"strings"
	"time"

	"github.com/Skotchmaster/vente_shop/pkg/config"
)

type Upstreams struct {
	Auth     string
	Catalog  string
	Cart     string
	Order    string
	Feedback string
}

type Config struct {
	config.Config
	Upstreams Upstreams

	// RateLimit is the sustained requests per second allowed per client IP.
	RateLimit int
	RateBurst int

	CSRF         bool
	CookieSecure bool
	ProxyTimeout time.Duration
}

func Load() Config {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "gateway"
	}

	return Config{
		Config: cfg,
		Upstreams: Upstreams{
			Auth:     strings.TrimRight(cfg.AuthHTTPURL, "/"),
			Catalog:  strings.TrimRight(os.Getenv("CATALOG_URL"), "/"),
			Cart:     strings.TrimRight(os.Getenv("CART_URL"), "/"),
			Order:    strings.TrimRight(os.Getenv("ORDER_URL"), "/"),
			Feedback: strings.TrimRight(os.Getenv("FEEDBACK_URL"), "/"),
		},
		RateLimit:    config.EnvIntDefault("GATEWAY_RATE_LIMIT", 20),
		RateBurst:    config.EnvIntDefault("GATEWAY_RATE_BURST", 40),
		CSRF:         config.EnvBoolDefault("GATEWAY_CSRF", true),
		CookieSecure: config.EnvBoolDefault("COOKIE_SECURE", false),
		ProxyTimeout: config.EnvDurationDefault("GATEWAY_PROXY_TIMEOUT", 30*time.Second),
	}
}

// Requirements lists every upstream and the token secret used for the admin check.
func (c Config) Requirements() []config.Requirement {
	return []config.Requirement{
		config.Need("AUTH_URL", c.Upstreams.Auth),
		config.Need("CATALOG_URL", c.Upstreams.Catalog),
		config.Need("CART_URL", c.Upstreams.Cart),
		config.Need("ORDER_URL", c.Upstreams.Order),
		config.Need("FEEDBACK_URL", c.Upstreams.Feedback),
		config.NeedBytes("JWT_SECRET", c.JWTSecret),
	}
}
