package config

import (
	"os"
	"strings"
	"time"

	"github.com/Skotchmaster/vente_shop/pkg/config"
	"github.com/Skotchmaster/vente_shop/services/order/internal/payment"
)

type ServiceConfig struct {
	config.Config
	Stripe   payment.StripeConfig
	Currency string
	// WebhookDedupTTL is how long processed payment event ids are remembered.
	WebhookDedupTTL time.Duration
}

func Load() (ServiceConfig, error) {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "order"
	}

	sc := ServiceConfig{
		Config: cfg,
		Stripe: payment.StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			APIURL:        os.Getenv("STRIPE_API_URL"),
		},
		Currency:        strings.ToLower(config.EnvDefault("PAYMENT_CURRENCY", "eur")),
		WebhookDedupTTL: config.EnvDurationDefault("WEBHOOK_DEDUP_TTL", 72*time.Hour),
	}

	reqs := []config.Requirement{
		config.Need("DATABASE_URL", cfg.DatabaseURL),
		config.NeedBytes("JWT_SECRET", cfg.JWTSecret),
		config.Need("STRIPE_SECRET_KEY", sc.Stripe.SecretKey),
		config.Need("STRIPE_WEBHOOK_SECRET", sc.Stripe.WebhookSecret),
	}
	reqs = append(reqs, config.NeedUserResolution(cfg)...)
	return sc, config.Require(reqs...)
}
