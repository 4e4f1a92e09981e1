package config

import (
	"fmt"
	"time"

	"github.com/Skotchmaster/vente_shop/pkg/config"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/repo"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type ServiceConfig struct {
	config.Config
	CartTTL time.Duration
	// Store selects the cart backend: "redis" or "memory" for a single instance.
	Store string
}

func Load() (ServiceConfig, error) {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "cart"
	}

	sc := ServiceConfig{
		Config:  cfg,
		CartTTL: config.EnvDurationDefault("CART_TTL", repo.DefaultTTL),
		Store:   config.EnvDefault("CART_STORE", StoreRedis),
	}

	reqs := []config.Requirement{config.NeedBytes("JWT_SECRET", cfg.JWTSecret)}
	reqs = append(reqs, config.NeedUserResolution(cfg)...)
	switch sc.Store {
	case StoreRedis:
		reqs = append(reqs, config.Need("REDIS_ADDR", cfg.RedisAddr))
	case StoreMemory:
	default:
		return sc, fmt.Errorf("CART_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, sc.Store)
	}
	return sc, config.Require(reqs...)
}
