package config

import (
	"github.com/Skotchmaster/vente_shop/pkg/config"
)

type ServiceConfig struct {
	config.Config
}

func Load() (ServiceConfig, error) {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "auth"
	}

	err := config.Require(
		config.Need("DATABASE_URL", cfg.DatabaseURL),
		config.NeedBytes("JWT_SECRET", cfg.JWTSecret),
		config.Need("INTERNAL_TOKEN", cfg.InternalToken),
	)
	return ServiceConfig{Config: cfg}, err
}
