package config

import (
	"os"

	"github.com/Skotchmaster/vente_shop/pkg/config"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/search"
)

type ServiceConfig struct {
	config.Config
	Search search.Config
}

// SearchEnabled is false when ES_URL is unset; search then runs on the database only.
func (c ServiceConfig) SearchEnabled() bool {
	return c.Search.URL != ""
}

func Load() (ServiceConfig, error) {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "catalog"
	}

	sc := ServiceConfig{
		Config: cfg,
		Search: search.Config{
			URL:      os.Getenv("ES_URL"),
			Username: os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    config.EnvDefault("ES_INDEX", search.DefaultIndex),
		},
	}

	reqs := []config.Requirement{
		config.Need("DATABASE_URL", cfg.DatabaseURL),
		config.NeedBytes("JWT_SECRET", cfg.JWTSecret),
	}
	reqs = append(reqs, config.NeedUserResolution(cfg)...)
	return sc, config.Require(reqs...)
}
