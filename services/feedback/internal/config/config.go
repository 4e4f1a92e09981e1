package config

import "github.com/Skotchmaster/vente_shop/pkg/config"

type ServiceConfig struct {
	config.Config
	// MailSignature closes replies to contact messages.
	MailSignature string
}

func Load() (ServiceConfig, error) {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "feedback"
	}

	sc := ServiceConfig{
		Config:        cfg,
		MailSignature: config.EnvDefault("MAIL_SIGNATURE", "The Vente team"),
	}

	reqs := []config.Requirement{
		config.Need("DATABASE_URL", cfg.DatabaseURL),
		config.NeedBytes("JWT_SECRET", cfg.JWTSecret),
	}
	reqs = append(reqs, config.NeedUserResolution(cfg)...)
	return sc, config.Require(reqs...)
}
