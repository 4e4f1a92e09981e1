package main

import (
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	gatewaycfg "github.com/Skotchmaster/vente_shop/gateway/internal/config"
	"github.com/Skotchmaster/vente_shop/gateway/internal/httpserver"
	"github.com/Skotchmaster/vente_shop/gateway/internal/middleware"
	"github.com/Skotchmaster/vente_shop/pkg/config"
	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/server"
)

func main() {
	if err := godotenv.Load("gateway/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := gatewaycfg.Load()
	config.MustRequire(cfg.Requirements()...)

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	e := server.NewEcho(logger, cfg.ServiceName)
	e.Use(middleware.Common(cfg.RateLimit, cfg.RateBurst)...)

	deps := &httpserver.Deps{
		Upstreams:    cfg.Upstreams,
		JWTSecret:    cfg.JWTSecret,
		ProxyTimeout: cfg.ProxyTimeout,
	}
	if cfg.CSRF {
		csrf := middleware.DefaultCSRFConfig()
		csrf.Secure = cfg.CookieSecure
		csrf.AllowedOrigins = []string{cfg.FrontendURL}
		csrf.SkipPaths = httpserver.CSRFSkipPaths
		deps.CSRF = &csrf
	}
	if err := httpserver.Register(e, deps); err != nil {
		log.Fatal(err)
	}

	if err := server.Run(e, cfg.Addr(), logger); err != nil {
		logger.Error("server_error", "error", err)
	}
}
