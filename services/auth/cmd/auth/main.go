package main

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/vente_shop/pkg/db"
	"github.com/Skotchmaster/vente_shop/pkg/events"
	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/mailer"
	mw "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/vente_shop/pkg/server"
	"github.com/Skotchmaster/vente_shop/services/auth/internal/config"
	"github.com/Skotchmaster/vente_shop/services/auth/internal/httpserver"
	"github.com/Skotchmaster/vente_shop/services/auth/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/auth/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close(gdb)

	gormRepo := &repo.GormRepo{DB: gdb}
	if err := gormRepo.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.ServiceName)
	if c, ok := publisher.(io.Closer); ok {
		defer c.Close()
	}

	issuer := service.NewTokenIssuer(gormRepo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	svc := &service.AuthService{
		Repo:        gormRepo,
		Issuer:      issuer,
		Mailer:      mailer.New(cfg.Config, logger),
		Events:      publisher,
		FrontendURL: cfg.FrontendURL,
	}

	e := server.NewEcho(logger, cfg.ServiceName)
	server.Health(e, server.DBCheck(gdb))
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc, InternalToken: cfg.InternalToken},
		Auth:        mw.NewAuthenticator(cfg.JWTSecret, gormRepo),
	})

	if err := server.Run(e, cfg.Addr(), logger); err != nil {
		logger.Error("server_error", "error", err)
	}
}
