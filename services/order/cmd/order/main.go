package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/vente_shop/pkg/authclient"
	pkgdb "github.com/Skotchmaster/vente_shop/pkg/db"
	"github.com/Skotchmaster/vente_shop/pkg/events"
	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/mailer"
	middleware "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/vente_shop/pkg/redisx"
	"github.com/Skotchmaster/vente_shop/pkg/server"

	ordercfg "github.com/Skotchmaster/vente_shop/services/order/internal/config"
	"github.com/Skotchmaster/vente_shop/services/order/internal/httpserver"
	"github.com/Skotchmaster/vente_shop/services/order/internal/payment"
	"github.com/Skotchmaster/vente_shop/services/order/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/order/internal/service"
)

func main() {
	if err := godotenv.Load("services/order/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := ordercfg.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer pkgdb.Close(db)

	gormRepo := &repo.GormRepo{DB: db}
	if err := gormRepo.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.ServiceName)
	if c, ok := publisher.(io.Closer); ok {
		defer c.Close()
	}

	users := authclient.NewClient(cfg.AuthHTTPURL, cfg.InternalToken)
	svc := &service.OrderService{
		Repo:        gormRepo,
		Users:       users,
		Payments:    payment.NewStripe(cfg.Stripe),
		Events:      publisher,
		Mailer:      mailer.New(cfg.Config, logger),
		FrontendURL: cfg.FrontendURL,
		Currency:    cfg.Currency,
	}

	rdb := redisx.New(cfg.RedisAddr, cfg.RedisPassword)
	defer rdb.Close()
	if err := redisx.Ping(context.Background(), rdb); err != nil {
		logger.Warn("webhook_dedup_disabled", "error", err)
	} else {
		svc.Dedup = repo.NewWebhookDedup(rdb, cfg.WebhookDedupTTL)
	}


	e := server.NewEcho(logger, cfg.ServiceName)
	server.Health(e, server.DBCheck(db))
	httpserver.Register(e, &httpserver.Deps{
		OrderHandler: &httpserver.OrderHTTP{Svc: svc},
		Auth:         middleware.NewAuthenticator(cfg.JWTSecret, users),
	})

	if err := server.Run(e, cfg.Addr(), logger); err != nil {
		logger.Error("server_error", "error", err)
	}
}
