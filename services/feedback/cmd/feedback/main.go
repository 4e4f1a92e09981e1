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
	"github.com/Skotchmaster/vente_shop/pkg/server"

	feedbackcfg "github.com/Skotchmaster/vente_shop/services/feedback/internal/config"
	"github.com/Skotchmaster/vente_shop/services/feedback/internal/httpserver"
	"github.com/Skotchmaster/vente_shop/services/feedback/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/feedback/internal/service"
)

func main() {
	if err := godotenv.Load("services/feedback/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := feedbackcfg.Load()
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

	svc := &service.FeedbackService{
		Repo:      gormRepo,
		Events:    publisher,
		Mailer:    mailer.New(cfg.Config, logger),
		Signature: cfg.MailSignature,
	}

	users := authclient.NewClient(cfg.AuthHTTPURL, cfg.InternalToken)

	e := server.NewEcho(logger, cfg.ServiceName)
	server.Health(e, server.DBCheck(db))
	httpserver.Register(e, &httpserver.Deps{
		FeedbackHandler: &httpserver.FeedbackHTTP{Svc: svc},
		Auth:            middleware.NewAuthenticator(cfg.JWTSecret, users),
	})

	if err := server.Run(e, cfg.Addr(), logger); err != nil {
		logger.Error("server_error", "error", err)
	}
}
