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
	middleware "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/vente_shop/pkg/server"

	catalogcfg "github.com/Skotchmaster/vente_shop/services/catalog/internal/config"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/httpserver"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/search"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/service"
)

func main() {
	if err := godotenv.Load("services/catalog/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := catalogcfg.Load()
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

	svc := &service.CatalogService{Repo: gormRepo, Events: publisher}
	if cfg.SearchEnabled() {
		svc.Index = newIndex(cfg.Search, logger)
	}
	if svc.Index != nil {
		go reindex(svc, logger)
	}

	users := authclient.NewClient(cfg.AuthHTTPURL, cfg.InternalToken)

	e := server.NewEcho(logger, cfg.ServiceName)
	server.Health(e, server.DBCheck(db))
	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: svc},
		Auth:           middleware.NewAuthenticator(cfg.JWTSecret, users),
	})

	if err := server.Run(e, cfg.Addr(), logger); err != nil {
		logger.Error("server_error", "error", err)
	}
}

// newIndex returns nil when the cluster cannot be reached; the service then searches the database.
func newIndex(cfg search.Config, logger *slog.Logger) service.SearchIndex {
	client, err := search.NewClient(cfg)
	if err != nil {
		logger.Warn("search_disabled", "error", err)
		return nil
	}
	idx := search.New(client, cfg.Index)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := idx.Ping(ctx); err != nil {
		logger.Warn("search_disabled", "error", err)
		return nil
	}
	return idx
}

func reindex(svc *service.CatalogService, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	n, err := svc.Reindex(logging.IntoContext(ctx, logger))
	if err != nil {
		logger.Warn("reindex_failed", "indexed", n, "error", err)
		return
	}
	logger.Info("reindex_done", "indexed", n)
}
