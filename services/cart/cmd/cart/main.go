package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/vente_shop/pkg/authclient"
	"github.com/Skotchmaster/vente_shop/pkg/logging"
	middleware "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/vente_shop/pkg/redisx"
	"github.com/Skotchmaster/vente_shop/pkg/server"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/config"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/httpserver"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/cart/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	var (
		store  repo.Store
		checks []server.Check
	)
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("cart_store_in_memory")
		store = repo.NewMemoryStore()
	default:
		rdb := redisx.New(cfg.RedisAddr, cfg.RedisPassword)
		defer rdb.Close()
		if err := redisx.Ping(context.Background(), rdb); err != nil {
			log.Fatalf("redis init error: %v", err)
		}
		store = repo.NewRedisStore(rdb, cfg.CartTTL)
		checks = append(checks, func(ctx context.Context) error { return redisx.Ping(ctx, rdb) })
	}

	cartHandler := &httpserver.CartHTTP{
		Svc: &service.CartService{Store: store},
	}

	users := authclient.NewClient(cfg.AuthHTTPURL, cfg.InternalToken)

	e := server.NewEcho(logger, cfg.ServiceName)
	server.Health(e, checks...)
	httpserver.Register(e, &httpserver.Deps{
		CartHandler: cartHandler,
		Auth:        middleware.NewAuthenticator(cfg.JWTSecret, users),
	})

	if err := server.Run(e, cfg.Addr(), logger); err != nil {
		logger.Error("server_error", "error", err)
	}
}
