package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/vente_shop/pkg/db"
	"github.com/Skotchmaster/vente_shop/pkg/metrics"
	loggingmw "github.com/Skotchmaster/vente_shop/pkg/middleware/logging"
	"github.com/Skotchmaster/vente_shop/pkg/validate"
)

// NewEcho returns an echo instance with the middleware chain shared by every service.
func NewEcho(logger *slog.Logger, service string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware(service))
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("2M"))

	e.GET("/metrics", metrics.Handler())
	return e
}

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

func DBCheck(gdb *gorm.DB) Check {
	return func(ctx context.Context) error { return db.Ping(ctx, gdb) }
}

// Health registers liveness and readiness probes. Readiness runs every check.
func Health(e *echo.Echo, checks ...Check) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		for _, check := range checks {
			if err := check(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "error": err.Error()})
			}
		}
		return c.NoContent(http.StatusOK)
	})
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func Run(e *echo.Echo, addr string, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}
