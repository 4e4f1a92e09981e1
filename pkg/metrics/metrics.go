package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vente_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "method", "route", "status"})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vente_logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	TokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vente_token_refresh_total",
		Help: "Refresh token exchanges by result.",
	}, []string{"result"})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vente_orders_created_total",
		Help: "Total number of orders successfully created.",
	})

	StockConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vente_stock_conflicts_total",
		Help: "Order lines rejected because stock or availability ran out.",
	})

	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vente_order_transitions_total",
		Help: "Order status transitions by target status and result.",
	}, []string{"to", "result"})

	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vente_payment_webhook_events_total",
		Help: "Payment webhook deliveries by event type and result.",
	}, []string{"type", "result"})

	FeedbackSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vente_feedback_submitted_total",
		Help: "Contact messages and reviews received.",
	}, []string{"kind"})

	SideEffectErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vente_side_effect_errors_total",
		Help: "Best-effort side effects that failed (email, events, indexing).",
	}, []string{"kind"})
)

func Middleware(service string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			HTTPRequestDuration.
				WithLabelValues(service, c.Request().Method, c.Path(), strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
