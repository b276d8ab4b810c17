// Package metrics exposes Prometheus collectors for the order lifecycle and
// the HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "canteen",
			Name:      "orders_created_total",
			Help:      "Orders placed, by payment method.",
		},
		[]string{"payment_method"},
	)

	// OrderTransitions counts status change attempts; result is "ok" or the
	// rejection reason.
	OrderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "canteen",
			Name:      "order_transitions_total",
			Help:      "Order status transition attempts.",
		},
		[]string{"to", "result"},
	)

	TotalMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "canteen",
		Name:      "order_total_mismatches_total",
		Help:      "Orders whose client total differs from the recomputed total.",
	})

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "canteen",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "canteen",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Middleware records request count and latency per matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		labels := []string{c.Method(), c.Route().Path, strconv.Itoa(status)}
		RequestTotal.WithLabelValues(labels...).Inc()
		RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
