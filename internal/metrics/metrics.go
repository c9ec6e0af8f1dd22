// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/redmonkez12/shop-api/internal/logging"
)

// Collector records shop events. It satisfies the Metrics interfaces of the order,
// verification and ratelimit packages.
type Collector struct {
	ordersPlaced   prometheus.Counter
	orderLines     prometheus.Counter
	ordersRejected prometheus.Counter
	lowStock       *prometheus.CounterVec
	codesIssued    prometheus.Counter
	codesChecked   *prometheus.CounterVec
	rateLimited    *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_placed_total",
			Help: "Orders saved with stock decremented",
		}),
		orderLines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_order_lines_total",
			Help: "Line items across placed orders",
		}),
		ordersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_rejected_total",
			Help: "Orders refused for insufficient stock",
		}),
		lowStock: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_low_stock_total",
			Help: "Sizes left with two units or fewer after an order",
		}, []string{"size"}),
		codesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_verification_codes_issued_total",
			Help: "Verification codes mailed and stored",
		}),
		codesChecked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_verification_checks_total",
			Help: "Verification attempts by result",
		}, []string{"result"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_rate_limited_total",
			Help: "Requests rejected by a rate limit",
		}, []string{"limit"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_http_requests_total",
			Help: "HTTP responses by route and status code",
		}, []string{"route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shop_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.ordersPlaced,
		c.orderLines,
		c.ordersRejected,
		c.lowStock,
		c.codesIssued,
		c.codesChecked,
		c.rateLimited,
		c.httpRequests,
		c.httpDuration,
	)

	return c
}

func (c *Collector) OrderPlaced(lines int) {
	c.ordersPlaced.Inc()
	c.orderLines.Add(float64(lines))
}

func (c *Collector) OrderRejected() {
	c.ordersRejected.Inc()
}

// LowStock is labelled by size only; product ids would make the series unbounded
func (c *Collector) LowStock(productID, size string) {
	c.lowStock.WithLabelValues(size).Inc()
}

func (c *Collector) CodeIssued() {
	c.codesIssued.Inc()
}

func (c *Collector) CodeChecked(result string) {
	c.codesChecked.WithLabelValues(result).Inc()
}

func (c *Collector) RateLimited(name string) {
	c.rateLimited.WithLabelValues(name).Inc()
}

// Middleware records status and latency per chi route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := logging.NewStatusRecorder(w)

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		c.httpRequests.WithLabelValues(route, strconv.Itoa(wrapped.Status())).Inc()
		c.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the HTTP handler for Prometheus scrapes
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
