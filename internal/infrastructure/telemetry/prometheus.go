package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsNamespace prefixes every Prometheus metric
const MetricsNamespace = "ecomstore"

// HTTPDurationBuckets are the request latency buckets in seconds
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Prometheus holds the scrape registry behind GET /metrics. It records HTTP
// traffic and order activity and is safe for concurrent use.
type Prometheus struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	ordersPlaced  *prometheus.CounterVec
	orderItems    prometheus.Counter
	revenue       *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	cancellations *prometheus.CounterVec
}

// NewPrometheus creates a registry with the Go runtime and process collectors
// plus the application metrics.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   HTTPDurationBuckets,
		}, []string{"method", "route"}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "orders_placed_total",
			Help:      "Orders placed by payment method.",
		}, []string{"payment_method"}),
		orderItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "order_items_total",
			Help:      "Units sold across all placed orders.",
		}),
		revenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "revenue_total",
			Help:      "Order totals at placement, by payment method.",
		}, []string{"payment_method"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "order_status_changes_total",
			Help:      "Order status transitions.",
		}, []string{"from", "to"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "orders_cancelled_total",
			Help:      "Cancelled orders by the status they were cancelled from.",
		}, []string{"from"}),
	}
	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.httpRequests,
		p.httpDuration,
		p.ordersPlaced,
		p.orderItems,
		p.revenue,
		p.statusChanges,
		p.cancellations,
	)
	return p
}

// ObserveHTTPRequest records one finished request. route is the matched route
// template so that ids do not explode the label set.
func (p *Prometheus) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordOrderPlaced counts a new order, its units and its total
func (p *Prometheus) RecordOrderPlaced(paymentMethod string, itemCount int, total float64) {
	p.ordersPlaced.WithLabelValues(paymentMethod).Inc()
	p.orderItems.Add(float64(itemCount))
	if total > 0 {
		p.revenue.WithLabelValues(paymentMethod).Add(total)
	}
}

// RecordOrderStatusChanged counts a status transition
func (p *Prometheus) RecordOrderStatusChanged(from, to string) {
	p.statusChanges.WithLabelValues(from, to).Inc()
}

// RecordOrderCancelled counts a cancellation
func (p *Prometheus) RecordOrderCancelled(from string) {
	p.cancellations.WithLabelValues(from).Inc()
}

// Handler serves the registry in the Prometheus text format
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry exposes the underlying registry
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}
