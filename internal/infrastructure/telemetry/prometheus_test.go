package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_HTTP(t *testing.T) {
	p := NewPrometheus()

	p.ObserveHTTPRequest(http.MethodGet, "/api/products/:id", 200, 20*time.Millisecond)
	p.ObserveHTTPRequest(http.MethodGet, "/api/products/:id", 200, 30*time.Millisecond)
	p.ObserveHTTPRequest(http.MethodGet, "/api/products/:id", 404, time.Millisecond)
	p.ObserveHTTPRequest(http.MethodGet, "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.httpRequests.WithLabelValues("GET", "/api/products/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.httpRequests.WithLabelValues("GET", "/api/products/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.httpDuration))
}

func TestPrometheus_Orders(t *testing.T) {
	p := NewPrometheus()

	p.RecordOrderPlaced("credit_card", 2, 44.98)
	p.RecordOrderPlaced("credit_card", 1, 10)
	p.RecordOrderPlaced("cash_on_delivery", 3, 0)
	p.RecordOrderStatusChanged("pending", "confirmed")
	p.RecordOrderStatusChanged("pending", "cancelled")
	p.RecordOrderCancelled("pending")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.ordersPlaced.WithLabelValues("credit_card")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.ordersPlaced.WithLabelValues("cash_on_delivery")))
	assert.Equal(t, 6.0, testutil.ToFloat64(p.orderItems))
	assert.InDelta(t, 54.98, testutil.ToFloat64(p.revenue.WithLabelValues("credit_card")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(p.revenue), "zero totals add no series")
	assert.Equal(t, 1.0, testutil.ToFloat64(p.statusChanges.WithLabelValues("pending", "confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.cancellations.WithLabelValues("pending")))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.RecordOrderPlaced("paypal", 1, 9.99)

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, `ecomstore_orders_placed_total{payment_method="paypal"} 1`)
	assert.Contains(t, text, "ecomstore_revenue_total")
	assert.Contains(t, text, "go_goroutines")
}
