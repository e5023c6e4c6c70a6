package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ecomstore/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	prom := telemetry.NewPrometheus()

	router := gin.New()
	router.Use(Metrics(prom, "/metrics"))
	router.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(prom.Handler()))

	for _, path := range []string{"/products/1", "/products/2", "/missing", "/metrics"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	expected := `
# HELP ecomstore_http_requests_total HTTP requests by route, method and status code.
# TYPE ecomstore_http_requests_total counter
ecomstore_http_requests_total{method="GET",route="/products/:id",status="200"} 2
ecomstore_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(prom.Registry(), strings.NewReader(expected), "ecomstore_http_requests_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(prom.Registry(), "ecomstore_http_request_duration_seconds"))
}
