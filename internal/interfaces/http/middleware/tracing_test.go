package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func tracedRouter(cfg TracingConfig, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(cfg), SpanEnricher())
	router.Use(extra...)
	router.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusInternalServerError)
	})
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func spanNamed(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func serve(router *gin.Engine, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter(TracingConfig{Enabled: false, ServiceName: "test"})

	assert.Equal(t, http.StatusOK, serve(router, "/products/1").Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanAttributes(t *testing.T) {
	sr := setupTestTracer(t)
	authenticate := func(c *gin.Context) {
		c.Set(ContextKeyUserID, "user-123")
		c.Next()
	}
	router := tracedRouter(TracingConfig{Enabled: true, ServiceName: "test"}, authenticate)

	serve(router, "/products/42", RequestIDHeader, "req-1")

	span := spanNamed(t, sr, "GET /products/:id")
	requestID, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-1", requestID.AsString())
	userID, ok := spanAttr(span, "user_id")
	require.True(t, ok)
	assert.Equal(t, "user-123", userID.AsString())
	assert.Equal(t, codes.Unset, span.Status().Code)
}

func TestTracing_ErrorStatus(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter(TracingConfig{Enabled: true, ServiceName: "test"})

	t.Run("server error marks the span", func(t *testing.T) {
		serve(router, "/boom")
		span := spanNamed(t, sr, "GET /boom")
		assert.Equal(t, codes.Error, span.Status().Code)
		status, ok := spanAttr(span, "http.status_code")
		require.True(t, ok)
		assert.Equal(t, int64(http.StatusInternalServerError), status.AsInt64())
	})

	t.Run("client error only records the status", func(t *testing.T) {
		serve(router, "/missing")
		span := spanNamed(t, sr, "GET /missing")
		assert.NotEqual(t, codes.Error, span.Status().Code)
		status, ok := spanAttr(span, "http.status_code")
		require.True(t, ok)
		assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())
	})
}

func TestTracing_Filter(t *testing.T) {
	sr := setupTestTracer(t)
	cfg := DefaultTracingConfig()
	cfg.Filter = func(r *http.Request) bool { return r.URL.Path != "/metrics" }
	router := tracedRouter(cfg)

	serve(router, "/metrics")
	serve(router, "/products/1")

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, "GET /products/:id", sr.Ended()[0].Name())
}

func TestSpanEnricher_WithoutSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanEnricher())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	assert.Equal(t, http.StatusInternalServerError, serve(router, "/test").Code)
}
