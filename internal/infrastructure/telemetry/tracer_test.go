package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// useSpanRecorder installs a recording tracer provider for the test
func useSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestDisabledProviders(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	cfg := Config{Enabled: false, CollectorEndpoint: "localhost:4317", ServiceName: "ecomstore-test"}

	t.Run("tracer", func(t *testing.T) {
		tp, err := NewTracerProvider(ctx, cfg, logger)
		require.NoError(t, err)
		assert.False(t, tp.IsEnabled())
		assert.NotNil(t, tp.Tracer("test"))
		tp.EnableSpanProfiles()
		assert.False(t, tp.SpanProfilesEnabled())
		assert.NoError(t, tp.ForceFlush(ctx))
		assert.NoError(t, tp.Shutdown(ctx))
	})

	t.Run("meter", func(t *testing.T) {
		mp, err := NewMeterProvider(ctx, cfg, true, 0, logger)
		require.NoError(t, err)
		assert.False(t, mp.IsEnabled())
		assert.NotNil(t, mp.Meter("test"))
		assert.NoError(t, mp.Shutdown(ctx))
	})

	t.Run("metrics switch alone does not enable export", func(t *testing.T) {
		enabled := cfg
		enabled.Enabled = true
		mp, err := NewMeterProvider(ctx, enabled, false, 0, logger)
		require.NoError(t, err)
		assert.False(t, mp.IsEnabled())
	})

	t.Run("logs", func(t *testing.T) {
		lp, err := NewLoggerProvider(ctx, cfg, true, logger)
		require.NoError(t, err)
		assert.False(t, lp.IsEnabled())
		assert.False(t, lp.Core(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
		assert.NoError(t, lp.Shutdown(ctx))
	})

	t.Run("profiler", func(t *testing.T) {
		p, err := NewProfiler(ProfilerConfig{}, logger)
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})
}

func TestNewProfiler_Validation(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "ecomstore"}, zap.NewNop())
	assert.ErrorContains(t, err, "pyroscope address is required")

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, zap.NewNop())
	assert.ErrorContains(t, err, "application name is required")
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, newSampler(tt.ratio).Description())
	}
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestLevelFilterCore(t *testing.T) {
	core := &levelFilterCore{Core: zapcore.NewNopCore(), minLevel: zapcore.WarnLevel}
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	// the nop core rejects everything, so the filter never widens it
	assert.False(t, core.Enabled(zapcore.ErrorLevel))

	with := core.With([]zapcore.Field{zap.String("k", "v")})
	assert.IsType(t, &levelFilterCore{}, with)
}

func TestStartServiceSpan(t *testing.T) {
	recorder := useSpanRecorder(t)
	ctx := context.Background()

	ctx, span := StartServiceSpan(ctx, "order", "create",
		AttrOrderNumber, "ORD-1",
		AttrItemCount, 3,
		42, "ignored non-string key",
	)
	assert.NotEmpty(t, TraceID(ctx))
	SetAttributes(span, AttrPaymentMethod, "paypal")
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "order.create", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "boom", got.Status().Description)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "ORD-1", attrs[AttrOrderNumber].AsString())
	assert.Equal(t, int64(3), attrs[AttrItemCount].AsInt64())
	assert.Equal(t, "paypal", attrs[AttrPaymentMethod].AsString())
	assert.Len(t, attrs, 3)
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}

func TestToAttribute(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  attribute.Value
	}{
		{"string", "a", attribute.StringValue("a")},
		{"int", 1, attribute.IntValue(1)},
		{"int64", int64(2), attribute.Int64Value(2)},
		{"float", 1.5, attribute.Float64Value(1.5)},
		{"bool", true, attribute.BoolValue(true)},
		{"stringer", fmtStringer("s"), attribute.StringValue("s")},
		{"fallback", []byte("x"), attribute.StringValue("[120]")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toAttribute("k", tt.value).Value)
		})
	}
}

type fmtStringer string

func (s fmtStringer) String() string { return string(s) }
