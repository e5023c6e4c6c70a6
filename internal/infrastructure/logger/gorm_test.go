package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func observed(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func stmt(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func fieldMap(e observer.LoggedEntry) map[string]any {
	return e.ContextMap()
}

func TestGormLogger_Trace(t *testing.T) {
	const query = `SELECT * FROM "products" WHERE id = $1`
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		opts    []GormLoggerOption
		begin   time.Time
		err     error
		message string
		zap     zapcore.Level
	}{
		{"statement at info", gormlogger.Info, nil, time.Now(), nil, "SQL Query", zapcore.DebugLevel},
		{"statement below info", gormlogger.Warn, nil, time.Now(), nil, "", 0},
		{"failure", gormlogger.Error, nil, time.Now(), errors.New("deadlock detected"), "SQL Error", zapcore.ErrorLevel},
		{"record not found ignored", gormlogger.Info, nil, time.Now(), gormlogger.ErrRecordNotFound, "SQL Query", zapcore.DebugLevel},
		{"record not found logged", gormlogger.Error, []GormLoggerOption{WithIgnoreRecordNotFoundError(false)}, time.Now(), gormlogger.ErrRecordNotFound, "SQL Error", zapcore.ErrorLevel},
		{"slow", gormlogger.Warn, []GormLoggerOption{WithSlowThreshold(time.Millisecond)}, time.Now().Add(-time.Second), nil, "Slow query", zapcore.WarnLevel},
		{"slow reporting disabled", gormlogger.Warn, []GormLoggerOption{WithSlowThreshold(0)}, time.Now().Add(-time.Second), nil, "", 0},
		{"silent", gormlogger.Silent, nil, time.Now(), errors.New("boom"), "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gl, logs := observed(tt.level, tt.opts...)
			gl.Trace(context.Background(), tt.begin, stmt(query, 1), tt.err)

			if tt.message == "" {
				assert.Zero(t, logs.Len())
				return
			}
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.message, entry.Message)
			assert.Equal(t, tt.zap, entry.Level)
			assert.Equal(t, query, fieldMap(entry)["sql"])
			assert.Equal(t, int64(1), fieldMap(entry)["rows"])
		})
	}
}

func TestGormLogger_TraceFields(t *testing.T) {
	t.Run("request id from context", func(t *testing.T) {
		gl, logs := observed(gormlogger.Info)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-42")

		gl.Trace(ctx, time.Now(), stmt("SELECT 1", 1), nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-42", fieldMap(logs.All()[0])["request_id"])
	})

	t.Run("long statements are truncated", func(t *testing.T) {
		gl, logs := observed(gormlogger.Info, WithMaxSQLLength(16))
		long := "INSERT INTO products VALUES " + strings.Repeat("(?),", 100)

		gl.Trace(context.Background(), time.Now(), stmt(long, 100), nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, long[:16]+"...(truncated)", fieldMap(logs.All()[0])["sql"])
	})

	t.Run("truncation disabled", func(t *testing.T) {
		gl, logs := observed(gormlogger.Info, WithMaxSQLLength(0))
		long := strings.Repeat("x", 5000)

		gl.Trace(context.Background(), time.Now(), stmt(long, 0), nil)

		assert.Equal(t, long, fieldMap(logs.All()[0])["sql"])
	})
}

func TestGormLogger_Printf(t *testing.T) {
	gl, logs := observed(gormlogger.Warn)

	gl.Info(context.Background(), "ignored %d", 1)
	gl.Warn(context.Background(), "pool exhausted after %d attempts", 3)
	gl.Error(context.Background(), "connection lost")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "pool exhausted after 3 attempts", logs.All()[0].Message)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
	assert.Equal(t, "gorm", logs.All()[1].LoggerName)
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	gl, _ := observed(gormlogger.Info)

	quiet, ok := gl.LogMode(gormlogger.Silent).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Silent, quiet.level)
	assert.Equal(t, gormlogger.Info, gl.level)
}

func TestMapGormLogLevel(t *testing.T) {
	for in, want := range map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"error":   gormlogger.Error,
		"fatal":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Info,
		"debug":   gormlogger.Info,
		"verbose": gormlogger.Warn,
		"":        gormlogger.Warn,
	} {
		assert.Equal(t, want, MapGormLogLevel(in), in)
	}
}
