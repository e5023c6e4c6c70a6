package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

const (
	defaultSlowQuery   = 200 * time.Millisecond
	defaultMaxSQLBytes = 2048
)

// GormLogger routes GORM statements into zap. Statements are logged at debug,
// slow ones at warn and failures at error.
type GormLogger struct {
	log         *zap.Logger
	level       gormlogger.LogLevel
	slowQuery   time.Duration
	maxSQLBytes int
	logNotFound bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a statement is reported as slow.
// Zero disables slow query reporting.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slowQuery = d }
}

// WithIgnoreRecordNotFoundError controls whether gorm.ErrRecordNotFound is logged.
// Lookups that miss are routine in the storefront, so they are ignored by default.
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) { l.logNotFound = !ignore }
}

// WithMaxSQLLength truncates logged statements to n bytes; n <= 0 keeps them whole
func WithMaxSQLLength(n int) GormLoggerOption {
	return func(l *GormLogger) { l.maxSQLBytes = n }
}

// NewGormLogger returns a GORM logger writing to log under the "gorm" name
func NewGormLogger(log *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{
		log:         log.Named("gorm"),
		level:       level,
		slowQuery:   defaultSlowQuery,
		maxSQLBytes: defaultMaxSQLBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...any) {
	l.printf(gormlogger.Info, msg, args)
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	l.printf(gormlogger.Warn, msg, args)
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...any) {
	l.printf(gormlogger.Error, msg, args)
}

func (l *GormLogger) printf(level gormlogger.LogLevel, msg string, args []any) {
	if l.level < level {
		return
	}
	s := l.log.Sugar()
	switch level {
	case gormlogger.Error:
		s.Errorf(msg, args...)
	case gormlogger.Warn:
		s.Warnf(msg, args...)
	default:
		s.Infof(msg, args...)
	}
}

// Trace is called by GORM after every statement
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !(errors.Is(err, gormlogger.ErrRecordNotFound) && !l.logNotFound)
	slow := l.slowQuery > 0 && elapsed > l.slowQuery

	switch {
	case failed && l.level >= gormlogger.Error:
		l.log.Error("SQL Error", append(l.fields(ctx, elapsed, fc), zap.Error(err))...)
	case slow && l.level >= gormlogger.Warn:
		l.log.Warn("Slow query", append(l.fields(ctx, elapsed, fc), zap.Duration("threshold", l.slowQuery))...)
	case l.level >= gormlogger.Info:
		l.log.Debug("SQL Query", l.fields(ctx, elapsed, fc)...)
	}
}

func (l *GormLogger) fields(ctx context.Context, elapsed time.Duration, fc func() (string, int64)) []zap.Field {
	sql, rows := fc()
	if l.maxSQLBytes > 0 && len(sql) > l.maxSQLBytes {
		sql = sql[:l.maxSQLBytes] + "...(truncated)"
	}

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
		zap.String("source", utils.FileWithLineNum()),
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetTraceID(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}
	return fields
}

// MapGormLogLevel converts an application log level name to a GORM level.
// Unknown names map to Warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error", "fatal":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
