package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// PostgreSQL states raised when two transactions race for the same rows.
// The service layer retries these, so they are logged as warnings.
var conflictStates = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// GormLogger routes GORM statements into zap with the request's context fields
type GormLogger struct {
	logger        *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	logNotFound   bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a statement is logged as slow.
// Zero disables slow statement logging.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slowThreshold = threshold }
}

// WithIgnoreRecordNotFoundError controls whether lookups that find nothing are logged
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) { l.logNotFound = !ignore }
}

// NewGormLogger creates a GORM logger writing to a "gorm" child of zapLogger
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{
		logger:        zapLogger.Named("gorm"),
		level:         level,
		slowThreshold: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode returns a copy at the given level
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.logger.Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.logger.Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.logger.Sugar().Errorf(msg, data...)
	}
}

// Trace logs one statement with the trace, request and store fields of ctx,
// so a ledger posting can be tied back to the order call that made it.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	fields := func(extra ...zap.Field) []zap.Field {
		sql, rows := fc()
		out := []zap.Field{
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Duration("elapsed", elapsed),
		}
		out = append(out, ContextFields(ctx)...)
		return append(out, extra...)
	}

	switch {
	case err != nil && errors.Is(err, gormlogger.ErrRecordNotFound):
		if l.logNotFound && l.level >= gormlogger.Error {
			l.logger.Error("SQL Error", fields(zap.Error(err))...)
		}
	case err != nil && isConflict(err):
		if l.level >= gormlogger.Warn {
			l.logger.Warn("SQL Conflict", fields(zap.Error(err))...)
		}
	case err != nil:
		if l.level >= gormlogger.Error {
			l.logger.Error("SQL Error", fields(zap.Error(err))...)
		}
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		if l.level >= gormlogger.Warn {
			l.logger.Warn("Slow SQL", fields(zap.Duration("threshold", l.slowThreshold))...)
		}
	case l.level >= gormlogger.Info:
		l.logger.Debug("SQL Query", fields()...)
	}
}

func isConflict(err error) bool {
	var coded interface{ SQLState() string }
	return errors.As(err, &coded) && conflictStates[coded.SQLState()]
}

// MapGormLogLevel maps the application log level onto GORM's levels
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
