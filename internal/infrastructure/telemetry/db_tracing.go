package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type queryStartKey struct{}

// registerAround hooks before and after into every gorm callback chain
func registerAround(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register(prefix+":before_create", before),
		cb.Query().Before("gorm:query").Register(prefix+":before_query", before),
		cb.Update().Before("gorm:update").Register(prefix+":before_update", before),
		cb.Delete().Before("gorm:delete").Register(prefix+":before_delete", before),
		cb.Row().Before("gorm:row").Register(prefix+":before_row", before),
		cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", before),
		cb.Create().After("gorm:create").Register(prefix+":after_create", after),
		cb.Query().After("gorm:query").Register(prefix+":after_query", after),
		cb.Update().After("gorm:update").Register(prefix+":after_update", after),
		cb.Delete().After("gorm:delete").Register(prefix+":after_delete", after),
		cb.Row().After("gorm:row").Register(prefix+":after_row", after),
		cb.Raw().After("gorm:raw").Register(prefix+":after_raw", after),
	)
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func queryElapsed(db *gorm.DB) (time.Duration, bool) {
	if db.Statement.Context == nil {
		return 0, false
	}
	start, ok := db.Statement.Context.Value(queryStartKey{}).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

// DBTracingPlugin registers otelgorm and annotates its spans with the table,
// the affected rows and a slow-query marker.
type DBTracingPlugin struct {
	enabled    bool
	logFullSQL bool
	slow       time.Duration
	dbSystem   string
	logger     *zap.Logger
}

// NewDBTracingPlugin builds the plugin from the telemetry settings
func NewDBTracingPlugin(cfg config.TelemetryConfig, dbSystem string, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	slow := cfg.DBSlowQueryThresh
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	return &DBTracingPlugin{
		enabled:    cfg.Enabled && cfg.DBTraceEnabled,
		logFullSQL: cfg.DBLogFullSQL,
		slow:       slow,
		dbSystem:   dbSystem,
		logger:     logger,
	}
}

// Register installs the plugin on db. It is a no-op when tracing is off.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.dbSystem)}
	if !p.logFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := registerAround(db, "otel_timing", markQueryStart, p.annotate); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.logFullSQL),
		zap.Duration("slow_query_threshold", p.slow),
		zap.String("db_system", p.dbSystem),
	)
	return nil
}

func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
	if elapsed, ok := queryElapsed(db); ok && elapsed > p.slow {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
