package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetrics records query counts, query latency and connection pool state
type DBMetrics struct {
	queryTotal     *Counter
	queryErrors    *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	slow           time.Duration
	registration   metric.Registration
	logger         *zap.Logger
}

// NewDBMetrics creates the database instruments. sqlDB may be nil, in which
// case pool gauges are not registered.
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, slow time.Duration, logger *zap.Logger) (*DBMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}

	queryTotal, err := NewCounter(meter, "db_query_total", "Total number of database queries", "{query}")
	if err != nil {
		return nil, err
	}
	queryErrors, err := NewCounter(meter, "db_query_errors_total", "Database queries that returned an error", "{query}")
	if err != nil {
		return nil, err
	}
	slowQueryTotal, err := NewCounter(meter, "db_slow_query_total", "Database queries slower than the threshold", "{query}")
	if err != nil {
		return nil, err
	}
	queryDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	m := &DBMetrics{
		queryTotal:     queryTotal,
		queryErrors:    queryErrors,
		queryDuration:  queryDuration,
		slowQueryTotal: slowQueryTotal,
		slow:           slow,
		logger:         logger,
	}

	if sqlDB != nil {
		if err := m.registerPoolGauges(meter, sqlDB); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DBMetrics) registerPoolGauges(meter metric.Meter, sqlDB *sql.DB) error {
	connections, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return err
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections allowed"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return err
	}

	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.OpenConnections), metric.WithAttributes(AttrDBPoolState.String("open")))
		return nil
	}, connections, maxOpen)
	return err
}

// RecordQuery records one finished query
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration, err error) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}
	if table == "" {
		table = "unknown"
	}

	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation), AttrDBTable.String(table))
	m.queryDuration.RecordDuration(ctx, duration, AttrDBOperation.String(operation))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		m.queryErrors.Inc(ctx, AttrDBOperation.String(operation), AttrDBTable.String(table))
	}
	if duration > m.slow {
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// Register hooks the query instruments into db's callback chains
func (m *DBMetrics) Register(db *gorm.DB) error {
	return registerAround(db, "db_metrics", markQueryStart, m.after)
}

func (m *DBMetrics) after(db *gorm.DB) {
	elapsed, ok := queryElapsed(db)
	if !ok {
		return
	}
	m.RecordQuery(db.Statement.Context, sqlOperation(db.Statement.SQL.String()), db.Statement.Table, elapsed, db.Error)
}

// Close unregisters the pool gauges
func (m *DBMetrics) Close() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}

func sqlOperation(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexByte(sql, ' '); i > 0 {
		return sql[:i]
	}
	return sql
}
