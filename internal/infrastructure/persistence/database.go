package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Database owns the GORM handle shared by every repository of the process
type Database struct {
	DB     *gorm.DB
	Driver string
}

// NewDatabase opens a connection with GORM's own logging silenced
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	return NewDatabaseWithCustomLogger(cfg, logger.Default.LogMode(logger.Silent))
}

// NewDatabaseWithCustomLogger opens a connection, sizes its pool and pings it.
// Timestamps are written in UTC and driver errors are translated into
// gorm.ErrDuplicatedKey and friends so repositories can map them to domain codes.
func NewDatabaseWithCustomLogger(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		PrepareStmt:            cfg.Driver != DriverSQLite,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driverName(cfg.Driver), err)
	}

	d := &Database{DB: db, Driver: driverName(cfg.Driver)}
	pool, err := d.SQL()
	if err != nil {
		return nil, err
	}
	configurePool(pool, cfg, d.Driver)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping %s database: %w", d.Driver, err)
	}
	return d, nil
}

func driverName(driver string) string {
	if driver == "" {
		return DriverPostgres
	}
	return driver
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch driverName(cfg.Driver) {
	case DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case DriverSQLite:
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func configurePool(pool *sql.DB, cfg *config.DatabaseConfig, driver string) {
	if driver == DriverSQLite {
		// one connection keeps an in-memory database alive and serializes writers
		pool.SetMaxOpenConns(1)
		return
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

// SQL returns the underlying connection pool
func (d *Database) SQL() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	return pool, nil
}

// PingContext checks that the database answers; it backs the readiness probe
func (d *Database) PingContext(ctx context.Context) error {
	pool, err := d.SQL()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// Close releases every pooled connection
func (d *Database) Close() error {
	pool, err := d.SQL()
	if err != nil {
		return err
	}
	return pool.Close()
}

// AutoMigrate creates or updates every table of the order core.
// Production schemas come from the SQL migrations; this serves the sqlite mode and tests.
func (d *Database) AutoMigrate() error {
	return AutoMigrate(d.DB)
}
