// Package database centralises sqlx connection helpers for the two SQL
// backends.  MySQL goes through go-sql-driver/mysql (also fine for MariaDB);
// SQLite goes through the pure-Go modernc.org/sqlite driver, so the binary
// stays cgo-free.
//
// Public entry points:
//
//	Open(ctx, driver, dsn)                 – conservative pool sizes.
//	OpenWithOptions(ctx, driver, dsn, o)   – fine-grained control.
//
// Both helpers Ping the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers "sqlite"
)

// Supported driver names, as used in `database.driver`.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultOptions returns 15 max open, 5 idle, and a 30-minute connection
// lifetime.
func DefaultOptions() Options {
	return Options{MaxOpenConns: 15, MaxIdleConns: 5, ConnMaxLifetime: 30 * time.Minute}
}

// Open returns a *sqlx.DB with DefaultOptions.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, driver, dsn, DefaultOptions())
}

// OpenWithOptions opens and pings a pool for driver ("mysql" or "sqlite").
func OpenWithOptions(ctx context.Context, driver, dsn string, o Options) (*sqlx.DB, error) {
	switch driver {
	case DriverMySQL:
		normalized, err := MySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
		dsn = normalized
	case DriverSQLite:
		// One writer at a time; more connections only add SQLITE_BUSY churn.
		o.MaxOpenConns = 1
		o.MaxIdleConns = 1
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxIdleConns)
	db.SetConnMaxLifetime(o.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// MySQLDSN parses dsn and forces the flags the repositories rely on:
// parseTime (DATETIME → time.Time) and UTC location.
func MySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("database: parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}
