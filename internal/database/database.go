// Package database centralises sqlx connection helpers.  The default driver
// is go-sql-driver/mysql, which also works with MariaDB and Cockroach when
// configured for the MySQL wire protocol.
//
// Public entry points:
//
//	Open(cfg)          – pool built from bound Database settings.
//	Health(ctx, db)    – cheap liveness probe for handlers and boot checks.
//
// Open Pings the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/ezzy1337/Pathos/internal/settings"
)

// Open returns a *sqlx.DB sized by the bound settings.  When the DSN is
// a template carrying a %s verb the secret-sourced password is
// substituted in, so the full credential never sits in one file.
func Open(cfg settings.Database) (*sqlx.DB, error) {
	dsn := cfg.DSN
	if strings.Contains(dsn, "%s") {
		dsn = fmt.Sprintf(dsn, cfg.Password)
	}
	return open("mysql", dsn, cfg)
}

// open carries the driver name so tests can substitute sqlmock.
func open(driver, dsn string, cfg settings.Database) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Health runs SELECT 1 against the pool.  Used by /healthz so a wedged
// pool surfaces as a failing probe instead of a request-time surprise.
func Health(ctx context.Context, db *sqlx.DB) error {
	var one int
	return db.GetContext(ctx, &one, `SELECT 1`)
}
