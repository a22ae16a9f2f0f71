// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/roti/cliparse"
)

var (
	PingAttempts = retry.Attempts(5)
	PingDelay    = retry.Delay(400 * time.Millisecond)
	PingErr      = retry.LastErrorOnly(true)
)

// Open connects to the configured store, waits for it to answer and
// creates the schema.
func Open(ctx context.Context, cfg cliparse.Config) (*sql.DB, error) {
	driver, dsn := driverFor(cfg)

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.DatabaseType, err)
	}

	if cfg.DatabaseType == cliparse.DatabaseSQLite {
		// SQLite allows a single writer; queue on the pool instead of SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	}

	err = retry.Do(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return conn.PingContext(pingCtx)
	}, retry.Context(ctx), PingAttempts, PingDelay, PingErr,
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("database ping failed, retrying", "attempt", n+1, "error", err)
		}))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := CreateSchema(conn, cfg.DatabaseType); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

func driverFor(cfg cliparse.Config) (driver, dsn string) {
	if cfg.DatabaseType == cliparse.DatabasePostgres {
		return "postgres", cfg.DatabaseURL
	}

	dsn = cfg.DatabaseURL
	if !strings.Contains(dsn, "_pragma=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
	}
	return "sqlite", dsn
}

// IsUniqueViolation reports whether err is a unique-constraint failure from
// either supported driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// extended codes disabled on this connection
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}

	return false
}
