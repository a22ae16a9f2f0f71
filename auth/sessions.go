// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/roti/models"
)

// tokenBytes matches the 64 hex character tokens the dashboard already stores
const tokenBytes = 32

// AdminSessions issues and validates admin bearer tokens backed by the
// admin_sessions table.
type AdminSessions struct {
	db      *sql.DB
	checker *PasswordChecker
	secret  string
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*AdminSessions)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *AdminSessions) { s.now = now }
}

// WithTTL overrides models.AdminTokenTTL
func WithTTL(ttl time.Duration) Option {
	return func(s *AdminSessions) { s.ttl = ttl }
}

func NewAdminSessions(db *sql.DB, checker *PasswordChecker, secret string, opts ...Option) *AdminSessions {
	s := &AdminSessions{
		db:      db,
		checker: checker,
		secret:  secret,
		ttl:     models.AdminTokenTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks the admin password and issues a new token.
// Existing tokens stay valid.
func (s *AdminSessions) Login(ctx context.Context, password string) (models.AdminToken, error) {
	if password == "" {
		return models.AdminToken{}, models.NewValidationError("password", "is required")
	}
	if !s.checker.Check(password) {
		return models.AdminToken{}, models.ErrInvalidCredentials
	}

	// Housekeeping only; a failed sweep never blocks a login
	if n, err := s.SweepExpired(ctx); err != nil {
		slog.Warn("failed to sweep expired admin tokens", "error", err)
	} else if n > 0 {
		slog.Info("swept expired admin tokens", "count", n)
	}

	token, err := GenerateToken(tokenBytes)
	if err != nil {
		return models.AdminToken{}, err
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO admin_sessions (token, expires_at, created_at)
		VALUES ($1, $2, $3)
	`, HashToken(token, s.secret), expiresAt, now)
	if err != nil {
		return models.AdminToken{}, fmt.Errorf("failed to store admin token: %w", err)
	}

	slog.Info("admin login", "expires", humanize.RelTime(now, expiresAt, "ago", "from now"))

	return models.AdminToken{Token: token, ExpiresAt: expiresAt}, nil
}

// Verify reports whether token exists and has not expired
func (s *AdminSessions) Verify(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT expires_at FROM admin_sessions WHERE token = $1
	`, HashToken(token, s.secret)).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up admin token: %w", err)
	}

	return s.now().Before(expiresAt), nil
}

// Revoke deletes token server-side. Unknown tokens are not an error.
func (s *AdminSessions) Revoke(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM admin_sessions WHERE token = $1
	`, HashToken(token, s.secret))
	if err != nil {
		return fmt.Errorf("failed to revoke admin token: %w", err)
	}
	return nil
}

// SweepExpired removes tokens whose expiry has passed and returns how many
func (s *AdminSessions) SweepExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM admin_sessions WHERE expires_at <= $1
	`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired admin tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired admin tokens: %w", err)
	}
	return n, nil
}
