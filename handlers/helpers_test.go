// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/roti/auth"
	"github.com/danielhkuo/roti/cliparse"
	"github.com/danielhkuo/roti/metrics"
	"github.com/danielhkuo/roti/middleware"
	"github.com/danielhkuo/roti/models"
	"github.com/danielhkuo/roti/testutil"
	"github.com/danielhkuo/roti/votes"
)

type testEnv struct {
	db       *sql.DB
	cfg      cliparse.Config
	metrics  *metrics.MetricService
	sessions *auth.AdminSessions
	voting   *VotingHandler
	admin    *AdminHandler
	stats    *StatsHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	t.Cleanup(func() { conn.Close() })

	cfg := testutil.GetTestConfig()

	hash, err := auth.HashPassword(cfg.AdminPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash admin password: %v", err)
	}
	checker, err := auth.NewPasswordChecker(hash)
	if err != nil {
		t.Fatalf("Failed to build password checker: %v", err)
	}

	sessions := auth.NewAdminSessions(conn, checker, cfg.TokenSecret)
	svc := votes.NewService(conn)
	m := metrics.NewMetricService()

	return &testEnv{
		db:       conn,
		cfg:      cfg,
		metrics:  m,
		sessions: sessions,
		voting:   NewVotingHandler(svc, m, cfg),
		admin:    NewAdminHandler(sessions, svc, m),
		stats:    NewStatsHandler(svc),
	}
}

// protect wraps h in the admin token gate, as the router does
func (e *testEnv) protect(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RequireAdmin(e.sessions, e.metrics, h)
}

// login returns a fresh bearer token
func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	req := testutil.MakeRequest("POST", "/api/admin/login", models.AdminLoginRequest{
		Password: testutil.TestAdminPassword,
	}, nil)
	w := httptest.NewRecorder()
	e.admin.Login(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.AdminLoginResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Token == "" {
		t.Fatal("Expected non-empty token")
	}
	return resp.Token
}

// metricsBody renders the metrics endpoint for assertions
func (e *testEnv) metricsBody() string {
	w := httptest.NewRecorder()
	e.metrics.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	return w.Body.String()
}

func ratingPtr(f float64) *float64 {
	return &f
}

var errStore = errors.New("disk I/O error: database is locked")

// brokenStore fails every call, for the 500 paths
type brokenStore struct{}

func (brokenStore) GetSessionStatus(ctx context.Context, sessionID string) (models.SessionStatus, error) {
	return models.SessionStatus{}, errStore
}

func (brokenStore) SubmitVote(ctx context.Context, rating int, sessionID, clientAddress string) (int64, error) {
	return 0, errStore
}

func (brokenStore) ListVotes(ctx context.Context) ([]models.Vote, error) {
	return nil, errStore
}

func (brokenStore) AdminStats(ctx context.Context) (models.AdminStats, error) {
	return models.AdminStats{}, errStore
}

func (brokenStore) ResetAll(ctx context.Context) (models.ResetResult, error) {
	return models.ResetResult{}, errStore
}

func (brokenStore) PublicStats(ctx context.Context) (models.PublicStats, error) {
	return models.PublicStats{}, errStore
}

func (brokenStore) Login(ctx context.Context, password string) (models.AdminToken, error) {
	return models.AdminToken{}, errStore
}

func (brokenStore) Revoke(ctx context.Context, token string) error {
	return errStore
}

// assertGenericError checks a 500 that does not leak the cause
func assertGenericError(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()

	testutil.AssertStatus(t, w, http.StatusInternalServerError)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "Internal server error" {
		t.Errorf("Expected generic message, got '%s'", resp.Message)
	}
}
