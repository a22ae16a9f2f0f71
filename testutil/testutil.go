// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/roti/auth"
	"github.com/danielhkuo/roti/cliparse"
	"github.com/danielhkuo/roti/db"
)

// TestDBURL is an in-memory SQLite database; every open gets a fresh one
const TestDBURL = ":memory:?_time_format=sqlite"

// TestAdminPassword is the admin password in GetTestConfig
const TestAdminPassword = "test-admin-password"

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// One connection keeps the in-memory database alive and shared
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)
	conn.SetConnMaxIdleTime(0)

	if err := db.CreateSchema(conn, cliparse.DatabaseSQLite); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3001,
		DatabaseURL:   TestDBURL,
		DatabaseType:  cliparse.DatabaseSQLite,
		AdminPassword: TestAdminPassword,
		TokenSecret:   "test-token-secret",
		StaticDir:     "dist",
	}
}

// CreateTestVote records a vote and marks its session as voted, returning the vote ID
func CreateTestVote(t *testing.T, conn *sql.DB, sessionID string, rating int) int64 {
	t.Helper()

	now := time.Now().UTC()
	var voteID int64
	err := conn.QueryRow(`
		INSERT INTO votes (rating, session_id, client_address, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, rating, sessionID, "test", now).Scan(&voteID)
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO sessions (id, has_voted, selected_rating, created_at)
		VALUES ($1, $2, $3, $4)
	`, sessionID, true, rating, now)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return voteID
}

// CreateTestAdminToken stores a token valid until expiresAt and returns the bearer value
func CreateTestAdminToken(t *testing.T, conn *sql.DB, cfg cliparse.Config, expiresAt time.Time) string {
	t.Helper()

	token, err := auth.GenerateToken(32)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO admin_sessions (token, expires_at, created_at)
		VALUES ($1, $2, $3)
	`, auth.HashToken(token, cfg.TokenSecret), expiresAt.UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create admin token: %v", err)
	}

	return token
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// BearerHeader builds the Authorization header map for MakeRequest
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// FarFuture returns an expiry comfortably inside the token lifetime
func FarFuture() time.Time {
	return time.Now().Add(12 * time.Hour)
}
