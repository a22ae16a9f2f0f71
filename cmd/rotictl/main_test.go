// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/roti/models"
	"github.com/danielhkuo/roti/router"
	"github.com/danielhkuo/roti/testutil"
)

func newTestServer(t *testing.T) string {
	t.Helper()

	t.Setenv("ROTI_URL", "")
	t.Setenv("ROTI_TOKEN", "")
	t.Setenv("ROTI_ADMIN_PASSWORD", "")

	conn := testutil.SetupTestDB(t)
	t.Cleanup(func() { conn.Close() })

	handler, err := router.NewRouter(conn, testutil.GetTestConfig())
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(ctx context.Context, args ...string) (string, error) {
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestVoteCommands(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	out, err := run(ctx, "-s", server, "status", "session_cli")
	require.NoError(t, err)
	assert.Equal(t, "session_cli has not voted\n", out)

	out, err = run(ctx, "-s", server, "vote", "4", "--session", "session_cli")
	require.NoError(t, err)
	assert.Contains(t, out, "recorded for session_cli")

	out, err = run(ctx, "-s", server, "status", "session_cli")
	require.NoError(t, err)
	assert.Equal(t, "session_cli voted 4\n", out)

	_, err = run(ctx, "-s", server, "vote", "2", "--session", "session_cli")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already voted 4")

	// A generated session
	out, err = run(ctx, "-s", server, "vote", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "recorded for session_")

	out, err = run(ctx, "-s", server, "stats")
	require.NoError(t, err)
	assert.Equal(t, "2 votes, average 3.00\n", out)
}

func TestVoteCommandRejectsBadRatings(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		rating  string
		message string
	}{
		{"abc", "rating must be an integer"},
		{"7", "between 1 and 5"},
		{"0", "between 1 and 5"},
	}

	for _, tt := range tests {
		t.Run(tt.rating, func(t *testing.T) {
			_, err := run(context.Background(), "-s", server, "vote", tt.rating)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestAdminCommands(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	_, err := run(ctx, "-s", server, "admin", "stats")
	assert.ErrorIs(t, err, errNoToken)

	_, err = run(ctx, "-s", server, "admin", "login", "-p", "wrong")
	require.Error(t, err)

	out, err := run(ctx, "-s", server, "admin", "login", "-p", testutil.TestAdminPassword)
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)

	for _, r := range []string{"5", "3"} {
		_, err := run(ctx, "-s", server, "vote", r)
		require.NoError(t, err)
	}

	out, err = run(ctx, "-s", server, "--token", token, "admin", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "5 | "+strings.Repeat("#", barWidth/2))
	assert.Contains(t, out, "2 votes, average 4.00")

	out, err = run(ctx, "-s", server, "--token", token, "admin", "votes")
	require.NoError(t, err)
	assert.Contains(t, out, "2 votes\n")
	assert.Equal(t, 3, strings.Count(out, "\n"))

	_, err = run(ctx, "-s", server, "--token", token, "admin", "reset")
	require.Error(t, err)

	out, err = run(ctx, "-s", server, "--token", token, "admin", "reset", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "Deleted 2 votes and 2 sessions\n", out)

	out, err = run(ctx, "-s", server, "--token", token, "admin", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)

	_, err = run(ctx, "-s", server, "--token", token, "admin", "stats")
	require.Error(t, err)
}

func TestAdminWatch(t *testing.T) {
	server := newTestServer(t)

	out, err := run(context.Background(), "-s", server, "admin", "login", "-p", testutil.TestAdminPassword)
	require.NoError(t, err)
	token := strings.TrimSpace(out)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, err = run(ctx, "-s", server, "--token", token, "admin", "watch", "--interval", "20ms")
	require.NoError(t, err)
	assert.Contains(t, out, "0 votes, average 0.00")
}

func TestAdminWatchRejectedToken(t *testing.T) {
	server := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := run(ctx, "-s", server, "--token", "bogus", "admin", "watch", "--interval", "20ms")
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
}

func TestPrintHistogramEmpty(t *testing.T) {
	var buf bytes.Buffer
	printHistogram(&buf, models.AdminStats{})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, models.MaxRating+1)
	assert.True(t, strings.HasPrefix(lines[0], "5 | "))
	assert.Equal(t, "0 votes, average 0.00", lines[len(lines)-1])
}
