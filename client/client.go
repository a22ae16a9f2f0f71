// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package client is a Go client for the ROTI API, plus the voting and admin
// view-models that rotictl drives.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/danielhkuo/roti/models"
)

const (
	DefaultAttempts = 3
	DefaultDelay    = 300 * time.Millisecond
	requestTimeout  = 10 * time.Second
)

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("roti api: %d %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsAlreadyVoted reports whether err is the server refusing a second vote
func IsAlreadyVoted(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.StatusCode == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(apiErr.Message), "already voted")
}

// NewSessionID returns a fresh client-generated session identifier
func NewSessionID() string {
	return "session_" + uuid.NewString()
}

// Client talks to the ROTI REST API. GET requests are retried on transport
// errors and 5xx answers; writes are sent once.
type Client struct {
	baseURL  string
	http     *http.Client
	attempts uint
	delay    time.Duration

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// WithToken starts the client with a previously issued admin token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: requestTimeout},
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Voting

func (c *Client) SessionStatus(ctx context.Context, sessionID string) (models.SessionStatus, error) {
	var status models.SessionStatus
	err := c.do(ctx, http.MethodGet, "/api/session/"+url.PathEscape(sessionID), nil, &status)
	return status, err
}

func (c *Client) SubmitVote(ctx context.Context, rating int, sessionID string) (models.SubmitVoteResponse, error) {
	r := float64(rating)
	var resp models.SubmitVoteResponse
	err := c.do(ctx, http.MethodPost, "/api/vote", models.SubmitVoteRequest{Rating: &r, SessionID: sessionID}, &resp)
	return resp, err
}

func (c *Client) PublicStats(ctx context.Context) (models.PublicStats, error) {
	var stats models.PublicStats
	err := c.do(ctx, http.MethodGet, "/api/stats", nil, &stats)
	return stats, err
}

// Admin

// Login exchanges the admin password for a token and keeps it for later calls
func (c *Client) Login(ctx context.Context, password string) (models.AdminLoginResponse, error) {
	var resp models.AdminLoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", models.AdminLoginRequest{Password: password}, &resp); err != nil {
		return models.AdminLoginResponse{}, err
	}
	c.SetToken(resp.Token)
	return resp, nil
}

// Verify reports whether the held token is still accepted
func (c *Client) Verify(ctx context.Context) (bool, error) {
	if c.Token() == "" {
		return false, nil
	}
	var resp models.VerifyResponse
	err := c.do(ctx, http.MethodGet, "/api/admin/verify", nil, &resp)
	if IsUnauthorized(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return resp.Valid, nil
}

// Logout revokes the token server-side. The local token is dropped either way.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/api/admin/logout", nil, nil)
	c.SetToken("")
	if IsUnauthorized(err) {
		return nil
	}
	return err
}

func (c *Client) Votes(ctx context.Context) ([]models.Vote, error) {
	var list []models.Vote
	err := c.do(ctx, http.MethodGet, "/api/votes", nil, &list)
	return list, err
}

func (c *Client) AdminStats(ctx context.Context) (models.AdminStats, error) {
	var stats models.AdminStats
	err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, &stats)
	return stats, err
}

func (c *Client) ResetVotes(ctx context.Context) (models.ResetResponse, error) {
	var resp models.ResetResponse
	err := c.do(ctx, http.MethodDelete, "/api/votes", nil, &resp)
	return resp, err
}

// Transport

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	attempt := func() error {
		return c.send(ctx, method, path, payload, out)
	}

	if method != http.MethodGet {
		return attempt()
	}

	return retry.Do(attempt,
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			slog.Debug("request failed, retrying", "path", path, "attempt", n+1, "error", err)
		}),
	)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out interface{}) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// retryable keeps retrying transport failures and server errors only
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
