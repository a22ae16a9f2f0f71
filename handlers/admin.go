// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/roti/metrics"
	"github.com/danielhkuo/roti/middleware"
	"github.com/danielhkuo/roti/models"
)

// Authenticator issues and revokes admin tokens
type Authenticator interface {
	Login(ctx context.Context, password string) (models.AdminToken, error)
	Revoke(ctx context.Context, token string) error
}

// VoteAdmin is the admin-only part of votes.Service
type VoteAdmin interface {
	ListVotes(ctx context.Context) ([]models.Vote, error)
	AdminStats(ctx context.Context) (models.AdminStats, error)
	ResetAll(ctx context.Context) (models.ResetResult, error)
}

// AdminHandler serves the /api/admin endpoints and the protected vote endpoints.
// Everything except Login sits behind middleware.RequireAdmin.
type AdminHandler struct {
	auth    Authenticator
	votes   VoteAdmin
	metrics *metrics.MetricService
}

func NewAdminHandler(a Authenticator, v VoteAdmin, m *metrics.MetricService) *AdminHandler {
	return &AdminHandler{auth: a, votes: v, metrics: m}
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			h.metrics.AdminLogin(false)
			slog.Warn("admin login rejected", "remote", middleware.GetClientIP(r))
		}
		writeServiceError(w, err, "admin login")
		return
	}

	h.metrics.AdminLogin(true)

	middleware.JSONResponse(w, http.StatusOK, models.AdminLoginResponse{
		Success:   true,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		Message:   "Login successful",
	})
}

// Verify handles GET /api/admin/verify; reaching it means the token passed the gate
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.VerifyResponse{Valid: true})
}

// Logout handles POST /api/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Revoke(r.Context(), middleware.BearerToken(r)); err != nil {
		writeServiceError(w, err, "admin logout")
		return
	}

	slog.Info("admin logout")

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Logged out",
	})
}

// GetVotes handles GET /api/votes
func (h *AdminHandler) GetVotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.votes.ListVotes(r.Context())
	if err != nil {
		writeServiceError(w, err, "list votes")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, list)
}

// GetStats handles GET /api/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.votes.AdminStats(r.Context())
	if err != nil {
		writeServiceError(w, err, "admin stats")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}

// ResetVotes handles DELETE /api/votes
func (h *AdminHandler) ResetVotes(w http.ResponseWriter, r *http.Request) {
	res, err := h.votes.ResetAll(r.Context())
	if err != nil {
		writeServiceError(w, err, "reset votes")
		return
	}

	h.metrics.VotesReset()
	slog.Info("votes reset",
		"votes", humanize.Comma(res.Votes),
		"sessions", humanize.Comma(res.Sessions),
	)

	middleware.JSONResponse(w, http.StatusOK, models.ResetResponse{
		Success:         true,
		Message:         "All votes have been deleted",
		DeletedVotes:    res.Votes,
		DeletedSessions: res.Sessions,
	})
}
