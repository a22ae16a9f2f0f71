// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/roti/auth"
	"github.com/danielhkuo/roti/cliparse"
	"github.com/danielhkuo/roti/metrics"
	"github.com/danielhkuo/roti/middleware"
	"github.com/danielhkuo/roti/models"
	"github.com/danielhkuo/roti/votes"
)

// VoteRecorder is the part of votes.Service the voting endpoints need
type VoteRecorder interface {
	GetSessionStatus(ctx context.Context, sessionID string) (models.SessionStatus, error)
	SubmitVote(ctx context.Context, rating int, sessionID, clientAddress string) (int64, error)
}

type VotingHandler struct {
	votes   VoteRecorder
	metrics *metrics.MetricService
	cfg     cliparse.Config
}

func NewVotingHandler(v VoteRecorder, m *metrics.MetricService, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{votes: v, metrics: m, cfg: cfg}
}

// GetSession handles GET /api/session/{sessionId}
func (h *VotingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	status, err := h.votes.GetSessionStatus(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		writeServiceError(w, err, "get session")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, status)
}

// SubmitVote handles POST /api/vote
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		h.metrics.VoteRejected(metrics.ReasonValidation)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Rating == nil || req.SessionID == "" {
		h.metrics.VoteRejected(metrics.ReasonValidation)
		middleware.ErrorResponse(w, http.StatusBadRequest, "rating and sessionId are required")
		return
	}

	rating, err := votes.RatingFromNumber(*req.Rating)
	if err != nil {
		h.metrics.VoteRejected(metrics.ReasonValidation)
		writeServiceError(w, err, "submit vote")
		return
	}

	// Only a keyed hash of the address is kept
	clientAddress := auth.HashIP(middleware.GetClientIP(r), h.cfg.TokenSecret)

	voteID, err := h.votes.SubmitVote(r.Context(), rating, req.SessionID, clientAddress)
	if err != nil {
		h.metrics.VoteRejected(rejectionReason(err))
		writeServiceError(w, err, "submit vote")
		return
	}

	h.metrics.VoteRecorded(rating)
	slog.Info("vote recorded", "vote_id", voteID, "rating", rating)

	middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{
		Success: true,
		VoteID:  voteID,
		Message: "Vote recorded",
	})
}
