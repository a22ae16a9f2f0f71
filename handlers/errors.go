// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/roti/metrics"
	"github.com/danielhkuo/roti/middleware"
	"github.com/danielhkuo/roti/models"
)

// writeServiceError maps a service error to a status code and message.
// Anything unrecognised is logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		middleware.ErrorResponse(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Session has already voted")
	case errors.Is(err, models.ErrInvalidCredentials):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid password")
	case errors.Is(err, models.ErrUnauthorized):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired token")
	default:
		slog.Error("request failed", "op", op, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

// rejectionReason labels a failed vote for metrics
func rejectionReason(err error) string {
	switch {
	case models.IsValidation(err):
		return metrics.ReasonValidation
	case errors.Is(err, models.ErrAlreadyVoted):
		return metrics.ReasonAlreadyVoted
	default:
		return metrics.ReasonInternal
	}
}
