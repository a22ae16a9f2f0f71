// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"

	"github.com/danielhkuo/roti/middleware"
	"github.com/danielhkuo/roti/models"
)

type PublicStatsSource interface {
	PublicStats(ctx context.Context) (models.PublicStats, error)
}

type StatsHandler struct {
	stats PublicStatsSource
}

func NewStatsHandler(s PublicStatsSource) *StatsHandler {
	return &StatsHandler{stats: s}
}

// GetPublicStats handles GET /api/stats
func (h *StatsHandler) GetPublicStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.PublicStats(r.Context())
	if err != nil {
		writeServiceError(w, err, "public stats")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}
