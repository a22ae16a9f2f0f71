// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/roti/auth"
	"github.com/danielhkuo/roti/cliparse"
	"github.com/danielhkuo/roti/handlers"
	"github.com/danielhkuo/roti/metrics"
	"github.com/danielhkuo/roti/middleware"
	"github.com/danielhkuo/roti/votes"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) (http.Handler, error) {
	checker, err := passwordChecker(cfg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	m := metrics.NewMetricService()

	// Initialize services
	voteService := votes.NewService(db)
	adminSessions := auth.NewAdminSessions(db, checker, cfg.TokenSecret)

	// Initialize handlers
	votingHandler := handlers.NewVotingHandler(voteService, m, cfg)
	adminHandler := handlers.NewAdminHandler(adminSessions, voteService, m)
	statsHandler := handlers.NewStatsHandler(voteService)

	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(m, pattern, h)))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireAdmin(adminSessions, m, h)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", m.Handler())

	// Admin auth
	route("POST /api/admin/login", adminHandler.Login)
	route("GET /api/admin/verify", admin(adminHandler.Verify))
	route("POST /api/admin/logout", admin(adminHandler.Logout))

	// Admin data
	route("GET /api/votes", admin(adminHandler.GetVotes))
	route("GET /api/admin/stats", admin(adminHandler.GetStats))
	route("DELETE /api/votes", admin(adminHandler.ResetVotes))

	// Voting (public)
	route("GET /api/session/{sessionId}", votingHandler.GetSession)
	route("POST /api/vote", votingHandler.SubmitVote)
	route("GET /api/stats", statsHandler.GetPublicStats)

	// Unknown API paths must not fall through to the SPA
	route("GET /api/", func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown endpoint")
	})

	// Root endpoint
	if cfg.Production {
		mux.Handle("GET /", spaHandler(cfg.StaticDir))
	} else {
		mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("roti API v1"))
		})
	}

	return middleware.CORS(mux), nil
}

// passwordChecker prefers a configured bcrypt hash over the plaintext password
func passwordChecker(cfg cliparse.Config) (*auth.PasswordChecker, error) {
	if cfg.AdminPasswordHash != "" {
		checker, err := auth.NewPasswordChecker([]byte(cfg.AdminPasswordHash))
		if err != nil {
			return nil, fmt.Errorf("invalid admin password hash: %w", err)
		}
		return checker, nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword, bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return auth.NewPasswordChecker(hash)
}

// spaHandler serves files from dir, falling back to index.html so client-side routes resolve
func spaHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			http.ServeFile(w, r, index)
			return
		}
		files.ServeHTTP(w, r)
	})
}
