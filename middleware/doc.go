// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/stats", middleware.WithLogging(handler))

Logs request start (method, path, remote, request_id) and completion
(status, duration_ms). An incoming X-Request-ID is kept, otherwise a UUID
is generated; either way it is echoed on the response.

WithMetrics records the request duration under a route label.

# Admin Gate

RequireAdmin checks the "Authorization: Bearer <token>" header against a
TokenVerifier and answers 401 before the wrapped handler runs:

	mux.HandleFunc("GET /api/votes", middleware.RequireAdmin(sessions, m, h.GetVotes))

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, DELETE, OPTIONS with headers Content-Type and
Authorization.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Only a keyed hash of it is ever stored.
*/
package middleware
