// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ROTI API.

# Route Registration

NewRouter builds the services and handlers and returns the mux wrapped in CORS:

	handler, err := router.NewRouter(db, cfg)

It fails only when the configured admin password hash is not a valid bcrypt hash.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Voting (public):

	GET  /api/session/{sessionId} - Has this session voted
	POST /api/vote                - Submit a rating
	GET  /api/stats               - Total and average

Admin (Bearer token, except login):

	POST   /api/admin/login  - Exchange the password for a token
	GET    /api/admin/verify - Check a token
	POST   /api/admin/logout - Revoke a token
	GET    /api/votes        - Raw votes, newest first
	GET    /api/admin/stats  - Per-rating histogram
	DELETE /api/votes        - Delete all votes and sessions

In production mode GET / serves the client build from cfg.StaticDir, with
index.html as the fallback for client-side routes. Unknown /api paths get a
JSON 404 instead.
*/
package router
