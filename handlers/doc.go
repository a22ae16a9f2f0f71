// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ROTI API.

# Handler Types

Each handler is a struct holding the services it calls through small
interfaces, plus the shared metrics service:

  - VotingHandler: session status and vote submission
  - AdminHandler: login, token verification, logout, raw votes, histogram, reset
  - StatsHandler: public aggregate stats

Handlers are created with constructor functions:

	votingHandler := handlers.NewVotingHandler(voteService, m, cfg)

# Voting Flow

The client generates a session id and submits exactly one rating for it:

	GET  /api/session/{sessionId} → GetSession
	POST /api/vote                → SubmitVote

A second submission for the same session is rejected with 400.

# Admin Flow

	POST   /api/admin/login  → Login (returns a bearer token valid for 24h)
	GET    /api/admin/verify → Verify
	POST   /api/admin/logout → Logout (revokes the token)
	GET    /api/votes        → GetVotes
	GET    /api/admin/stats  → GetStats
	DELETE /api/votes        → ResetVotes

Everything except Login must be wrapped in middleware.RequireAdmin.

# Errors

Service errors are mapped in one place (errors.go): validation and
already-voted errors become 400, credential errors 401, anything else a
logged 500 with a generic message.
*/
package handlers
