// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ROTI API server.

ROTI ("Return On Time Invested") collects one 1-5 rating per voting session
and shows an administrator the aggregated results behind a password.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	ADMIN_PASSWORD=... TOKEN_SECRET=... go run .

Or with flags:

	go run . -p 3001 -t postgres -d "postgres://..." -admin-password ... -token-secret ...

A .env file in the working directory is loaded first; real environment
variables win over it.

# Configuration

Required settings:

  - ADMIN_PASSWORD (-admin-password) or ADMIN_PASSWORD_HASH (-admin-password-hash)
  - TOKEN_SECRET (-token-secret): pepper for admin token and client address hashing

Optional settings:

  - PORT (-p): Server port (default: 3001)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): DSN (default: roti.db for sqlite)
  - ROTI_ENV=production (-production): serve the client build
  - STATIC_DIR (-static-dir): client build directory (default: dist)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (voting, admin, stats)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, admin gate, JSON helpers
  - votes: Session/vote service and stats aggregation
  - auth: Token and password primitives, admin sessions
  - metrics: Prometheus metrics
  - models: Request/response and domain types, error taxonomy
  - db: Connection setup and schema creation
  - cliparse: Configuration parsing
  - client: Go API client and view-models, used by cmd/rotictl

See package documentation for each component.
*/
package main
