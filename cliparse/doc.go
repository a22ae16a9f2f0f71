// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p                    Server port (default: 3001)
	-d                    Database URL (default: roti.db for sqlite)
	-t                    Database type: sqlite or postgres (default: sqlite)
	-admin-password       Admin password
	-admin-password-hash  bcrypt hash of the admin password
	-token-secret         Secret for token and address hashing
	-production           Serve the client build
	-static-dir           Client build directory (default: dist)
	-env-file             dotenv file to load (default: .env if present)

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	ADMIN_PASSWORD      → -admin-password
	ADMIN_PASSWORD_HASH → -admin-password-hash
	TOKEN_SECRET        → -token-secret
	ROTI_ENV=production → -production
	STATIC_DIR          → -static-dir

CLI flags take precedence over environment variables, and environment
variables take precedence over the dotenv file.

# Validation

ParseFlags returns an error when:

  - DATABASE_TYPE is neither sqlite nor postgres
  - DATABASE_URL is missing for postgres
  - neither ADMIN_PASSWORD nor ADMIN_PASSWORD_HASH is set
  - TOKEN_SECRET is missing
  - a secret still carries a well-known default value
*/
package cliparse
