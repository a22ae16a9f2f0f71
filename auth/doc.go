// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin authentication and token utilities.

# Admin Sessions

AdminSessions implements the password login and bearer token gate:

	sessions := auth.NewAdminSessions(db, checker, cfg.TokenSecret)
	tok, err := sessions.Login(ctx, password)   // 24h token
	ok, err := sessions.Verify(ctx, tok.Token)
	err = sessions.Revoke(ctx, tok.Token)       // server-side logout

Login sweeps expired rows before issuing a token. Tokens issued earlier stay
valid; there is one shared admin credential and no per-admin identity.

# Passwords

The admin password is compared with bcrypt:

	hash, err := auth.HashPassword(cfg.AdminPassword, bcrypt.DefaultCost)
	checker, err := auth.NewPasswordChecker(hash)

A pre-computed hash (ADMIN_PASSWORD_HASH) can be passed straight to
NewPasswordChecker.

# Tokens

Bearer tokens are 32 random bytes, hex encoded:

	token, err := auth.GenerateToken(32)

Only HashToken(token, secret), an HMAC-SHA256, is stored.

# IP Hashing

Client addresses are kept for diagnostics only:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
