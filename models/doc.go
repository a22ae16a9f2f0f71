// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, domain and error types for the API.

# Request Types

  - SubmitVoteRequest: rating, sessionId
  - AdminLoginRequest: password

# Response Types

  - SessionStatus: hasVoted, selectedRating (null when absent)
  - SubmitVoteResponse: success, voteId, message
  - AdminLoginResponse: success, token, expiresAt, message
  - VerifyResponse: valid
  - ResetResponse: success, message, deletedVotes, deletedSessions
  - PublicStats: total, average
  - AdminStats: "1".."5", total, average
  - ErrorResponse: error, message

# Domain Types

  - Vote: immutable rating fact tied to a session
  - Session: per-visit voting identity
  - AdminToken: bearer token and its expiry

# Errors

Sentinels are compared with errors.Is:

	ErrAlreadyVoted       // 400
	ErrInvalidCredentials // 401
	ErrUnauthorized       // 401

Input problems are *ValidationError values, detected with errors.As or IsValidation.
Anything else is an internal error.
*/
package models
