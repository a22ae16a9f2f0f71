// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyVoted means the session already holds a recorded vote
	ErrAlreadyVoted = errors.New("session has already voted")
	// ErrInvalidCredentials means the admin password did not match
	ErrInvalidCredentials = errors.New("invalid admin password")
	// ErrUnauthorized means the bearer token is missing, unknown or expired
	ErrUnauthorized = errors.New("invalid or expired token")
)

// ValidationError reports user-correctable input problems
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// NewValidationError builds a *ValidationError
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err wraps a *ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
