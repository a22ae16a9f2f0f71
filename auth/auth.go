// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GenerateToken creates a random hex token of the specified byte length
func GenerateToken(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashToken derives the value stored for a bearer token.
// The raw token never touches the database.
func HashToken(token, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for diagnostics
	return hex.EncodeToString(sum[:8])
}

// HashPassword returns a bcrypt hash suitable for PasswordChecker
func HashPassword(password string, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// PasswordChecker compares candidates against the single admin credential.
// bcrypt keeps the comparison cost independent of where inputs differ.
type PasswordChecker struct {
	hash []byte
}

func NewPasswordChecker(hash []byte) (*PasswordChecker, error) {
	if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}
	return &PasswordChecker{hash: hash}, nil
}

// Check reports whether password matches
func (c *PasswordChecker) Check(password string) bool {
	return bcrypt.CompareHashAndPassword(c.hash, []byte(password)) == nil
}
