// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package votes records ROTI ratings and aggregates them.
package votes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/danielhkuo/roti/db"
	"github.com/danielhkuo/roti/models"
)

type Service struct {
	db  *sql.DB
	now func() time.Time
}

func NewService(conn *sql.DB) *Service {
	return &Service{db: conn, now: time.Now}
}

// RatingFromNumber converts a decoded JSON number to a rating.
// Fractions and values outside [MinRating, MaxRating] are rejected.
func RatingFromNumber(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, models.NewValidationError("rating", "must be an integer between 1 and 5")
	}
	rating := int(f)
	if err := validateRating(rating); err != nil {
		return 0, err
	}
	return rating, nil
}

func validateRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return models.NewValidationError("rating", "must be an integer between 1 and 5")
	}
	return nil
}

func validateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return models.NewValidationError("sessionId", "must be a non-empty string")
	}
	return nil
}

// GetSessionStatus reports whether sessionID has voted. Unknown sessions
// have not voted; that is not an error.
func (s *Service) GetSessionStatus(ctx context.Context, sessionID string) (models.SessionStatus, error) {
	if err := validateSessionID(sessionID); err != nil {
		return models.SessionStatus{}, err
	}

	var hasVoted bool
	var selected sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT has_voted, selected_rating FROM sessions WHERE id = $1
	`, sessionID).Scan(&hasVoted, &selected)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SessionStatus{HasVoted: false}, nil
	}
	if err != nil {
		return models.SessionStatus{}, fmt.Errorf("failed to query session: %w", err)
	}

	status := models.SessionStatus{HasVoted: hasVoted}
	if selected.Valid {
		r := int(selected.Int64)
		status.SelectedRating = &r
	}
	return status, nil
}

// SubmitVote records rating for sessionID and returns the new vote ID.
//
// The session flag flips from false to true in a single conditional upsert,
// and the vote insert is guarded by the unique index on votes.session_id,
// so concurrent submissions for one session record exactly one vote.
func (s *Service) SubmitVote(ctx context.Context, rating int, sessionID, clientAddress string) (int64, error) {
	if err := validateRating(rating); err != nil {
		return 0, err
	}
	if err := validateSessionID(sessionID); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, has_voted, selected_rating, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET has_voted = excluded.has_voted, selected_rating = excluded.selected_rating
		WHERE sessions.has_voted = FALSE
	`, sessionID, true, rating, now)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, models.ErrAlreadyVoted
		}
		return 0, fmt.Errorf("failed to upsert session: %w", err)
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read upsert result: %w", err)
	}
	if claimed == 0 {
		return 0, models.ErrAlreadyVoted
	}

	var voteID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO votes (rating, session_id, client_address, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, rating, sessionID, clientAddress, now).Scan(&voteID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, models.ErrAlreadyVoted
		}
		return 0, fmt.Errorf("failed to insert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if db.IsUniqueViolation(err) {
			return 0, models.ErrAlreadyVoted
		}
		return 0, fmt.Errorf("failed to commit vote: %w", err)
	}

	return voteID, nil
}

// ResetAll deletes every vote and session. Admin tokens are untouched.
func (s *Service) ResetAll(ctx context.Context) (models.ResetResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.ResetResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var result models.ResetResult

	res, err := tx.ExecContext(ctx, `DELETE FROM votes`)
	if err != nil {
		return models.ResetResult{}, fmt.Errorf("failed to delete votes: %w", err)
	}
	if result.Votes, err = res.RowsAffected(); err != nil {
		return models.ResetResult{}, fmt.Errorf("failed to count deleted votes: %w", err)
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM sessions`)
	if err != nil {
		return models.ResetResult{}, fmt.Errorf("failed to delete sessions: %w", err)
	}
	if result.Sessions, err = res.RowsAffected(); err != nil {
		return models.ResetResult{}, fmt.Errorf("failed to count deleted sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.ResetResult{}, fmt.Errorf("failed to commit reset: %w", err)
	}

	return result, nil
}

// ListVotes returns every vote, newest first
func (s *Service) ListVotes(ctx context.Context) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rating, created_at, session_id, client_address
		FROM votes
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		var addr sql.NullString
		if err := rows.Scan(&v.ID, &v.Rating, &v.CreatedAt, &v.SessionID, &addr); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.ClientAddress = addr.String
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}

	return votes, nil
}
