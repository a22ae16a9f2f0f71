package models

import "time"

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// AdminTokenTTL is how long an admin bearer token stays valid after login
const AdminTokenTTL = 24 * time.Hour

// Request types

// Rating is a pointer so a missing field can be told apart from zero,
// and a float so non-integer ratings reach validation instead of failing decode.
type SubmitVoteRequest struct {
	Rating    *float64 `json:"rating"`
	SessionID string   `json:"sessionId"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

// Response types

type SessionStatus struct {
	HasVoted       bool `json:"hasVoted"`
	SelectedRating *int `json:"selectedRating"`
}

type SubmitVoteResponse struct {
	Success bool   `json:"success"`
	VoteID  int64  `json:"voteId"`
	Message string `json:"message"`
}

type AdminLoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Message   string    `json:"message"`
}

type VerifyResponse struct {
	Valid bool `json:"valid"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ResetResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	DeletedVotes    int64  `json:"deletedVotes"`
	DeletedSessions int64  `json:"deletedSessions"`
}

// Domain types

type Vote struct {
	ID            int64     `json:"id"`
	Rating        int       `json:"rating"`
	CreatedAt     time.Time `json:"created_at"`
	SessionID     string    `json:"session_id"`
	ClientAddress string    `json:"client_address"`
}

type Session struct {
	ID             string    `json:"id"`
	HasVoted       bool      `json:"has_voted"`
	SelectedRating *int      `json:"selected_rating,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type AdminToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ResetResult struct {
	Votes    int64
	Sessions int64
}

// Stats types

type PublicStats struct {
	Total   int     `json:"total"`
	Average float64 `json:"average"`
}

// AdminStats keys the histogram by rating, matching the dashboard's wire format
type AdminStats struct {
	One     int     `json:"1"`
	Two     int     `json:"2"`
	Three   int     `json:"3"`
	Four    int     `json:"4"`
	Five    int     `json:"5"`
	Total   int     `json:"total"`
	Average float64 `json:"average"`
}

// Count returns the number of votes for rating, or 0 outside [MinRating, MaxRating]
func (s AdminStats) Count(rating int) int {
	switch rating {
	case 1:
		return s.One
	case 2:
		return s.Two
	case 3:
		return s.Three
	case 4:
		return s.Four
	case 5:
		return s.Five
	}
	return 0
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
