package storage

import (
	"context"
	"time"
)

// SessionStorage defines interface for storing the current session on client
type SessionStorage interface {
	// SaveSession replaces the stored session
	SaveSession(ctx context.Context, session *Session) error

	// GetSession retrieves the stored session
	// Returns ErrSessionNotFound if no session exists
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes the stored session (logout)
	// Returns ErrSessionNotFound if no session exists
	DeleteSession(ctx context.Context) error

	// IsAuthenticated checks if a session exists and its token has not expired at now
	IsAuthenticated(ctx context.Context, now time.Time) (bool, error)
}

// Session represents the token the client is logged in with
type Session struct {
	Phone   string `json:"phone"`
	TokenID string `json:"token_id"`
	Expires int64  `json:"expires"` // миллисекунды с начала эпохи, как на сервере
}

// ExpiresAt returns the expiry as time.Time.
func (s *Session) ExpiresAt() time.Time {
	return time.UnixMilli(s.Expires)
}

// Valid reports whether the session token is still usable at now.
func (s *Session) Valid(now time.Time) bool {
	return now.UnixMilli() < s.Expires
}
