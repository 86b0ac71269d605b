package storage

import (
	"context"
	"time"

	"github.com/iudanet/phoneauth/internal/models"
)

// TokenStorage defines interface for token persistence
type TokenStorage interface {
	// CreateToken stores a new token
	// Returns ErrTokenAlreadyExists on id collision
	CreateToken(ctx context.Context, token *models.Token) error

	// GetToken retrieves token by id
	// Returns ErrTokenNotFound if token doesn't exist
	GetToken(ctx context.Context, id string) (*models.Token, error)

	// UpdateToken replaces the stored token
	// Returns ErrTokenNotFound if token doesn't exist
	UpdateToken(ctx context.Context, token *models.Token) error

	// DeleteToken deletes token by id
	// Returns ErrTokenNotFound if token doesn't exist
	DeleteToken(ctx context.Context, id string) error

	// DeleteUserTokens deletes all tokens issued for phone
	// Returns number of deleted tokens
	DeleteUserTokens(ctx context.Context, phone string) (int, error)

	// DeleteExpiredTokens removes all tokens expired at now
	// Returns number of deleted tokens
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error)
}
