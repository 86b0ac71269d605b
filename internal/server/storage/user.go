package storage

import (
	"context"

	"github.com/iudanet/phoneauth/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user keyed by phone
	// Returns ErrUserAlreadyExists if phone already exists
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves user by phone
	// Returns ErrUserNotFound if user doesn't exist
	GetUser(ctx context.Context, phone string) (*models.User, error)

	// UpdateUser replaces the stored user record
	// Returns ErrUserNotFound if user doesn't exist
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser deletes user by phone
	// Returns ErrUserNotFound if user doesn't exist
	DeleteUser(ctx context.Context, phone string) error
}
