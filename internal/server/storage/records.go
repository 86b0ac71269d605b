package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/phoneauth/internal/models"
)

// Records implements UserStorage and TokenStorage on top of a Store,
// encoding every record as JSON.
type Records struct {
	store   Store
	timeout time.Duration
}

var (
	_ UserStorage  = (*Records)(nil)
	_ TokenStorage = (*Records)(nil)
)

// NewRecords wraps store. A positive timeout bounds every storage call.
func NewRecords(store Store, timeout time.Duration) *Records {
	return &Records{store: store, timeout: timeout}
}

func (r *Records) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// CreateUser creates a new user keyed by phone
func (r *Records) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := r.store.Create(ctx, CollectionUsers, user.Phone, data); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUser retrieves user by phone
func (r *Records) GetUser(ctx context.Context, phone string) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	data, err := r.store.Read(ctx, CollectionUsers, phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read user: %w", err)
	}

	user := &models.User{}
	if err := json.Unmarshal(data, user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return user, nil
}

// UpdateUser replaces the stored user record
func (r *Records) UpdateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := r.store.Update(ctx, CollectionUsers, user.Phone, data); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// DeleteUser deletes user by phone
func (r *Records) DeleteUser(ctx context.Context, phone string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.store.Delete(ctx, CollectionUsers, phone); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

// CreateToken stores a new token
func (r *Records) CreateToken(ctx context.Context, token *models.Token) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := r.store.Create(ctx, CollectionTokens, token.ID, data); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrTokenAlreadyExists
		}
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// GetToken retrieves token by id
func (r *Records) GetToken(ctx context.Context, id string) (*models.Token, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.getToken(ctx, id)
}

func (r *Records) getToken(ctx context.Context, id string) (*models.Token, error) {
	data, err := r.store.Read(ctx, CollectionTokens, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	token := &models.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return token, nil
}

// UpdateToken replaces the stored token
func (r *Records) UpdateToken(ctx context.Context, token *models.Token) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := r.store.Update(ctx, CollectionTokens, token.ID, data); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to update token: %w", err)
	}

	return nil
}

// DeleteToken deletes token by id
func (r *Records) DeleteToken(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.store.Delete(ctx, CollectionTokens, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}

	return nil
}

// DeleteUserTokens deletes all tokens issued for phone
func (r *Records) DeleteUserTokens(ctx context.Context, phone string) (int, error) {
	return r.deleteTokensWhere(ctx, func(t *models.Token) bool {
		return t.Phone == phone
	})
}

// DeleteExpiredTokens removes all tokens expired at now
func (r *Records) DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	return r.deleteTokensWhere(ctx, func(t *models.Token) bool {
		return !t.Valid(now)
	})
}

// deleteTokensWhere сканирует коллекцию токенов и удаляет подходящие.
// Токены, удаленные параллельно, пропускаются.
func (r *Records) deleteTokensWhere(ctx context.Context, match func(*models.Token) bool) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ids, err := r.store.Keys(ctx, CollectionTokens)
	if err != nil {
		return 0, fmt.Errorf("failed to list tokens: %w", err)
	}

	deleted := 0
	for _, id := range ids {
		token, err := r.getToken(ctx, id)
		if err != nil {
			if errors.Is(err, ErrTokenNotFound) {
				continue
			}
			return deleted, err
		}

		if !match(token) {
			continue
		}

		if err := r.store.Delete(ctx, CollectionTokens, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return deleted, fmt.Errorf("failed to delete token: %w", err)
		}
		deleted++
	}

	return deleted, nil
}
