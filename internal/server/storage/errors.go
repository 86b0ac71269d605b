package storage

import "errors"

// Common storage errors
var (
	// ErrNotFound indicates that no record exists under the key
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists indicates that a record already exists under the key
	ErrAlreadyExists = errors.New("record already exists")

	// ErrClosed indicates that the store was used after Close
	ErrClosed = errors.New("storage is closed")

	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this phone already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that token was not found
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenAlreadyExists indicates a token id collision
	ErrTokenAlreadyExists = errors.New("token already exists")
)
