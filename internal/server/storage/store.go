package storage

import "context"

// Resource types (collections) used by the server.
const (
	CollectionUsers  = "users"
	CollectionTokens = "tokens"
)

// Store is the key-value persistence layer underlying every record.
// Records are grouped by collection and addressed by a string key.
// Every call is atomic per key.
type Store interface {
	// Create stores value under key.
	// Returns ErrAlreadyExists if the key is taken, even under concurrent calls.
	Create(ctx context.Context, collection, key string, value []byte) error

	// Read returns the value stored under key.
	// Returns ErrNotFound if the key doesn't exist
	Read(ctx context.Context, collection, key string) ([]byte, error)

	// Update replaces the value stored under key.
	// Returns ErrNotFound if the key doesn't exist
	Update(ctx context.Context, collection, key string, value []byte) error

	// Delete removes the record stored under key.
	// Returns ErrNotFound if the key doesn't exist
	Delete(ctx context.Context, collection, key string) error

	// Keys lists all keys of a collection in no particular order.
	// Returns empty slice if the collection is empty
	Keys(ctx context.Context, collection string) ([]string, error)

	// Close releases the underlying resources
	Close() error
}
