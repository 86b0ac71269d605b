// Package memory provides an in-process Store backed by maps.
package memory

import (
	"context"
	"sync"

	"github.com/iudanet/phoneauth/internal/server/storage"
)

// Storage keeps records in memory. Values are copied on the way in and out.
type Storage struct {
	collections map[string]map[string][]byte
	mu          sync.RWMutex
}

var _ storage.Store = (*Storage)(nil)

// New creates an empty in-memory storage
func New() *Storage {
	return &Storage{collections: make(map[string]map[string][]byte)}
}

// Create stores value under key if the key is free
func (s *Storage) Create(_ context.Context, collection, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		c = make(map[string][]byte)
		s.collections[collection] = c
	}

	if _, exists := c[key]; exists {
		return storage.ErrAlreadyExists
	}
	c[key] = clone(value)

	return nil
}

// Read returns a copy of the value stored under key
func (s *Storage) Read(_ context.Context, collection, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.collections[collection][key]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return clone(value), nil
}

// Update replaces an existing value
func (s *Storage) Update(_ context.Context, collection, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collections[collection]
	if _, exists := c[key]; !exists {
		return storage.ErrNotFound
	}
	c[key] = clone(value)

	return nil
}

// Delete removes an existing value
func (s *Storage) Delete(_ context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collections[collection]
	if _, exists := c[key]; !exists {
		return storage.ErrNotFound
	}
	delete(c, key)

	return nil
}

// Keys lists the keys of a collection
func (s *Storage) Keys(_ context.Context, collection string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.collections[collection]))
	for key := range s.collections[collection] {
		keys = append(keys, key)
	}

	return keys, nil
}

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
