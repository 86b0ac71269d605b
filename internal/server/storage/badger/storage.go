// Package badger implements storage.Store on top of Badger v3.
// Keys are laid out as "<collection>/<key>" in a single keyspace.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v3"

	"github.com/iudanet/phoneauth/internal/server/storage"
)

// Storage represents Badger storage implementation
type Storage struct {
	db *badger.DB
}

var _ storage.Store = (*Storage)(nil)

// New opens the Badger database in dir. An empty dir opens an
// in-memory database (useful for testing).
func New(dir string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(&badgerLogger{logger: logger}).
		WithDetectConflicts(true)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

func recordKey(collection, key string) []byte {
	return []byte(collection + "/" + key)
}

// Create stores value under key if the key is free.
// A concurrent writer to the same key makes the commit fail with
// ErrConflict, which is reported as ErrAlreadyExists.
func (s *Storage) Create(ctx context.Context, collection, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(recordKey(collection, key))
		if err == nil {
			return storage.ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("badger: get: %w", err)
		}
		return txn.Set(recordKey(collection, key), value)
	})
	if errors.Is(err, badger.ErrConflict) {
		return storage.ErrAlreadyExists
	}

	return err
}

// Read returns a copy of the value stored under key
func (s *Storage) Read(ctx context.Context, collection, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(collection, key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("badger: get: %w", err)
		}

		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Update replaces an existing value
func (s *Storage) Update(ctx context.Context, collection, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := s.mustExist(txn, collection, key); err != nil {
			return err
		}
		return txn.Set(recordKey(collection, key), value)
	})
}

// Delete removes an existing value
func (s *Storage) Delete(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := s.mustExist(txn, collection, key); err != nil {
			return err
		}
		return txn.Delete(recordKey(collection, key))
	})
}

func (s *Storage) mustExist(txn *badger.Txn, collection, key string) error {
	_, err := txn.Get(recordKey(collection, key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("badger: get: %w", err)
	}
	return nil
}

// Keys lists the keys of a collection
func (s *Storage) Keys(ctx context.Context, collection string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(collection + "/")
	keys := []string{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := string(it.Item().Key())
			keys = append(keys, strings.TrimPrefix(k, string(prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: iterate: %w", err)
	}

	return keys, nil
}

// badgerLogger направляет логи badger в slog
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
