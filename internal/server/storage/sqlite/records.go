package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/phoneauth/internal/server/storage"
)

// Create stores value under key.
// ON CONFLICT DO NOTHING makes the existence check and insert one statement.
func (s *Storage) Create(ctx context.Context, collection, key string, value []byte) error {
	query := `
		INSERT INTO records (collection, id, value)
		VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query, collection, key, value)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrAlreadyExists
	}

	return nil
}

// Read returns the value stored under key
func (s *Storage) Read(ctx context.Context, collection, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM records
		WHERE collection = ? AND id = ?
	`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, collection, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return value, nil
}

// Update replaces an existing value
func (s *Storage) Update(ctx context.Context, collection, key string, value []byte) error {
	query := `
		UPDATE records
		SET value = ?, updated_at = CURRENT_TIMESTAMP
		WHERE collection = ? AND id = ?
	`

	result, err := s.db.ExecContext(ctx, query, value, collection, key)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// Delete removes an existing value
func (s *Storage) Delete(ctx context.Context, collection, key string) error {
	query := `DELETE FROM records WHERE collection = ? AND id = ?`

	result, err := s.db.ExecContext(ctx, query, collection, key)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// Keys lists the keys of a collection
func (s *Storage) Keys(ctx context.Context, collection string) ([]string, error) {
	query := `SELECT id FROM records WHERE collection = ?`

	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query keys: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return keys, nil
}
