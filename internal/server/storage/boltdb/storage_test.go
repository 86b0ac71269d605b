package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/phoneauth/internal/server/storage"
	"github.com/iudanet/phoneauth/internal/server/storage/storagetest"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func TestStorage_Conformance(t *testing.T) {
	storagetest.Run(t, setupTestStorage(t))
}

func TestNew_CreatesBuckets(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "server.db")

	s, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, s.Close())
	}()

	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	err = s.db.View(func(tx *bbolt.Tx) error {
		for _, b := range []string{storage.CollectionUsers, storage.CollectionTokens} {
			if tx.Bucket([]byte(b)) == nil {
				return os.ErrNotExist
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "missing-dir", "server.db"))
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "server.db")

	s, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, storage.CollectionUsers, "12345678901", []byte(`{"phone":"12345678901"}`)))
	require.NoError(t, s.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() {
		_ = reopened.Close()
	}()

	value, err := reopened.Read(ctx, storage.CollectionUsers, "12345678901")
	require.NoError(t, err)
	assert.JSONEq(t, `{"phone":"12345678901"}`, string(value))
}

func TestClose_Twice(t *testing.T) {
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.Nil(t, s.db)
	assert.NoError(t, s.Close())
}

func TestStorage_CanceledContext(t *testing.T) {
	s := setupTestStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Create(ctx, storage.CollectionUsers, "12345678901", []byte(`{}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStorage_UseAfterClose(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, storage.CollectionTokens, "abcdefghijklmnopqrst", []byte(`{}`)))

	require.NoError(t, s.Close())
	// Повторный Close безопасен
	require.NoError(t, s.Close())

	_, err = s.Keys(ctx, storage.CollectionTokens)
	assert.ErrorIs(t, err, storage.ErrClosed)
	_, err = s.Read(ctx, storage.CollectionTokens, "abcdefghijklmnopqrst")
	assert.ErrorIs(t, err, storage.ErrClosed)
	assert.ErrorIs(t, s.Create(ctx, storage.CollectionUsers, "12345678901", []byte(`{}`)), storage.ErrClosed)
	assert.ErrorIs(t, s.Update(ctx, storage.CollectionTokens, "abcdefghijklmnopqrst", []byte(`{}`)), storage.ErrClosed)
	assert.ErrorIs(t, s.Delete(ctx, storage.CollectionTokens, "abcdefghijklmnopqrst"), storage.ErrClosed)

	// Records возвращает ту же причину
	records := storage.NewRecords(s, 0)
	_, err = records.DeleteExpiredTokens(ctx, time.Now())
	assert.ErrorIs(t, err, storage.ErrClosed)
}
