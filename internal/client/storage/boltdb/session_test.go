package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/phoneauth/internal/client/storage"
)

// создаём тестовое BoltDB хранилище
func createTestStorage(t *testing.T) *Storage {
	t.Helper()

	store, err := New(context.Background(), filepath.Join(t.TempDir(), "session_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestStorage_SaveGetDeleteSession(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	session := &storage.Session{
		Phone:   "12345678901",
		TokenID: "abcdefghijklmnopqrst",
		Expires: time.Now().Add(time.Hour).UnixMilli(),
	}

	// До сохранения сессии нет
	_, err := store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	require.NoError(t, store.SaveSession(ctx, session))

	got, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, got)

	// Повторное сохранение заменяет сессию
	session.TokenID = "tsrqponmlkjihgfedcba"
	require.NoError(t, store.SaveSession(ctx, session))
	got, err = store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tsrqponmlkjihgfedcba", got.TokenID)

	require.NoError(t, store.DeleteSession(ctx))

	_, err = store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.ErrorIs(t, store.DeleteSession(ctx), storage.ErrSessionNotFound)
}

func TestStorage_IsAuthenticated(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	now := time.Now()

	ok, err := store.IsAuthenticated(ctx, now)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveSession(ctx, &storage.Session{
		Phone:   "12345678901",
		TokenID: "abcdefghijklmnopqrst",
		Expires: now.Add(time.Minute).UnixMilli(),
	}))

	ok, err = store.IsAuthenticated(ctx, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsAuthenticated(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_Closed(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.SaveSession(ctx, &storage.Session{}), storage.ErrStorageClosed)
	_, err = store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, store.DeleteSession(ctx), storage.ErrStorageClosed)
}
