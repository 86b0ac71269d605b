// Package storagetest holds the conformance suite every storage.Store
// implementation is expected to pass.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/phoneauth/internal/server/storage"
)

// Run exercises store against the storage.Store contract.
// The store must be empty when passed in.
func Run(t *testing.T, store storage.Store) {
	t.Helper()

	t.Run("create and read", func(t *testing.T) { testCreateRead(t, store) })
	t.Run("create existing key", func(t *testing.T) { testCreateExisting(t, store) })
	t.Run("read missing key", func(t *testing.T) { testReadMissing(t, store) })
	t.Run("update", func(t *testing.T) { testUpdate(t, store) })
	t.Run("delete", func(t *testing.T) { testDelete(t, store) })
	t.Run("collections are isolated", func(t *testing.T) { testIsolation(t, store) })
	t.Run("keys", func(t *testing.T) { testKeys(t, store) })
	t.Run("concurrent create", func(t *testing.T) { testConcurrentCreate(t, store) })
}

func testCreateRead(t *testing.T, store storage.Store) {
	ctx := context.Background()

	err := store.Create(ctx, "users", "11111111111", []byte(`{"phone":"11111111111"}`))
	require.NoError(t, err)

	value, err := store.Read(ctx, "users", "11111111111")
	require.NoError(t, err)
	assert.JSONEq(t, `{"phone":"11111111111"}`, string(value))
}

func testCreateExisting(t *testing.T, store storage.Store) {
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "users", "22222222222", []byte(`{"v":1}`)))

	err := store.Create(ctx, "users", "22222222222", []byte(`{"v":2}`))
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	// Первая запись не должна быть перезаписана
	value, err := store.Read(ctx, "users", "22222222222")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(value))
}

func testReadMissing(t *testing.T, store storage.Store) {
	ctx := context.Background()

	value, err := store.Read(ctx, "users", "does-not-exist")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Nil(t, value)

	_, err = store.Read(ctx, "never-used-collection", "key")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testUpdate(t *testing.T, store storage.Store) {
	ctx := context.Background()

	err := store.Update(ctx, "users", "33333333333", []byte(`{"v":1}`))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Create(ctx, "users", "33333333333", []byte(`{"v":1}`)))
	require.NoError(t, store.Update(ctx, "users", "33333333333", []byte(`{"v":2}`)))

	value, err := store.Read(ctx, "users", "33333333333")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(value))
}

func testDelete(t *testing.T, store storage.Store) {
	ctx := context.Background()

	err := store.Delete(ctx, "users", "44444444444")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Create(ctx, "users", "44444444444", []byte(`{}`)))
	require.NoError(t, store.Delete(ctx, "users", "44444444444"))

	_, err = store.Read(ctx, "users", "44444444444")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = store.Delete(ctx, "users", "44444444444")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testIsolation(t *testing.T, store storage.Store) {
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "users", "shared-key", []byte(`{"kind":"user"}`)))
	require.NoError(t, store.Create(ctx, "tokens", "shared-key", []byte(`{"kind":"token"}`)))

	user, err := store.Read(ctx, "users", "shared-key")
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"user"}`, string(user))

	token, err := store.Read(ctx, "tokens", "shared-key")
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"token"}`, string(token))
}

func testKeys(t *testing.T, store storage.Store) {
	ctx := context.Background()

	keys, err := store.Keys(ctx, "empty-collection")
	require.NoError(t, err)
	assert.Empty(t, keys)

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, store.Create(ctx, "keys-test", key, []byte(`{}`)))
	}

	keys, err = store.Keys(ctx, "keys-test")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)
}

func testConcurrentCreate(t *testing.T, store storage.Store) {
	ctx := context.Background()
	const workers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.Create(ctx, "race", "55555555555", []byte(fmt.Sprintf(`{"worker":%d}`, i)))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "exactly one concurrent create must win")
}
