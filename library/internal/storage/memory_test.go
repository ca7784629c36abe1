package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Opnex/Ai-Developer-Library/library/internal/storage"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	_, err := store.Get(ctx, storage.KeyBooks)
	require.ErrorIs(t, err, storage.ErrNoKey)

	require.NoError(t, store.Set(ctx, storage.KeyBooks, []byte(`[]`)))
	got, err := store.Get(ctx, storage.KeyBooks)
	require.NoError(t, err)
	require.Equal(t, []byte(`[]`), got)

	// the store hands out copies, not aliases into its map
	got[0] = 'x'
	again, err := store.Get(ctx, storage.KeyBooks)
	require.NoError(t, err)
	require.Equal(t, []byte(`[]`), again)

	require.NoError(t, store.Remove(ctx, storage.KeyBooks))
	_, err = store.Get(ctx, storage.KeyBooks)
	require.ErrorIs(t, err, storage.ErrNoKey)

	// removing an absent key is not an error
	require.NoError(t, store.Remove(ctx, storage.KeyBooks))
}
