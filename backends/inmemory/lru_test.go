package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botirk38/podcastsim/similarity"
	"github.com/botirk38/podcastsim/types"
)

func emptySnapshot(t *testing.T, name string) *types.Snapshot {
	t.Helper()
	s, err := types.NewSnapshot(digest.FromString(name), nil, nil, &similarity.Matrices{
		NTFS: similarity.NewMatrix(0),
		JTS:  similarity.NewMatrix(0),
		WTDS: similarity.NewMatrix(0),
	}, time.Now())
	require.NoError(t, err)
	return s
}

func TestLRUStoreEviction(t *testing.T) {
	ctx := context.Background()
	store, err := NewLRUStore(types.BackendConfig{Capacity: 2})
	require.NoError(t, err)

	a, b, c := emptySnapshot(t, "a"), emptySnapshot(t, "b"), emptySnapshot(t, "c")
	require.NoError(t, store.Save(ctx, a))
	require.NoError(t, store.Save(ctx, b))

	// Touch a so b becomes the eviction candidate.
	_, found, err := store.Load(ctx, a.Version)
	require.NoError(t, err)
	require.True(t, found)

	require.NoError(t, store.Save(ctx, c))
	assert.Equal(t, 2, store.Len())

	_, found, _ = store.Load(ctx, b.Version)
	assert.False(t, found)

	latest, found, err := store.Latest(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Same(t, c, latest)
}

func TestLRUStoreDefaults(t *testing.T) {
	store, err := NewLRUStore(types.BackendConfig{})
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < DefaultCapacity+1; i++ {
		require.NoError(t, store.Save(ctx, emptySnapshot(t, string(rune('a'+i)))))
	}
	assert.Equal(t, DefaultCapacity, store.Len())

	_, err = NewLRUStore(types.BackendConfig{Capacity: -1})
	assert.Error(t, err)

	assert.ErrorIs(t, store.Save(ctx, nil), types.ErrNoSnapshot)
}
