package local

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botirk38/podcastsim/similarity"
	"github.com/botirk38/podcastsim/types"
)

func TestBoltStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")

	m, err := similarity.Compute(ctx, [][]float64{{1, 2}, {2, 1}, {0, 0}})
	require.NoError(t, err)
	s, err := types.NewSnapshot(digest.FromString("persist"), []string{"a", "b", "z"}, []string{"x", "y"}, m, time.Now().UTC())
	require.NoError(t, err)

	store, err := NewBoltStore(types.BackendConfig{Path: path})
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(types.BackendConfig{Path: path, Timeout: 2 * time.Second})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, found, err := reopened.Latest(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, s.Version, got.Version)
	assert.Equal(t, s.Vocabulary, got.Vocabulary)
	assert.True(t, s.WTDS.Equal(got.WTDS))
}

func TestBoltStoreRequiresPath(t *testing.T) {
	_, err := NewBoltStore(types.BackendConfig{})
	assert.ErrorIs(t, err, ErrNoPath)
}
