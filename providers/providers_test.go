package providers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botirk38/podcastsim/types"
)

func TestNewProvider(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		p, err := NewProvider(types.ProviderMemory, types.ProviderConfig{})
		require.NoError(t, err)
		assert.NotNil(t, p)
	})

	t.Run("CSVDir", func(t *testing.T) {
		p, err := NewProvider(types.ProviderCSVDir, types.ProviderConfig{Directory: t.TempDir()})
		require.NoError(t, err)
		assert.NoError(t, p.Close())
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := NewProvider("ftp", types.ProviderConfig{})
		assert.True(t, errors.Is(err, ErrUnsupportedProvider))
	})

	t.Run("Cached", func(t *testing.T) {
		src, err := NewProvider(types.ProviderMemory, types.ProviderConfig{})
		require.NoError(t, err)
		p, err := NewCachedProvider(src, 16)
		require.NoError(t, err)
		assert.NotNil(t, p)
	})
}
