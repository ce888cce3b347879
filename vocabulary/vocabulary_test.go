package vocabulary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botirk38/podcastsim/providers/memory"
	"github.com/botirk38/podcastsim/types"
)

type failingSource struct{}

func (failingSource) TokenCounts(ctx context.Context, id string) (types.TokenCounts, bool, error) {
	return nil, false, errors.New("source down")
}

func (failingSource) Close() error { return nil }

func TestBuild(t *testing.T) {
	ctx := context.Background()
	src := memory.NewMemoryProvider(map[string]types.TokenCounts{
		"A": {"cat": 3, "dog": 1},
		"B": {"cat": 3, "dog": 1},
		"C": {"fish": 5},
		"D": {},
	})

	t.Run("Union", func(t *testing.T) {
		v, err := Build(ctx, []string{"A", "B", "C", "D"}, src)
		require.NoError(t, err)
		assert.Equal(t, []string{"cat", "dog", "fish"}, v.Tokens())
		assert.Equal(t, 3, v.Len())

		i, ok := v.Index("fish")
		assert.True(t, ok)
		assert.Equal(t, "fish", v.Token(i))

		_, ok = v.Index("owl")
		assert.False(t, ok)
	})

	t.Run("SkipsMissing", func(t *testing.T) {
		v, err := Build(ctx, []string{"C", "ghost"}, src)
		require.NoError(t, err)
		assert.Equal(t, []string{"fish"}, v.Tokens())
	})

	t.Run("Empty", func(t *testing.T) {
		v, err := Build(ctx, nil, src)
		require.NoError(t, err)
		assert.Equal(t, 0, v.Len())
	})

	t.Run("OrderIndependent", func(t *testing.T) {
		v1, err := Build(ctx, []string{"A", "C"}, src)
		require.NoError(t, err)
		v2, err := Build(ctx, []string{"C", "A"}, src)
		require.NoError(t, err)
		assert.Equal(t, v1.Tokens(), v2.Tokens())
	})

	t.Run("SourceError", func(t *testing.T) {
		_, err := Build(ctx, []string{"A"}, failingSource{})
		assert.Error(t, err)
	})

	t.Run("NilSource", func(t *testing.T) {
		_, err := Build(ctx, []string{"A"}, nil)
		assert.Error(t, err)
	})

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Build(cctx, []string{"A"}, src)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestFromTokens(t *testing.T) {
	input := []string{"b", "a", "c"}
	v, err := FromTokens(input)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, v.Tokens())
	assert.Equal(t, []string{"b", "a", "c"}, input, "input must not be reordered")

	_, err = FromTokens([]string{"a", "a"})
	assert.Error(t, err)
}
