package vectorizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botirk38/podcastsim/providers/memory"
	"github.com/botirk38/podcastsim/types"
	"github.com/botirk38/podcastsim/vocabulary"
)

func corpus() *memory.MemoryProvider {
	return memory.NewMemoryProvider(map[string]types.TokenCounts{
		"A": {"cat": 3, "dog": 1},
		"B": {"cat": 3, "dog": 1},
		"C": {"fish": 5},
		"D": {},
	})
}

func TestVectorize(t *testing.T) {
	ctx := context.Background()
	src := corpus()
	ids := []string{"A", "ghost", "B", "C", "D"}

	vocab, err := vocabulary.Build(ctx, ids, src)
	require.NoError(t, err)

	f, err := Vectorize(ctx, vocab, ids, src)
	require.NoError(t, err)

	t.Run("FilteredOrder", func(t *testing.T) {
		assert.Equal(t, []string{"A", "B", "C", "D"}, f.IDs())
		assert.Equal(t, []string{"ghost"}, f.Skipped())
		assert.Equal(t, 4, f.Len())
		assert.Equal(t, 3, f.Dim())
	})

	t.Run("Rows", func(t *testing.T) {
		// vocabulary order: cat, dog, fish
		assert.Equal(t, []float64{3, 1, 0}, f.Row(0))
		assert.Equal(t, []float64{3, 1, 0}, f.Row(1))
		assert.Equal(t, []float64{0, 0, 5}, f.Row(2))
		assert.Equal(t, []float64{0, 0, 0}, f.Row(3))
		assert.Len(t, f.Rows(), 4)
	})

	t.Run("Digest", func(t *testing.T) {
		again, err := Vectorize(ctx, vocab, ids, src)
		require.NoError(t, err)
		assert.Equal(t, f.Digest(), again.Digest())
		assert.NoError(t, f.Digest().Validate())

		other, err := Vectorize(ctx, vocab, []string{"B", "A"}, src)
		require.NoError(t, err)
		assert.NotEqual(t, f.Digest(), other.Digest())
	})
}

func TestVectorizeErrors(t *testing.T) {
	ctx := context.Background()
	src := corpus()

	t.Run("VocabularyMismatch", func(t *testing.T) {
		vocab, err := vocabulary.FromTokens([]string{"cat"})
		require.NoError(t, err)
		_, err = Vectorize(ctx, vocab, []string{"A"}, src)
		assert.True(t, errors.Is(err, types.ErrVocabularyMismatch))
	})

	t.Run("NegativeCount", func(t *testing.T) {
		bad := memory.NewMemoryProvider(map[string]types.TokenCounts{"X": {"cat": -1}, "Y": {"cat": -2}})
		vocab, err := vocabulary.Build(ctx, []string{"X", "Y"}, bad)
		require.NoError(t, err)
		_, err = Vectorize(ctx, vocab, []string{"X", "Y"}, bad)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNegativeCount))
		assert.Contains(t, err.Error(), "2 errors occurred")
	})

	t.Run("DuplicateID", func(t *testing.T) {
		vocab, err := vocabulary.Build(ctx, []string{"A"}, src)
		require.NoError(t, err)
		_, err = Vectorize(ctx, vocab, []string{"A", "A"}, src)
		assert.True(t, errors.Is(err, types.ErrDuplicateDocument))
	})

	t.Run("NilArguments", func(t *testing.T) {
		vocab, _ := vocabulary.FromTokens(nil)
		_, err := Vectorize(ctx, nil, nil, src)
		assert.Error(t, err)
		_, err = Vectorize(ctx, vocab, nil, nil)
		assert.Error(t, err)
	})

	t.Run("EmptyCorpus", func(t *testing.T) {
		vocab, _ := vocabulary.FromTokens(nil)
		f, err := Vectorize(ctx, vocab, nil, src)
		require.NoError(t, err)
		assert.Equal(t, 0, f.Len())
		assert.Empty(t, f.Rows())
	})
}
