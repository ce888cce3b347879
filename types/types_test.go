package types

import (
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botirk38/podcastsim/similarity"
)

func TestTokenCountsTotal(t *testing.T) {
	assert.Equal(t, 0, TokenCounts(nil).Total())
	assert.Equal(t, 0, TokenCounts{}.Total())
	assert.Equal(t, 9, TokenCounts{"cat": 3, "dog": 1, "fish": 5}.Total())
}

func TestNewSnapshot(t *testing.T) {
	m := &similarity.Matrices{NTFS: similarity.NewMatrix(2), JTS: similarity.NewMatrix(2), WTDS: similarity.NewMatrix(2)}

	s, err := NewSnapshot(digest.FromString("v"), []string{"a", "b"}, nil, m, time.Now())
	require.NoError(t, err)
	pos, ok := s.Position("b")
	assert.True(t, ok)
	assert.Equal(t, 1, pos)
	_, ok = s.Position("z")
	assert.False(t, ok)

	_, err = NewSnapshot(digest.FromString("v"), []string{"a", "a"}, nil, m, time.Now())
	assert.ErrorIs(t, err, ErrDuplicateDocument)

	_, err = NewSnapshot(digest.FromString("v"), []string{"a"}, nil, m, time.Now())
	assert.ErrorIs(t, err, ErrMalformedSnapshot)

	_, err = NewSnapshot(digest.FromString("v"), nil, nil, nil, time.Now())
	assert.ErrorIs(t, err, ErrMalformedSnapshot)
}
