// Package vocabulary builds the global, ordered token vocabulary of a corpus.
package vocabulary

import (
	"context"
	"fmt"
	"sort"

	"github.com/botirk38/podcastsim/types"
)

// Vocabulary assigns every distinct token of a corpus a stable position.
// Tokens are ordered lexicographically, so two builds over the same corpus
// produce the same index regardless of map iteration order.
type Vocabulary struct {
	tokens []string
	index  map[string]int
}

// Build scans the token counts of every id and returns their union.
// Ids the source does not know are skipped; any other source error aborts.
func Build(ctx context.Context, ids []string, source types.TokenSource) (*Vocabulary, error) {
	if source == nil {
		return nil, fmt.Errorf("token source cannot be nil")
	}

	seen := make(map[string]struct{})
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		counts, found, err := source.TokenCounts(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read token counts for %q: %w", id, err)
		}
		if !found {
			continue
		}

		for token := range counts {
			seen[token] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(seen))
	for token := range seen {
		tokens = append(tokens, token)
	}
	return FromTokens(tokens)
}

// FromTokens builds a vocabulary from an explicit token list, e.g. one
// restored from a stored snapshot. Duplicates are rejected.
func FromTokens(tokens []string) (*Vocabulary, error) {
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)

	index := make(map[string]int, len(sorted))
	for i, token := range sorted {
		if _, dup := index[token]; dup {
			return nil, fmt.Errorf("duplicate vocabulary token %q", token)
		}
		index[token] = i
	}

	return &Vocabulary{tokens: sorted, index: index}, nil
}

// Len returns the number of tokens.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Tokens returns the ordered token list. Callers must not modify it.
func (v *Vocabulary) Tokens() []string {
	return v.tokens
}

// Index returns the position of token.
func (v *Vocabulary) Index(token string) (int, bool) {
	i, ok := v.index[token]
	return i, ok
}

// Token returns the token at position i.
func (v *Vocabulary) Token(i int) string {
	return v.tokens[i]
}
