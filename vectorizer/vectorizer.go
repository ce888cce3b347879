// Package vectorizer projects per-document token counts onto a shared vocabulary.
package vectorizer

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/opencontainers/go-digest"

	"github.com/botirk38/podcastsim/types"
	"github.com/botirk38/podcastsim/vocabulary"
)

// Frequencies is the dense n×|vocabulary| count matrix of a corpus, stored
// row-major. Row i belongs to IDs()[i].
type Frequencies struct {
	vocab   *vocabulary.Vocabulary
	ids     []string
	skipped []string
	data    []float64
}

// Vectorize builds one frequency vector per known document.
//
// Documents the source does not know are skipped and reported by Skipped.
// A token outside vocab means the vocabulary was built from a different
// corpus and aborts with types.ErrVocabularyMismatch. Negative counts and
// repeated ids are rejected before any vector is returned.
func Vectorize(ctx context.Context, vocab *vocabulary.Vocabulary, ids []string, source types.TokenSource) (*Frequencies, error) {
	if vocab == nil {
		return nil, fmt.Errorf("vocabulary cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("token source cannot be nil")
	}

	dim := vocab.Len()
	f := &Frequencies{
		vocab: vocab,
		ids:   make([]string, 0, len(ids)),
		data:  make([]float64, 0, len(ids)*dim),
	}

	var malformed *multierror.Error
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q", types.ErrDuplicateDocument, id)
		}
		seen[id] = struct{}{}

		counts, found, err := source.TokenCounts(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read token counts for %q: %w", id, err)
		}
		if !found {
			f.skipped = append(f.skipped, id)
			continue
		}

		row := make([]float64, dim)
		for token, count := range counts {
			idx, ok := vocab.Index(token)
			if !ok {
				return nil, fmt.Errorf("%w: document %q token %q", types.ErrVocabularyMismatch, id, token)
			}
			if count < 0 {
				malformed = multierror.Append(malformed, fmt.Errorf("%w: document %q token %q has %d", types.ErrNegativeCount, id, token, count))
				continue
			}
			row[idx] = float64(count)
		}

		f.ids = append(f.ids, id)
		f.data = append(f.data, row...)
	}

	if err := malformed.ErrorOrNil(); err != nil {
		return nil, err
	}

	return f, nil
}

// Vocabulary returns the vocabulary the vectors were built against.
func (f *Frequencies) Vocabulary() *vocabulary.Vocabulary {
	return f.vocab
}

// IDs returns the filtered, ordered document ids.
func (f *Frequencies) IDs() []string {
	return f.ids
}

// Skipped returns the ids that had no token data.
func (f *Frequencies) Skipped() []string {
	return f.skipped
}

// Len returns the number of vectors.
func (f *Frequencies) Len() int {
	return len(f.ids)
}

// Dim returns the shared vector length.
func (f *Frequencies) Dim() int {
	return f.vocab.Len()
}

// Row returns a read-only view of vector i.
func (f *Frequencies) Row(i int) []float64 {
	dim := f.Dim()
	return f.data[i*dim : (i+1)*dim : (i+1)*dim]
}

// Rows returns views of every vector, in id order.
func (f *Frequencies) Rows() [][]float64 {
	rows := make([][]float64, f.Len())
	for i := range rows {
		rows[i] = f.Row(i)
	}
	return rows
}

// Digest identifies the corpus content: the filtered ids, the vocabulary and
// every count. Equal corpora always produce equal digests.
func (f *Frequencies) Digest() digest.Digest {
	digester := digest.Canonical.Digester()
	h := digester.Hash()

	writeStrings(h, f.ids)
	writeStrings(h, f.vocab.Tokens())
	_ = binary.Write(h, binary.LittleEndian, f.data)

	return digester.Digest()
}

func writeStrings(w io.Writer, values []string) {
	_ = binary.Write(w, binary.LittleEndian, uint64(len(values)))
	for _, v := range values {
		_ = binary.Write(w, binary.LittleEndian, uint64(len(v)))
		_, _ = io.WriteString(w, v)
	}
}
