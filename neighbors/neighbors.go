// Package neighbors ranks the documents of a snapshot by their composite
// distance to a query document.
//
// The composite distance treats (1, 1, 1), maximal similarity on all three
// metrics, as the ideal point and measures how far a document's
// (NTFS, JTS, WTDS) scores against the query lie from it.
package neighbors

import (
	"fmt"
	"sort"

	"github.com/botirk38/podcastsim/similarity"
	"github.com/botirk38/podcastsim/types"
)

// DefaultK is the neighbor count used when callers do not choose one.
const DefaultK = 5

var ideal = []float64{1, 1, 1}

// Neighbor is one ranked document with the scores that placed it.
type Neighbor struct {
	ID       string  `json:"id"`
	Distance float64 `json:"distance"`
	NTFS     float64 `json:"ntfs"`
	JTS      float64 `json:"jts"`
	WTDS     float64 `json:"wtds"`
}

// Distance returns the composite distance of three scores from (1, 1, 1).
func Distance(ntfs, jts, wtds float64) float64 {
	return similarity.EuclideanDistance([]float64{ntfs, jts, wtds}, ideal)
}

func neighborAt(s *types.Snapshot, q, j int) Neighbor {
	n := Neighbor{
		ID:   s.IDs[j],
		NTFS: s.NTFS.At(q, j),
		JTS:  s.JTS.At(q, j),
		WTDS: s.WTDS.At(q, j),
	}
	n.Distance = Distance(n.NTFS, n.JTS, n.WTDS)
	return n
}

// empty reports whether document j has no tokens. Only an all-zero row has
// a 0 diagonal.
func empty(s *types.Snapshot, j int) bool {
	return s.NTFS.At(j, j) == 0
}

// Rank returns every document except id, ascending by distance. Among equal
// distances documents with tokens come before all-zero ones, then the
// snapshot's document order decides. The snapshot is only read.
func Rank(s *types.Snapshot, id string) ([]Neighbor, error) {
	if s == nil {
		return nil, types.ErrNoSnapshot
	}
	q, ok := s.Position(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrDocumentNotFound, id)
	}

	type candidate struct {
		Neighbor
		empty bool
	}
	candidates := make([]candidate, 0, s.Len()-1)
	for j := range s.IDs {
		if j == q {
			continue
		}
		candidates = append(candidates, candidate{Neighbor: neighborAt(s, q, j), empty: empty(s, j)})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.Distance != cb.Distance {
			return ca.Distance < cb.Distance
		}
		return !ca.empty && cb.empty
	})

	ranked := make([]Neighbor, len(candidates))
	for i, c := range candidates {
		ranked[i] = c.Neighbor
	}
	return ranked, nil
}

// Nearest returns the first k entries of Rank. k <= 0 returns the full ranking.
func Nearest(s *types.Snapshot, id string, k int) ([]Neighbor, error) {
	ranked, err := Rank(s, id)
	if err != nil {
		return nil, err
	}
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}

// Compare returns the scores of other as seen from id.
func Compare(s *types.Snapshot, id, other string) (Neighbor, error) {
	if s == nil {
		return Neighbor{}, types.ErrNoSnapshot
	}
	q, ok := s.Position(id)
	if !ok {
		return Neighbor{}, fmt.Errorf("%w: %q", types.ErrDocumentNotFound, id)
	}
	j, ok := s.Position(other)
	if !ok {
		return Neighbor{}, fmt.Errorf("%w: %q", types.ErrDocumentNotFound, other)
	}
	return neighborAt(s, q, j), nil
}
