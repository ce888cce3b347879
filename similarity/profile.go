package similarity

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// profile holds everything the pair loop needs about one row, computed once.
// Values are stored only at the row's nonzero positions (support), ascending.
type profile struct {
	support []int
	raw     []float64
	unit    []float64 // L2-normalized
	root    []float64 // sqrt of L1-normalized
	sum     float64
}

func newProfile(row []float64) profile {
	var p profile
	for k, v := range row {
		if v != 0 {
			p.support = append(p.support, k)
			p.raw = append(p.raw, v)
		}
	}
	if len(p.raw) == 0 {
		return p
	}

	p.sum = floats.Sum(p.raw)
	p.unit = floats.ScaleTo(make([]float64, len(p.raw)), 1/floats.Norm(p.raw, 2), p.raw)
	p.root = floats.ScaleTo(make([]float64, len(p.raw)), 1/p.sum, p.raw)
	for i, v := range p.root {
		p.root[i] = math.Sqrt(v)
	}
	return p
}

func (p *profile) empty() bool {
	return len(p.support) == 0
}

// scores returns NTFS, JTS and WTDS for two rows.
// Only the shared support contributes to any of the three sums:
// sum(max) is recovered as sum(a) + sum(b) - sum(min).
// Identical rows score exactly 1 on all three metrics, like the diagonal.
func scores(a, b *profile) (ntfs, jts, wtds float64) {
	if a.empty() || b.empty() {
		return 0, 0, 0
	}

	identical := len(a.support) == len(b.support)
	var dot, root, shared float64
	i, j := 0, 0
	for i < len(a.support) && j < len(b.support) {
		switch ai, bj := a.support[i], b.support[j]; {
		case ai < bj:
			identical = false
			i++
		case ai > bj:
			identical = false
			j++
		default:
			if a.raw[i] != b.raw[j] {
				identical = false
			}
			dot += a.unit[i] * b.unit[j]
			root += a.root[i] * b.root[j]
			shared += math.Min(a.raw[i], b.raw[j])
			i++
			j++
		}
	}
	if identical {
		return 1, 1, 1
	}

	return clamp(dot), clamp(shared / (a.sum + b.sum - shared)), clamp(root)
}

// clamp folds floating-point overshoot back into [0, 1].
func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
