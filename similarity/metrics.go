package similarity

// CosineSimilarity computes the NTFS score: cosine similarity of the
// L2-normalized vectors. Returns 0 if either vector is all zeros, empty,
// or the lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	ntfs, _, _ := pairScores(a, b)
	return ntfs
}

// WeightedJaccardSimilarity computes the JTS score: sum(min) / sum(max)
// over the raw counts. Returns 0 when the denominator is zero.
func WeightedJaccardSimilarity(a, b []float64) float64 {
	_, jts, _ := pairScores(a, b)
	return jts
}

// BhattacharyyaSimilarity computes the WTDS score: sum(sqrt(p*q)) over the
// L1-normalized vectors. Returns 0 when either vector sums to zero.
func BhattacharyyaSimilarity(a, b []float64) float64 {
	_, _, wtds := pairScores(a, b)
	return wtds
}

func pairScores(a, b []float64) (float64, float64, float64) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, 0, 0
	}
	pa, pb := newProfile(a), newProfile(b)
	return scores(&pa, &pb)
}
