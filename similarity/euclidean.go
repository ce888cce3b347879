package similarity

import "math"

// EuclideanDistance returns the L2 distance between a and b.
// Vectors of different lengths are incomparable and yield +Inf.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}

	return math.Sqrt(sum)
}
