package similarity

import "fmt"

// Matrix is a square, symmetric matrix stored row-major in one buffer.
// A Matrix handed out by Compute is never modified again.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix allocates an n×n zero matrix.
func NewMatrix(n int) *Matrix {
	if n < 0 {
		n = 0
	}
	return &Matrix{n: n, data: make([]float64, n*n)}
}

// NewMatrixFrom wraps an existing row-major buffer. The buffer is not copied.
func NewMatrixFrom(n int, data []float64) (*Matrix, error) {
	if n < 0 || len(data) != n*n {
		return nil, fmt.Errorf("%w: size %d, %d values", ErrShapeMismatch, n, len(data))
	}
	return &Matrix{n: n, data: data}, nil
}

// Size returns the number of rows (and columns).
func (m *Matrix) Size() int {
	return m.n
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// Row returns a read-only view of row i.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.n : (i+1)*m.n : (i+1)*m.n]
}

// RawData returns the underlying row-major buffer.
func (m *Matrix) RawData() []float64 {
	return m.data
}

// setSym writes v to (i, j) and (j, i).
func (m *Matrix) setSym(i, j int, v float64) {
	m.data[i*m.n+j] = v
	m.data[j*m.n+i] = v
}

// IsSymmetric reports whether M[i,j] == M[j,i] for every cell.
func (m *Matrix) IsSymmetric() bool {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if m.At(i, j) != m.At(j, i) {
				return false
			}
		}
	}
	return true
}

// Equal reports whether both matrices hold bit-identical values.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || m.n != other.n {
		return false
	}
	for i, v := range m.data {
		if v != other.data[i] {
			return false
		}
	}
	return true
}
