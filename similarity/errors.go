package similarity

import "errors"

// Validation errors raised before any pairwise work starts
var (
	// ErrRaggedVectors indicates rows of different lengths
	ErrRaggedVectors = errors.New("frequency vectors have different lengths")

	// ErrNegativeCount indicates a negative component
	ErrNegativeCount = errors.New("negative token count")

	// ErrNonFinite indicates a NaN or infinite component
	ErrNonFinite = errors.New("non-finite token count")

	// ErrShapeMismatch indicates a raw buffer that does not hold n*n values
	ErrShapeMismatch = errors.New("matrix data does not match its size")
)
