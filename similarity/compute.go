package similarity

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Matrices bundles the three similarity matrices of one corpus.
// All three share the row/column order of the input rows.
type Matrices struct {
	NTFS *Matrix
	JTS  *Matrix
	WTDS *Matrix
}

// Equal reports whether all three matrices are bit-identical.
func (m *Matrices) Equal(other *Matrices) bool {
	return other != nil &&
		m.NTFS.Equal(other.NTFS) &&
		m.JTS.Equal(other.JTS) &&
		m.WTDS.Equal(other.WTDS)
}

// ProgressFunc receives the number of finished rows out of total.
// It is called from worker goroutines and must be safe for concurrent use.
type ProgressFunc func(done, total int)

// ComputeOption configures Compute
type ComputeOption func(*computeConfig)

type computeConfig struct {
	workers  int
	progress ProgressFunc
}

// WithWorkers bounds the number of rows computed concurrently.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) ComputeOption {
	return func(c *computeConfig) {
		c.workers = n
	}
}

// WithProgress installs a row-completion callback.
func WithProgress(fn ProgressFunc) ComputeOption {
	return func(c *computeConfig) {
		c.progress = fn
	}
}

// Validate checks that rows share one length and hold only finite,
// non-negative values. Every violation is reported, not just the first.
func Validate(rows [][]float64) error {
	var result *multierror.Error
	if len(rows) == 0 {
		return nil
	}

	dim := len(rows[0])
	for i, row := range rows {
		if len(row) != dim {
			result = multierror.Append(result, fmt.Errorf("%w: row %d has %d components, want %d", ErrRaggedVectors, i, len(row), dim))
			continue
		}
		for k, v := range row {
			switch {
			case math.IsNaN(v) || math.IsInf(v, 0):
				result = multierror.Append(result, fmt.Errorf("%w: row %d component %d", ErrNonFinite, i, k))
			case v < 0:
				result = multierror.Append(result, fmt.Errorf("%w: row %d component %d is %g", ErrNegativeCount, i, k, v))
			}
		}
	}

	return result.ErrorOrNil()
}

// Compute fills the NTFS, JTS and WTDS matrices for rows.
//
// Rows are validated first. Each row is then reduced once to its nonzero
// support with L2- and L1-derived weights, and the upper triangle is
// distributed row by row over a bounded worker pool. The task for row i
// owns cells (i, j) and (j, i) for j >= i, so no two workers write the
// same cell.
func Compute(ctx context.Context, rows [][]float64, opts ...ComputeOption) (*Matrices, error) {
	cfg := computeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}

	if err := Validate(rows); err != nil {
		return nil, err
	}

	n := len(rows)
	profiles := make([]profile, n)
	for i, row := range rows {
		profiles[i] = newProfile(row)
	}

	out := &Matrices{
		NTFS: NewMatrix(n),
		JTS:  NewMatrix(n),
		WTDS: NewMatrix(n),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)

	var done atomic.Int64
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			computeRow(out, profiles, i)
			if cfg.progress != nil {
				cfg.progress(int(done.Add(1)), n)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancellation that lands after the last task started is still a cancellation.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func computeRow(out *Matrices, profiles []profile, i int) {
	self := &profiles[i]
	if self.empty() {
		// The zero conventions leave the whole row and column at 0.
		return
	}

	out.NTFS.setSym(i, i, 1)
	out.JTS.setSym(i, i, 1)
	out.WTDS.setSym(i, i, 1)

	for j := i + 1; j < len(profiles); j++ {
		ntfs, jts, wtds := scores(self, &profiles[j])
		out.NTFS.setSym(i, j, ntfs)
		out.JTS.setSym(i, j, jts)
		out.WTDS.setSym(i, j, wtds)
	}
}
