package podcastsim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"

	"github.com/botirk38/podcastsim/neighbors"
	"github.com/botirk38/podcastsim/options"
	"github.com/botirk38/podcastsim/similarity"
	"github.com/botirk38/podcastsim/types"
	"github.com/botirk38/podcastsim/vectorizer"
	"github.com/botirk38/podcastsim/vocabulary"
)

// Engine builds similarity snapshots from a token source and answers
// neighbor queries against the currently published one.
//
// Queries read an immutable snapshot through an atomic pointer, so they
// never block on a running build and never see a partially built matrix.
type Engine struct {
	source   types.TokenSource
	store    types.SnapshotStore
	logger   logrus.FieldLogger
	workers  int
	progress similarity.ProgressFunc

	current atomic.Pointer[types.Snapshot]
	queries *lru.Cache[queryKey, []neighbors.Neighbor]
	buildMu sync.Mutex
}

type queryKey struct {
	version digest.Digest
	id      string
	k       int
}

// New creates an Engine with functional options. If any option or the
// final validation fails, sources and stores opened by earlier options are
// closed before the error is returned.
func New(opts ...options.Option) (*Engine, error) {
	cfg := options.NewConfig()

	if err := cfg.Apply(opts...); err != nil {
		return nil, abandon(cfg, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, abandon(cfg, err)
	}

	e, err := newEngine(cfg)
	if err != nil {
		return nil, abandon(cfg, err)
	}
	return e, nil
}

// abandon releases what cfg holds and returns err, joined with any close
// failures.
func abandon(cfg *options.Config, err error) error {
	var result *multierror.Error
	if cfg.Source != nil {
		if cerr := cfg.Source.Close(); cerr != nil {
			result = multierror.Append(result, cerr)
		}
	}
	if cfg.Store != nil {
		if cerr := cfg.Store.Close(); cerr != nil {
			result = multierror.Append(result, cerr)
		}
	}
	if result == nil {
		return err
	}
	return multierror.Append(err, result.Errors...)
}

// NewEngine creates an engine over source with default settings. store may
// be nil, in which case snapshots live only in memory.
func NewEngine(source types.TokenSource, store types.SnapshotStore) (*Engine, error) {
	if source == nil {
		return nil, errors.New("source cannot be nil")
	}

	cfg := options.NewConfig()
	cfg.Source = source
	cfg.Store = store
	return newEngine(cfg)
}

func newEngine(cfg *options.Config) (*Engine, error) {
	e := &Engine{
		source:   cfg.Source,
		store:    cfg.Store,
		logger:   cfg.Logger,
		workers:  cfg.Workers,
		progress: cfg.Progress,
	}

	if cfg.QueryCacheSize > 0 {
		queries, err := lru.New[queryKey, []neighbors.Neighbor](cfg.QueryCacheSize)
		if err != nil {
			return nil, err
		}
		e.queries = queries
	}
	return e, nil
}

// Build computes a snapshot for ids, saves it to the store when one is
// configured and publishes it.
//
// Ids without token data are skipped and logged. Building the same corpus
// twice yields the same version and bit-identical matrices.
func (e *Engine) Build(ctx context.Context, ids []string) (*types.Snapshot, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	start := time.Now()

	vocab, err := vocabulary.Build(ctx, ids, e.source)
	if err != nil {
		return nil, err
	}

	freqs, err := vectorizer.Vectorize(ctx, vocab, ids, e.source)
	if err != nil {
		return nil, err
	}
	for _, id := range freqs.Skipped() {
		e.logger.WithField("id", id).Warn("No token data for document, skipping")
	}

	m, err := similarity.Compute(ctx, freqs.Rows(),
		similarity.WithWorkers(e.workers),
		similarity.WithProgress(e.progress),
	)
	if err != nil {
		return nil, err
	}

	s, err := types.NewSnapshot(freqs.Digest(), freqs.IDs(), vocab.Tokens(), m, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if e.store != nil {
		if err := e.store.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("failed to save snapshot %s: %w", s.Version, err)
		}
	}

	e.publish(s)
	e.logger.WithFields(logrus.Fields{
		"version":    s.Version,
		"documents":  s.Len(),
		"vocabulary": len(s.Vocabulary),
		"skipped":    len(freqs.Skipped()),
		"elapsed":    time.Since(start),
	}).Info("Built snapshot")

	return s, nil
}

// Publish makes s the snapshot answered by queries.
func (e *Engine) Publish(s *types.Snapshot) error {
	if s == nil {
		return types.ErrNoSnapshot
	}
	e.publish(s)
	return nil
}

func (e *Engine) publish(s *types.Snapshot) {
	e.current.Store(s)
	if e.queries != nil {
		e.queries.Purge()
	}
}

// Current returns the published snapshot, or nil before the first build or load.
func (e *Engine) Current() *types.Snapshot {
	return e.current.Load()
}

// Load fetches a stored snapshot by version and publishes it.
func (e *Engine) Load(ctx context.Context, version digest.Digest) (*types.Snapshot, error) {
	if e.store == nil {
		return nil, types.ErrNoStore
	}

	s, found, err := e.store.Load(ctx, version)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: version %s", types.ErrNoSnapshot, version)
	}

	e.publish(s)
	e.logger.WithFields(logrus.Fields{
		"version":   s.Version,
		"documents": s.Len(),
	}).Info("Loaded snapshot")
	return s, nil
}

// LoadLatest fetches the most recently saved snapshot and publishes it.
func (e *Engine) LoadLatest(ctx context.Context) (*types.Snapshot, error) {
	if e.store == nil {
		return nil, types.ErrNoStore
	}

	s, found, err := e.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.ErrNoSnapshot
	}

	e.publish(s)
	e.logger.WithFields(logrus.Fields{
		"version":   s.Version,
		"documents": s.Len(),
	}).Info("Loaded latest snapshot")
	return s, nil
}

// Versions lists the versions held by the store.
func (e *Engine) Versions(ctx context.Context) ([]digest.Digest, error) {
	if e.store == nil {
		return nil, types.ErrNoStore
	}
	return e.store.Versions(ctx)
}

// Neighbors returns up to k documents closest to id in the published
// snapshot, nearest first.
func (e *Engine) Neighbors(ctx context.Context, id string, k int) ([]neighbors.Neighbor, error) {
	return e.NeighborsIn(ctx, e.Current(), id, k)
}

// NeighborsIn answers a neighbor query against s rather than whatever is
// published at call time, so callers can report the version they ranked.
func (e *Engine) NeighborsIn(ctx context.Context, s *types.Snapshot, id string, k int) ([]neighbors.Neighbor, error) {
	if k <= 0 {
		return nil, errors.New("k must be positive")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, types.ErrNoSnapshot
	}

	key := queryKey{version: s.Version, id: id, k: k}
	if e.queries != nil {
		if hit, ok := e.queries.Get(key); ok {
			return append([]neighbors.Neighbor(nil), hit...), nil
		}
	}

	result, err := neighbors.Nearest(s, id, k)
	if err != nil {
		return nil, err
	}

	if e.queries != nil {
		e.queries.Add(key, append([]neighbors.Neighbor(nil), result...))
	}
	return result, nil
}

// Compare returns the scores and distance between two documents.
func (e *Engine) Compare(ctx context.Context, id, other string) (neighbors.Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return neighbors.Neighbor{}, err
	}
	return neighbors.Compare(e.Current(), id, other)
}

// Close closes the underlying source and store.
func (e *Engine) Close() error {
	var result *multierror.Error
	if err := e.source.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// BuildResult holds the result of an async Build operation.
type BuildResult struct {
	Snapshot *types.Snapshot
	Error    error
}

// BuildAsync runs Build in the background.
// Returns a channel that will receive the result when complete.
func (e *Engine) BuildAsync(ctx context.Context, ids []string) <-chan BuildResult {
	resultCh := make(chan BuildResult, 1)
	go func() {
		defer close(resultCh)
		s, err := e.Build(ctx, ids)
		resultCh <- BuildResult{Snapshot: s, Error: err}
	}()
	return resultCh
}

// NeighborsResult holds the result of an async Neighbors operation.
type NeighborsResult struct {
	Neighbors []neighbors.Neighbor
	Error     error
}

// NeighborsAsync runs Neighbors in the background.
// Returns a channel that will receive the result when complete.
func (e *Engine) NeighborsAsync(ctx context.Context, id string, k int) <-chan NeighborsResult {
	resultCh := make(chan NeighborsResult, 1)
	go func() {
		defer close(resultCh)
		result, err := e.Neighbors(ctx, id, k)
		resultCh <- NeighborsResult{Neighbors: result, Error: err}
	}()
	return resultCh
}

// NeighborsBatchAsync queries several documents concurrently.
// The map holds the ids that resolved; if any query fails, one of the
// failures is reported as Error.
func (e *Engine) NeighborsBatchAsync(ctx context.Context, ids []string, k int) <-chan NeighborsBatchResult {
	resultCh := make(chan NeighborsBatchResult, 1)
	go func() {
		defer close(resultCh)

		type item struct {
			id     string
			result NeighborsResult
		}
		itemCh := make(chan item, len(ids))
		for _, id := range ids {
			go func(id string) {
				itemCh <- item{id: id, result: <-e.NeighborsAsync(ctx, id, k)}
			}(id)
		}

		out := NeighborsBatchResult{Neighbors: make(map[string][]neighbors.Neighbor, len(ids))}
		for range ids {
			it := <-itemCh
			if it.result.Error != nil {
				if out.Error == nil {
					out.Error = it.result.Error
				}
				continue
			}
			out.Neighbors[it.id] = it.result.Neighbors
		}
		resultCh <- out
	}()
	return resultCh
}

// NeighborsBatchResult holds the result of an async batch query.
type NeighborsBatchResult struct {
	Neighbors map[string][]neighbors.Neighbor
	Error     error
}
