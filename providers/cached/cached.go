package cached

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/botirk38/podcastsim/types"
)

type lookup struct {
	counts types.TokenCounts
	found  bool
}

// CachedProvider is a read-through LRU cache in front of another TokenSource.
// A corpus build reads every document twice (vocabulary, then vectors); the
// cache turns the second pass into memory reads. Returned maps are shared
// between callers and must not be modified.
type CachedProvider struct {
	source types.TokenSource
	cache  *lru.Cache[string, lookup]
}

// NewCachedProvider wraps source with a cache holding up to capacity documents
func NewCachedProvider(source types.TokenSource, capacity int) (*CachedProvider, error) {
	cache, err := lru.New[string, lookup](capacity)
	if err != nil {
		return nil, err
	}
	return &CachedProvider{source: source, cache: cache}, nil
}

// TokenCounts serves from the cache, falling back to the wrapped source.
// Unknown documents are cached too; source errors are not.
func (p *CachedProvider) TokenCounts(ctx context.Context, id string) (types.TokenCounts, bool, error) {
	if hit, ok := p.cache.Get(id); ok {
		return hit.counts, hit.found, nil
	}

	counts, found, err := p.source.TokenCounts(ctx, id)
	if err != nil {
		return nil, false, err
	}
	p.cache.Add(id, lookup{counts: counts, found: found})
	return counts, found, nil
}

// Invalidate drops id from the cache
func (p *CachedProvider) Invalidate(id string) {
	p.cache.Remove(id)
}

// Purge empties the cache
func (p *CachedProvider) Purge() {
	p.cache.Purge()
}

// Len returns the number of cached documents
func (p *CachedProvider) Len() int {
	return p.cache.Len()
}

// Close closes the wrapped source
func (p *CachedProvider) Close() error {
	return p.source.Close()
}
