package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/botirk38/podcastsim/types"
)

// MemoryProvider implements TokenSource over an in-process map
type MemoryProvider struct {
	mu   *sync.RWMutex
	docs map[string]types.TokenCounts
}

// NewMemoryProvider creates a provider seeded with docs. The map is copied.
func NewMemoryProvider(docs map[string]types.TokenCounts) *MemoryProvider {
	p := &MemoryProvider{
		mu:   &sync.RWMutex{},
		docs: make(map[string]types.TokenCounts, len(docs)),
	}
	for id, counts := range docs {
		p.docs[id] = copyCounts(counts)
	}
	return p
}

// TokenCounts returns a copy of the counts stored for id
func (p *MemoryProvider) TokenCounts(ctx context.Context, id string) (types.TokenCounts, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	counts, ok := p.docs[id]
	if !ok {
		return nil, false, nil
	}
	return copyCounts(counts), true, nil
}

// Put stores or replaces the counts for id
func (p *MemoryProvider) Put(id string, counts types.TokenCounts) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.docs[id] = copyCounts(counts)
}

// Delete removes id
func (p *MemoryProvider) Delete(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.docs, id)
}

// IDs returns all stored ids, sorted
func (p *MemoryProvider) IDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.docs))
	for id := range p.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close is a no-op for the in-memory provider
func (p *MemoryProvider) Close() error {
	return nil
}

func copyCounts(counts types.TokenCounts) types.TokenCounts {
	out := make(types.TokenCounts, len(counts))
	for token, c := range counts {
		out[token] = c
	}
	return out
}
