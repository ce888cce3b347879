package inmemory

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/opencontainers/go-digest"

	"github.com/botirk38/podcastsim/types"
)

// DefaultCapacity is the number of snapshots kept when none is configured
const DefaultCapacity = 4

// LRUStore implements SnapshotStore in memory using LRU eviction.
// Snapshots are immutable, so the stored pointers are handed out directly.
type LRUStore struct {
	mu     sync.RWMutex
	cache  *lru.Cache[digest.Digest, *types.Snapshot]
	latest digest.Digest
}

// NewLRUStore creates a new LRU snapshot store
func NewLRUStore(config types.BackendConfig) (*LRUStore, error) {
	capacity := config.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}

	cache, err := lru.New[digest.Digest, *types.Snapshot](capacity)
	if err != nil {
		return nil, err
	}

	return &LRUStore{cache: cache}, nil
}

// Save stores a snapshot and marks it as the latest one
func (b *LRUStore) Save(ctx context.Context, s *types.Snapshot) error {
	if s == nil {
		return types.ErrNoSnapshot
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.cache.Add(s.Version, s)
	b.latest = s.Version
	return nil
}

// Load retrieves a snapshot by version
func (b *LRUStore) Load(ctx context.Context, version digest.Digest) (*types.Snapshot, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.cache.Get(version)
	return s, ok, nil
}

// Latest retrieves the most recently saved snapshot, unless it has since
// been evicted or deleted
func (b *LRUStore) Latest(ctx context.Context) (*types.Snapshot, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.latest == "" {
		return nil, false, nil
	}
	s, ok := b.cache.Peek(b.latest)
	return s, ok, nil
}

// Versions lists the cached versions, least recently used first
func (b *LRUStore) Versions(ctx context.Context) ([]digest.Digest, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.cache.Keys(), nil
}

// Delete removes a snapshot from the cache
func (b *LRUStore) Delete(ctx context.Context, version digest.Digest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cache.Remove(version)
	if b.latest == version {
		b.latest = ""
	}
	return nil
}

// Len returns the number of cached snapshots
func (b *LRUStore) Len() int {
	return b.cache.Len()
}

// Close closes the LRU store (no-op for in-memory)
func (b *LRUStore) Close() error {
	return nil
}
