package types

import (
	"context"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/botirk38/podcastsim/similarity"
)

// TokenCounts maps a token to the number of times it occurs in one document.
type TokenCounts map[string]int

// Total returns the sum of all counts.
func (tc TokenCounts) Total() int {
	var total int
	for _, c := range tc {
		total += c
	}
	return total
}

// TokenSource supplies per-document token counts.
// A document without token data is reported with found == false and a nil
// error; a non-nil error means the source itself is unavailable.
type TokenSource interface {
	// TokenCounts returns the token-count mapping for a document
	TokenCounts(ctx context.Context, id string) (TokenCounts, bool, error)

	// Close releases any resources held by the source
	Close() error
}

// SnapshotStore persists computed snapshots keyed by version.
type SnapshotStore interface {
	// Save stores a snapshot and marks it as the latest one
	Save(ctx context.Context, s *Snapshot) error

	// Load retrieves a snapshot by version
	Load(ctx context.Context, version digest.Digest) (*Snapshot, bool, error)

	// Latest retrieves the most recently saved snapshot
	Latest(ctx context.Context) (*Snapshot, bool, error)

	// Versions lists the stored versions
	Versions(ctx context.Context) ([]digest.Digest, error)

	// Delete removes a snapshot by version
	Delete(ctx context.Context, version digest.Digest) error

	// Close closes the store and releases resources
	Close() error
}

// Snapshot is one immutable, fully computed similarity space.
// Matrices are indexed by position in IDs.
type Snapshot struct {
	Version    digest.Digest
	IDs        []string
	Vocabulary []string
	NTFS       *similarity.Matrix
	JTS        *similarity.Matrix
	WTDS       *similarity.Matrix
	BuiltAt    time.Time

	positions map[string]int
}

// NewSnapshot assembles a snapshot and indexes its document ids.
func NewSnapshot(version digest.Digest, ids, vocabulary []string, m *similarity.Matrices, builtAt time.Time) (*Snapshot, error) {
	if m == nil {
		return nil, ErrMalformedSnapshot
	}
	for _, mat := range []*similarity.Matrix{m.NTFS, m.JTS, m.WTDS} {
		if mat == nil || mat.Size() != len(ids) {
			return nil, ErrMalformedSnapshot
		}
	}

	positions := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := positions[id]; dup {
			return nil, ErrDuplicateDocument
		}
		positions[id] = i
	}

	return &Snapshot{
		Version:    version,
		IDs:        ids,
		Vocabulary: vocabulary,
		NTFS:       m.NTFS,
		JTS:        m.JTS,
		WTDS:       m.WTDS,
		BuiltAt:    builtAt,
		positions:  positions,
	}, nil
}

// Position returns the matrix index of a document.
func (s *Snapshot) Position(id string) (int, bool) {
	i, ok := s.positions[id]
	return i, ok
}

// Len returns the number of documents in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.IDs)
}

// BackendConfig provides configuration options for snapshot stores
type BackendConfig struct {
	// For in-memory stores
	Capacity int

	// For Redis
	ConnectionString string
	Username         string
	Password         string
	Database         int

	// For bbolt
	Path    string
	Timeout time.Duration

	// Additional options
	Options map[string]any
}

// BackendType represents the type of snapshot store
type BackendType string

const (
	BackendLRU   BackendType = "lru"
	BackendRedis BackendType = "redis"
	BackendBolt  BackendType = "bolt"
)

// ProviderConfig provides configuration options for token sources
type ProviderConfig struct {
	// For CSV directories
	Directory string

	// For Redis
	ConnectionString string
	Username         string
	Password         string
	Database         int

	// Additional options
	Options map[string]any
}

// ProviderType represents the type of token source
type ProviderType string

const (
	ProviderMemory ProviderType = "memory"
	ProviderCSVDir ProviderType = "csvdir"
	ProviderRedis  ProviderType = "redis"
)
