package backends

import (
	"errors"

	"github.com/botirk38/podcastsim/backends/inmemory"
	"github.com/botirk38/podcastsim/backends/local"
	"github.com/botirk38/podcastsim/backends/remote"
	"github.com/botirk38/podcastsim/types"
)

var ErrUnsupportedBackend = errors.New("unsupported backend type")

// BackendFactory creates snapshot stores based on type and configuration
type BackendFactory struct{}

// NewBackend creates a new snapshot store of the specified type
func (f *BackendFactory) NewBackend(backendType types.BackendType, config types.BackendConfig) (types.SnapshotStore, error) {
	switch backendType {
	case types.BackendLRU:
		return NewLRUBackend(config)
	case types.BackendRedis:
		return NewRedisBackend(config)
	case types.BackendBolt:
		return NewBoltBackend(config)
	default:
		return nil, ErrUnsupportedBackend
	}
}

// NewLRUBackend creates a new in-memory LRU store
func NewLRUBackend(config types.BackendConfig) (types.SnapshotStore, error) {
	store, err := inmemory.NewLRUStore(config)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewRedisBackend creates a new Redis store
func NewRedisBackend(config types.BackendConfig) (types.SnapshotStore, error) {
	store, err := remote.NewRedisStore(config)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewBoltBackend creates a new bbolt file store
func NewBoltBackend(config types.BackendConfig) (types.SnapshotStore, error) {
	store, err := local.NewBoltStore(config)
	if err != nil {
		return nil, err
	}
	return store, nil
}
