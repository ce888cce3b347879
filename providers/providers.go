package providers

import (
	"errors"

	"github.com/botirk38/podcastsim/providers/cached"
	"github.com/botirk38/podcastsim/providers/csvdir"
	"github.com/botirk38/podcastsim/providers/memory"
	"github.com/botirk38/podcastsim/providers/remote"
	"github.com/botirk38/podcastsim/types"
)

var ErrUnsupportedProvider = errors.New("unsupported provider type")

// NewProvider creates a token source of the specified type
func NewProvider(providerType types.ProviderType, config types.ProviderConfig) (types.TokenSource, error) {
	switch providerType {
	case types.ProviderMemory:
		return memory.NewMemoryProvider(nil), nil
	case types.ProviderCSVDir:
		p, err := csvdir.NewCSVDirProvider(config.Directory)
		if err != nil {
			return nil, err
		}
		return p, nil
	case types.ProviderRedis:
		p, err := remote.NewRedisProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// NewCachedProvider wraps source with a read-through LRU cache
func NewCachedProvider(source types.TokenSource, capacity int) (types.TokenSource, error) {
	p, err := cached.NewCachedProvider(source, capacity)
	if err != nil {
		return nil, err
	}
	return p, nil
}
