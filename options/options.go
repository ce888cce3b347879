// Package options provides functional options for configuring Engine instances.
package options

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/botirk38/podcastsim/backends"
	"github.com/botirk38/podcastsim/providers"
	"github.com/botirk38/podcastsim/providers/memory"
	"github.com/botirk38/podcastsim/similarity"
	"github.com/botirk38/podcastsim/types"
)

// DefaultQueryCacheSize is the number of neighbor lists an engine memoizes
// unless told otherwise
const DefaultQueryCacheSize = 1024

// Option represents a configuration option for an Engine
type Option func(*Config) error

// Config holds the configuration for building an Engine
type Config struct {
	Source   types.TokenSource
	Store    types.SnapshotStore
	Logger   logrus.FieldLogger
	Workers  int
	Progress similarity.ProgressFunc

	// QueryCacheSize bounds the neighbor-list cache; 0 disables it
	QueryCacheSize int
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Logger:         logrus.StandardLogger(),
		QueryCacheSize: DefaultQueryCacheSize,
	}
}

// Apply applies all the given options to the config
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Source == nil {
		return errors.New("token source is required - use WithMemorySource, WithCSVDirSource, etc.")
	}
	if c.Logger == nil {
		return errors.New("logger cannot be nil")
	}
	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}
	if c.QueryCacheSize < 0 {
		return errors.New("query cache size cannot be negative")
	}
	return nil
}

// WithMemorySource sets up an in-memory token source holding docs
func WithMemorySource(docs map[string]types.TokenCounts) Option {
	return func(cfg *Config) error {
		cfg.Source = memory.NewMemoryProvider(docs)
		return nil
	}
}

// WithCSVDirSource reads token counts from <dir>/<id>.csv files
func WithCSVDirSource(dir string) Option {
	return func(cfg *Config) error {
		source, err := providers.NewProvider(types.ProviderCSVDir, types.ProviderConfig{
			Directory: dir,
		})
		if err != nil {
			return err
		}
		cfg.Source = source
		return nil
	}
}

// WithRedisSource reads token counts from Redis hashes
func WithRedisSource(addr string, db int) Option {
	return func(cfg *Config) error {
		source, err := providers.NewProvider(types.ProviderRedis, types.ProviderConfig{
			ConnectionString: addr,
			Database:         db,
		})
		if err != nil {
			return err
		}
		cfg.Source = source
		return nil
	}
}

// WithCustomSource allows using a pre-configured token source
func WithCustomSource(source types.TokenSource) Option {
	return func(cfg *Config) error {
		if source == nil {
			return errors.New("source cannot be nil")
		}
		cfg.Source = source
		return nil
	}
}

// WithCachedSource wraps the source configured so far in an LRU cache.
// It must come after the option that sets the source.
func WithCachedSource(capacity int) Option {
	return func(cfg *Config) error {
		if cfg.Source == nil {
			return errors.New("a source must be configured before WithCachedSource")
		}
		source, err := providers.NewCachedProvider(cfg.Source, capacity)
		if err != nil {
			return err
		}
		cfg.Source = source
		return nil
	}
}

// WithLRUStore keeps the last capacity snapshots in memory
func WithLRUStore(capacity int) Option {
	return func(cfg *Config) error {
		store, err := backends.NewLRUBackend(types.BackendConfig{
			Capacity: capacity,
		})
		if err != nil {
			return err
		}
		cfg.Store = store
		return nil
	}
}

// WithRedisStore sets up a Redis snapshot store
func WithRedisStore(addr string, db int) Option {
	return func(cfg *Config) error {
		store, err := backends.NewRedisBackend(types.BackendConfig{
			ConnectionString: addr,
			Database:         db,
		})
		if err != nil {
			return err
		}
		cfg.Store = store
		return nil
	}
}

// WithBoltStore persists snapshots in a bbolt file at path
func WithBoltStore(path string) Option {
	return func(cfg *Config) error {
		store, err := backends.NewBoltBackend(types.BackendConfig{
			Path: path,
		})
		if err != nil {
			return err
		}
		cfg.Store = store
		return nil
	}
}

// WithCustomStore allows using a pre-configured snapshot store
func WithCustomStore(store types.SnapshotStore) Option {
	return func(cfg *Config) error {
		if store == nil {
			return errors.New("store cannot be nil")
		}
		cfg.Store = store
		return nil
	}
}

// WithWorkers bounds the similarity worker pool; 0 uses GOMAXPROCS
func WithWorkers(n int) Option {
	return func(cfg *Config) error {
		if n < 0 {
			return errors.New("workers cannot be negative")
		}
		cfg.Workers = n
		return nil
	}
}

// WithProgress reports matrix rows as they finish
func WithProgress(fn similarity.ProgressFunc) Option {
	return func(cfg *Config) error {
		cfg.Progress = fn
		return nil
	}
}

// WithLogger sets the logger used for build and load events
func WithLogger(logger logrus.FieldLogger) Option {
	return func(cfg *Config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.Logger = logger
		return nil
	}
}

// WithQueryCache sets the neighbor-list cache size; 0 disables caching
func WithQueryCache(size int) Option {
	return func(cfg *Config) error {
		if size < 0 {
			return errors.New("query cache size cannot be negative")
		}
		cfg.QueryCacheSize = size
		return nil
	}
}
