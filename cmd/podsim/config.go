package main

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/botirk38/podcastsim/options"
	"github.com/botirk38/podcastsim/types"
)

// defaultConfigFile is read from the working directory when --config is not set
const defaultConfigFile = "podsim.toml"

// Config mirrors podsim.toml
type Config struct {
	LogLevel string         `toml:"log_level"`
	Source   SourceConfig   `toml:"source"`
	Store    StoreConfig    `toml:"store"`
	Build    BuildConfig    `toml:"build"`
	Tokenize TokenizeConfig `toml:"tokenize"`
	Serve    ServeConfig    `toml:"serve"`
}

// SourceConfig selects where per-podcast token counts come from
type SourceConfig struct {
	Type     string `toml:"type"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Cache    int    `toml:"cache"`
}

// StoreConfig selects where snapshots are persisted
type StoreConfig struct {
	Type     string `toml:"type"`
	Path     string `toml:"path"`
	RedisURL string `toml:"redis_url"`
	Capacity int    `toml:"capacity"`
}

// BuildConfig tunes the similarity computation
type BuildConfig struct {
	Workers int `toml:"workers"`
}

// TokenizeConfig tunes description tokenization
type TokenizeConfig struct {
	Workers int  `toml:"workers"`
	Stem    bool `toml:"stem"`
	BPE     bool `toml:"bpe"`
}

// ServeConfig configures the HTTP server
type ServeConfig struct {
	Addr string `toml:"addr"`
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Source: SourceConfig{
			Type: string(types.ProviderCSVDir),
			Dir:  "podcast_tokens",
		},
		Store: StoreConfig{
			Type: string(types.BackendBolt),
			Path: "podsim.db",
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// loadConfig reads path over the defaults. A missing file is only an error
// when the caller asked for it explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return defaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// sourceOptions turns the source section into engine options
func (c Config) sourceOptions() ([]options.Option, error) {
	var opts []options.Option
	switch types.ProviderType(c.Source.Type) {
	case types.ProviderCSVDir:
		opts = append(opts, options.WithCSVDirSource(c.Source.Dir))
	case types.ProviderRedis:
		opts = append(opts, options.WithRedisSource(c.Source.RedisURL, 0))
	default:
		return nil, fmt.Errorf("unsupported source type %q", c.Source.Type)
	}
	if c.Source.Cache > 0 {
		opts = append(opts, options.WithCachedSource(c.Source.Cache))
	}
	return opts, nil
}

// storeOption turns the store section into an engine option
func (c Config) storeOption() (options.Option, error) {
	switch types.BackendType(c.Store.Type) {
	case types.BackendBolt:
		return options.WithBoltStore(c.Store.Path), nil
	case types.BackendRedis:
		return options.WithRedisStore(c.Store.RedisURL, 0), nil
	case types.BackendLRU:
		return options.WithLRUStore(c.Store.Capacity), nil
	default:
		return nil, fmt.Errorf("unsupported store type %q", c.Store.Type)
	}
}
