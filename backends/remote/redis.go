package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/opencontainers/go-digest"
	"github.com/redis/go-redis/v9"

	"github.com/botirk38/podcastsim/codec"
	"github.com/botirk38/podcastsim/internal/redisconn"
	"github.com/botirk38/podcastsim/types"
)

const defaultPrefix = "podsim:"

// RedisStore implements SnapshotStore on Redis.
//
// Each snapshot is stored encoded under <prefix>snapshot:<version>. The
// sorted set <prefix>versions scores versions by build time and
// <prefix>latest names the most recently saved one.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis snapshot store
func NewRedisStore(config types.BackendConfig) (*RedisStore, error) {
	client, err := redisconn.Connect(context.Background(), redisconn.Settings{
		ConnectionString: config.ConnectionString,
		Username:         config.Username,
		Password:         config.Password,
		Database:         config.Database,
	})
	if err != nil {
		return nil, err
	}

	return NewRedisStoreFromClient(client, redisconn.StringOption(config.Options, "prefix", defaultPrefix)), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (b *RedisStore) snapshotKey(version digest.Digest) string {
	return b.prefix + "snapshot:" + version.String()
}

func (b *RedisStore) latestKey() string {
	return b.prefix + "latest"
}

func (b *RedisStore) versionsKey() string {
	return b.prefix + "versions"
}

// Save encodes the snapshot and updates the version index in one transaction
func (b *RedisStore) Save(ctx context.Context, s *types.Snapshot) error {
	data, err := codec.Marshal(s)
	if err != nil {
		return err
	}

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, b.snapshotKey(s.Version), data, 0)
		pipe.ZAdd(ctx, b.versionsKey(), redis.Z{
			Score:  float64(s.BuiltAt.UnixNano()),
			Member: s.Version.String(),
		})
		pipe.Set(ctx, b.latestKey(), s.Version.String(), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot in Redis: %w", err)
	}
	return nil
}

// Load retrieves and decodes a snapshot
func (b *RedisStore) Load(ctx context.Context, version digest.Digest) (*types.Snapshot, bool, error) {
	data, err := b.client.Get(ctx, b.snapshotKey(version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get snapshot from Redis: %w", err)
	}

	s, err := codec.Unmarshal(data)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Latest follows the latest pointer
func (b *RedisStore) Latest(ctx context.Context) (*types.Snapshot, bool, error) {
	version, err := b.client.Get(ctx, b.latestKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get latest snapshot version from Redis: %w", err)
	}
	return b.Load(ctx, digest.Digest(version))
}

// Versions lists stored versions, oldest build first
func (b *RedisStore) Versions(ctx context.Context) ([]digest.Digest, error) {
	members, err := b.client.ZRange(ctx, b.versionsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot versions from Redis: %w", err)
	}

	versions := make([]digest.Digest, len(members))
	for i, m := range members {
		versions[i] = digest.Digest(m)
	}
	return versions, nil
}

// Delete removes a snapshot and clears the latest pointer if it named it
func (b *RedisStore) Delete(ctx context.Context, version digest.Digest) error {
	latest, err := b.client.Get(ctx, b.latestKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get latest snapshot version from Redis: %w", err)
	}

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, b.snapshotKey(version))
		pipe.ZRem(ctx, b.versionsKey(), version.String())
		if latest == version.String() {
			pipe.Del(ctx, b.latestKey())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot from Redis: %w", err)
	}
	return nil
}

// Flush removes every key under the prefix using SCAN
func (b *RedisStore) Flush(ctx context.Context) error {
	var keys []string
	var cursor uint64

	for {
		result, next, err := b.client.Scan(ctx, cursor, b.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys from Redis: %w", err)
		}
		keys = append(keys, result...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) > 0 {
		if err := b.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to flush Redis: %w", err)
		}
	}
	return nil
}

// Close closes the Redis connection
func (b *RedisStore) Close() error {
	return b.client.Close()
}
