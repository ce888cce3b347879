package remote

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/botirk38/podcastsim/internal/redisconn"
	"github.com/botirk38/podcastsim/types"
)

const defaultPrefix = "podsim:tokens:"

// RedisProvider implements TokenSource over Redis hashes: one hash per
// document at <prefix>doc:<id>, field = token, value = count. The set
// <prefix>ids records which documents exist, so a document with no tokens
// is found with empty counts.
type RedisProvider struct {
	client *redis.Client
	prefix string
}

// NewRedisProvider creates a new Redis token provider
func NewRedisProvider(config types.ProviderConfig) (*RedisProvider, error) {
	client, err := redisconn.Connect(context.Background(), redisconn.Settings{
		ConnectionString: config.ConnectionString,
		Username:         config.Username,
		Password:         config.Password,
		Database:         config.Database,
	})
	if err != nil {
		return nil, err
	}

	return NewRedisProviderFromClient(client, redisconn.StringOption(config.Options, "prefix", defaultPrefix)), nil
}

// NewRedisProviderFromClient wraps an existing client
func NewRedisProviderFromClient(client *redis.Client, prefix string) *RedisProvider {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisProvider{client: client, prefix: prefix}
}

func (p *RedisProvider) key(id string) string {
	return p.prefix + "doc:" + id
}

func (p *RedisProvider) idsKey() string {
	return p.prefix + "ids"
}

// TokenCounts reads the hash for id using HGETALL
func (p *RedisProvider) TokenCounts(ctx context.Context, id string) (types.TokenCounts, bool, error) {
	var member *redis.BoolCmd
	var hash *redis.MapStringStringCmd
	_, err := p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		member = pipe.SIsMember(ctx, p.idsKey(), id)
		hash = pipe.HGetAll(ctx, p.key(id))
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get token counts from Redis: %w", err)
	}
	if !member.Val() {
		return nil, false, nil
	}

	fields := hash.Val()
	counts := make(types.TokenCounts, len(fields))
	for token, raw := range fields {
		c, err := strconv.Atoi(raw)
		if err != nil {
			return nil, false, fmt.Errorf("invalid count for token %q of %q: %w", token, id, err)
		}
		counts[token] = c
	}
	return counts, true, nil
}

// Put replaces the hash for id
func (p *RedisProvider) Put(ctx context.Context, id string, counts types.TokenCounts) error {
	key := p.key(id)
	values := make(map[string]any, len(counts))
	for token, c := range counts {
		values[token] = c
	}

	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
		}
		pipe.SAdd(ctx, p.idsKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store token counts in Redis: %w", err)
	}
	return nil
}

// Delete removes the hash for id and forgets the document
func (p *RedisProvider) Delete(ctx context.Context, id string) error {
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, p.key(id))
		pipe.SRem(ctx, p.idsKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete token counts from Redis: %w", err)
	}
	return nil
}

// IDs returns every stored document id, sorted
func (p *RedisProvider) IDs(ctx context.Context) ([]string, error) {
	ids, err := p.client.SMembers(ctx, p.idsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list token documents from Redis: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close closes the Redis connection
func (p *RedisProvider) Close() error {
	return p.client.Close()
}
