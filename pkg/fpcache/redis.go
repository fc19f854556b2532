package fpcache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

// RedisStore persists the fingerprint table in a single Redis hash, so that
// shared CI runners reuse each other's accepted digests.
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string // host:port, default "localhost:6379"
	Password string
	DB       int
	Key      string // hash key, default "pixeldrift:fingerprints"
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Key == "" {
		cfg.Key = "pixeldrift:fingerprints"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeCacheError, err, "connect to redis %s", cfg.Addr)
	}

	return &RedisStore{client: client, key: cfg.Key}, nil
}

// Load reads the whole hash. A missing key yields an empty table.
func (s *RedisStore) Load(ctx context.Context) (map[string]string, error) {
	table, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheError, err, "load fingerprint hash %s", s.key)
	}
	return table, nil
}

// Save replaces the hash contents with table atomically (delete + refill in
// one transaction), so a concurrent reader never observes a half-written
// table.
func (s *RedisStore) Save(ctx context.Context, table map[string]string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(table) > 0 {
		flat := make([]any, 0, len(table)*2)
		for stem, digest := range table {
			flat = append(flat, stem, digest)
		}
		pipe.HSet(ctx, s.key, flat...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeCacheError, err, "save fingerprint hash %s", s.key)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
