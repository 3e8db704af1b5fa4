package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces layout records within a shared Redis instance.
const redisKeyPrefix = "pagegrid:layout:"

// RedisStore keeps records as JSON blobs in Redis. Suitable for
// multi-instance deployments where every replica must see the same
// customization.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// RedisConfig holds connection settings for a Redis-backed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// TTL expires records after the given duration. Zero means records
	// never expire, which is the normal mode: a layout customization has
	// no natural lifetime.
	TTL time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{rdb: rdb, ttl: cfg.TTL}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	data, err := s.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, rec Record) (*Record, error) {
	now := time.Now().UTC()
	rec.UpdatedAt = &now

	data, err := json.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("marshal layout record: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("redis set: %w", err)
	}
	return rec.Clone(), nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

var _ Store = (*RedisStore)(nil)
