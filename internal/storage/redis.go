package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/gomarket-cart/internal/port"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis stores each key as a plain string value under prefix+key.
func NewRedis(rdb *redis.Client, prefix string) port.KeyValueStore {
	return &redisStore{
		rdb:    rdb,
		prefix: prefix,
	}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("rdb.Get: %w", err)
	}

	return value, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("rdb.Set: %w", err)
	}

	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Del(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("rdb.Del: %w", err)
	}

	return n > 0, nil
}

func (s *redisStore) Close() error {
	return s.rdb.Close()
}
