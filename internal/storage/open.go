package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/gomarket-cart/internal/config"
	"github.com/nikolayk812/gomarket-cart/internal/port"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// Open connects the backend named by cfg.Driver. The caller owns the returned store.
func Open(ctx context.Context, cfg config.StorageConfig) (port.KeyValueStore, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemory(), nil

	case config.DriverSQLite:
		return NewSQLite(ctx, cfg.DSN)

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("pgxpool.New: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("pool.Ping: %w", err)
		}

		return NewPostgres(pool), nil

	case config.DriverRedis:
		opts, err := redis.ParseURL(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("redis.ParseURL: %w", err)
		}
		rdb := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("rdb.Ping: %w", err)
		}

		return NewRedis(rdb, cfg.RedisPrefix), nil
	}

	return nil, fmt.Errorf("storage driver[%s] is not supported", cfg.Driver)
}
