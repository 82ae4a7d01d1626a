package port

import (
	"context"
)

// KeyValueStore is durable local storage addressed by string keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) (bool, error)
	Close() error
}
