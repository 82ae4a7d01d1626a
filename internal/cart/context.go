package cart

import (
	"context"
	"errors"
)

// ErrOutOfScope is a configuration error: the caller runs without a Store
// attached to its context.
var ErrOutOfScope = errors.New("cart store must be used within a cart scope")

type storeKey struct{}

func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(storeKey{}).(*Store)
	if !ok || s == nil {
		return nil, ErrOutOfScope
	}
	return s, nil
}
