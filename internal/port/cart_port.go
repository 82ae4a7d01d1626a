package port

import (
	"context"

	"github.com/nikolayk812/gomarket-cart/internal/domain"
)

type CartRepository interface {
	// GetCart reports false when nothing has been persisted yet.
	GetCart(ctx context.Context) (domain.Cart, bool, error)
	SaveCart(ctx context.Context, cart domain.Cart) error
}
