package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/nikolayk812/gomarket-cart/internal/domain"
	"github.com/nikolayk812/gomarket-cart/internal/port"
	"github.com/shopspring/decimal"
)

const (
	CartKey = "@GoMarket:cart"
	// LegacyCartKey is still read when CartKey is absent, never written, and
	// deleted after the first successful save under CartKey.
	LegacyCartKey = "GoMarket:cart"
)

type cartRepository struct {
	kv port.KeyValueStore

	legacyCleared atomic.Bool
}

func NewCart(kv port.KeyValueStore) port.CartRepository {
	return &cartRepository{
		kv: kv,
	}
}

func (r *cartRepository) GetCart(ctx context.Context) (domain.Cart, bool, error) {
	for _, key := range []string{CartKey, LegacyCartKey} {
		data, ok, err := r.kv.Get(ctx, key)
		if err != nil {
			return domain.Cart{}, false, fmt.Errorf("kv.Get[%s]: %w", key, err)
		}
		if !ok {
			continue
		}

		cart, err := unmarshalCart(data)
		if err != nil {
			return domain.Cart{}, false, fmt.Errorf("unmarshalCart[%s]: %w", key, err)
		}

		return cart, true, nil
	}

	return domain.Cart{}, false, nil
}

func (r *cartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	data, err := marshalCart(cart)
	if err != nil {
		return fmt.Errorf("marshalCart: %w", err)
	}

	if err := r.kv.Set(ctx, CartKey, data); err != nil {
		return fmt.Errorf("kv.Set[%s]: %w", CartKey, err)
	}

	if r.legacyCleared.Load() {
		return nil
	}

	// the cart is already saved under CartKey, a failed cleanup is retried on the next save
	if _, err := r.kv.Delete(ctx, LegacyCartKey); err == nil {
		r.legacyCleared.Store(true)
	}

	return nil
}

type cartItemJSON struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	ImageURL string      `json:"image_url"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

func marshalCart(cart domain.Cart) ([]byte, error) {
	items := make([]cartItemJSON, 0, cart.Len())
	for _, item := range cart.Items {
		items = append(items, cartItemJSON{
			ID:       item.ID,
			Title:    item.Title,
			ImageURL: item.ImageURL,
			Price:    json.Number(item.Price.String()),
			Quantity: item.Quantity,
		})
	}

	return json.Marshal(items)
}

func unmarshalCart(data []byte) (domain.Cart, error) {
	var rows []cartItemJSON
	if err := json.Unmarshal(data, &rows); err != nil {
		return domain.Cart{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	items, err := mapCartItemsToDomain(rows)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapCartItemsToDomain: %w", err)
	}

	return domain.Cart{Items: items}, nil
}

func mapCartItemToDomain(row cartItemJSON) (domain.CartItem, error) {
	if row.ID == "" {
		return domain.CartItem{}, fmt.Errorf("item id is empty")
	}

	if row.Quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("item[%s] quantity[%d] is not positive", row.ID, row.Quantity)
	}

	price := decimal.Zero
	if row.Price != "" {
		parsed, err := decimal.NewFromString(row.Price.String())
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("item[%s] price[%s] is not valid: %w", row.ID, row.Price, err)
		}
		price = parsed
	}

	return domain.CartItem{
		ID:       row.ID,
		Title:    row.Title,
		ImageURL: row.ImageURL,
		Price:    price,
		Quantity: row.Quantity,
	}, nil
}

func mapCartItemsToDomain(rows []cartItemJSON) ([]domain.CartItem, error) {
	var items []domain.CartItem
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		item, err := mapCartItemToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartItemToDomain: %w", err)
		}

		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("item[%s] is duplicated", item.ID)
		}
		seen[item.ID] = struct{}{}

		items = append(items, item)
	}

	return items, nil
}
