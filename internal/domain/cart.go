package domain

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	ID       string
	Title    string
	ImageURL string
	Price    decimal.Decimal
}

type CartItem struct {
	ID       string
	Title    string
	ImageURL string
	Price    decimal.Decimal
	Quantity int
}

func (p Product) ToCartItem(quantity int) CartItem {
	return CartItem{
		ID:       p.ID,
		Title:    p.Title,
		ImageURL: p.ImageURL,
		Price:    p.Price,
		Quantity: quantity,
	}
}

// Cart is unique by item ID; every item has Quantity >= 1.
// Transitions never modify the receiver's backing array.
type Cart struct {
	Items []CartItem
}

func (c Cart) Find(id string) (CartItem, bool) {
	i := c.index(id)
	if i < 0 {
		return CartItem{}, false
	}
	return c.Items[i], true
}

func (c Cart) Add(p Product) Cart {
	i := c.index(p.ID)
	if i < 0 {
		items := make([]CartItem, 0, len(c.Items)+1)
		items = append(items, c.Items...)
		return Cart{Items: append(items, p.ToCartItem(1))}
	}

	next := c.Clone()
	next.Items[i].Quantity++
	return next
}

func (c Cart) Increment(id string) Cart {
	next := c.Clone()
	if i := next.index(id); i >= 0 {
		next.Items[i].Quantity++
	}
	return next
}

// Decrement drops the item instead of leaving it at zero.
func (c Cart) Decrement(id string) Cart {
	i := c.index(id)
	if i < 0 {
		return c.Clone()
	}

	if c.Items[i].Quantity-1 >= 1 {
		next := c.Clone()
		next.Items[i].Quantity--
		return next
	}

	items := make([]CartItem, 0, len(c.Items)-1)
	items = append(items, c.Items[:i]...)
	items = append(items, c.Items[i+1:]...)
	return Cart{Items: items}
}

func (c Cart) Clone() Cart {
	if c.Items == nil {
		return Cart{}
	}
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

func (c Cart) Len() int {
	return len(c.Items)
}

func (c Cart) index(id string) int {
	for i, item := range c.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
