// model/cart.go
package model

import "time"

// CartItem is a single selection with a chosen acquisition mode. Price is
// captured when the line is added and is not recomputed at checkout.
type CartItem struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	Title     string    `json:"title,omitempty"`
	IsBorrow  bool      `json:"is_borrow"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Cart struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

func (c *Cart) Sum() float64 {
	var t float64
	for _, it := range c.Items {
		t += it.Price
	}
	return t
}
