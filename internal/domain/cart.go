package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one product+size entry in a user's cart. At most one item
// exists per (user, product, size); adding the same combination again merges
// by summing quantities.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Size      string    `json:"size" db:"size"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CartLine is a cart item expanded with the current product snapshot:
// pricing, primary image and the stock available for the chosen size.
type CartLine struct {
	CartItem
	ProductName string `json:"product_name"`
	ProductSlug string `json:"product_slug"`
	UnitPrice   int64  `json:"unit_price"`
	Discount    int    `json:"discount"`
	ImageURL    string `json:"image_url"`
	Available   int    `json:"available"`
}

// FinalUnitPrice returns the discounted unit price in minor currency units
func (l *CartLine) FinalUnitPrice() int64 {
	return l.UnitPrice - l.UnitPrice*int64(l.Discount)/100
}

// Subtotal returns the line subtotal in minor currency units
func (l *CartLine) Subtotal() int64 {
	return l.FinalUnitPrice() * int64(l.Quantity)
}
