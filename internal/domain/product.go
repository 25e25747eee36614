package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog. Price is stored in minor
// currency units (cents); Discount is a percentage between 0 and 100.
// Orders snapshot product data at purchase time, so a product may be edited
// or deleted without affecting historical orders.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	Price       int64     `json:"price" db:"price"`
	Discount    int       `json:"discount" db:"discount"`
	CategoryID  uuid.UUID `json:"category_id" db:"category_id"`
	Featured    bool      `json:"featured" db:"featured"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// FinalPrice returns the unit price after the percentage discount, in minor
// currency units. Integer arithmetic only, no floating point.
func (p *Product) FinalPrice() int64 {
	return p.Price - p.Price*int64(p.Discount)/100
}

// ProductSize is the stock-keeping unit: one size variant of one product
// with its sellable quantity. Stock never goes below zero.
type ProductSize struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Size      string    `json:"size" db:"size"`
	Stock     int       `json:"stock" db:"stock"`
}

// ProductImage is one image of a product; Position orders the gallery and
// the lowest position is the primary image.
type ProductImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	URL       string    `json:"url" db:"url"`
	Position  int       `json:"position" db:"position"`
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
