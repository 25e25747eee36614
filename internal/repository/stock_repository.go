package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrStockUnitNotFound = errors.New("stock unit not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockRepository is the single source of truth for sellable quantity,
// keyed by (product, size).
type StockRepository interface {
	GetAvailable(ctx context.Context, productID uuid.UUID, size string) (int, error)
	Decrement(ctx context.Context, productID uuid.UUID, size string, quantity int) error
	Increment(ctx context.Context, productID uuid.UUID, size string, quantity int) error
}

type stockRepository struct {
	db *sql.DB
}

// NewStockRepository creates a new instance of StockRepository
func NewStockRepository(db *sql.DB) StockRepository {
	return &stockRepository{db: db}
}

// GetAvailable returns the current stock counter for a product size
func (r *stockRepository) GetAvailable(ctx context.Context, productID uuid.UUID, size string) (int, error) {
	query := `
		SELECT stock
		FROM product_sizes
		WHERE product_id = $1 AND size = $2
	`

	var stock int
	err := r.db.QueryRowContext(ctx, query, productID, size).Scan(&stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrStockUnitNotFound
		}
		return 0, fmt.Errorf("failed to get available stock: %w", err)
	}

	return stock, nil
}

// Decrement atomically takes quantity units from a product size. The
// precondition stock >= quantity is re-checked at write time inside the
// UPDATE itself, so concurrent checkouts racing for the last units cannot
// drive the counter negative: the losers see ErrInsufficientStock and no
// partial decrement happens.
func (r *stockRepository) Decrement(ctx context.Context, productID uuid.UUID, size string, quantity int) error {
	query := `
		UPDATE product_sizes
		SET stock = stock - $3
		WHERE product_id = $1 AND size = $2 AND stock >= $3
	`

	result, err := r.db.ExecContext(ctx, query, productID, size, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a lost race from a vanished size row
		if _, err := r.GetAvailable(ctx, productID, size); err != nil {
			return err
		}
		return ErrInsufficientStock
	}

	return nil
}

// Increment returns quantity units to a product size. Used for restocking
// and for rolling back a checkout that failed after decrementing.
func (r *stockRepository) Increment(ctx context.Context, productID uuid.UUID, size string, quantity int) error {
	query := `
		UPDATE product_sizes
		SET stock = stock + $3
		WHERE product_id = $1 AND size = $2
	`

	result, err := r.db.ExecContext(ctx, query, productID, size, quantity)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrStockUnitNotFound
	}

	return nil
}
