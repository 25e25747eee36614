package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aura-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository defines the interface for cart data access
type CartRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error)
	FindByUserProductSize(ctx context.Context, userID, productID uuid.UUID, size string) (*domain.CartItem, error)
	Upsert(ctx context.Context, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearUser(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// ListByUser retrieves all cart items for a user, each expanded with the
// current product snapshot (name, price, discount, primary image) and the
// stock available for the chosen size. An empty cart yields an empty slice.
func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, error) {
	query := `
		SELECT ci.id, ci.user_id, ci.product_id, ci.size, ci.quantity, ci.created_at, ci.updated_at,
		       p.name, p.slug, p.price, p.discount,
		       COALESCE(pi.url, '') AS image_url,
		       COALESCE(ps.stock, 0) AS available
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN LATERAL (
			SELECT url FROM product_images
			WHERE product_id = p.id
			ORDER BY position ASC
			LIMIT 1
		) pi ON TRUE
		LEFT JOIN product_sizes ps ON ps.product_id = ci.product_id AND ps.size = ci.size
		WHERE ci.user_id = $1
		ORDER BY ci.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	lines := []*domain.CartLine{}
	for rows.Next() {
		line := &domain.CartLine{}
		err := rows.Scan(
			&line.ID,
			&line.UserID,
			&line.ProductID,
			&line.Size,
			&line.Quantity,
			&line.CreatedAt,
			&line.UpdatedAt,
			&line.ProductName,
			&line.ProductSlug,
			&line.UnitPrice,
			&line.Discount,
			&line.ImageURL,
			&line.Available,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

// FindByID retrieves a cart item by ID
func (r *cartRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, size, quantity, created_at, updated_at
		FROM cart_items
		WHERE id = $1
	`

	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Size,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

// FindByUserProductSize retrieves the single cart item for a (user, product, size) triple
func (r *cartRepository) FindByUserProductSize(ctx context.Context, userID, productID uuid.UUID, size string) (*domain.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, size, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2 AND size = $3
	`

	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, query, userID, productID, size).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Size,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

// Upsert inserts a cart item, merging with an existing (user, product, size)
// row by summing quantities. The unique constraint keeps at most one row per
// triple even under concurrent adds.
func (r *cartRepository) Upsert(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, size, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, product_id, size)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		item.ProductID,
		item.Size,
		item.Quantity,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

// UpdateQuantity sets the quantity of an existing cart item
func (r *cartRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// Delete removes a single cart item
func (r *cartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// ClearUser removes every cart item belonging to a user. Clearing an
// already-empty cart is not an error.
func (r *cartRepository) ClearUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
