package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aura-store/internal/domain"
	"aura-store/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrSizeNotAvailable = errors.New("size not available for this product")
)

// CartSummary aggregates a cart's totals in minor currency units
type CartSummary struct {
	ItemCount     int   `json:"item_count"`
	TotalQuantity int   `json:"total_quantity"`
	Subtotal      int64 `json:"subtotal"`
	Shipping      int64 `json:"shipping"`
	Total         int64 `json:"total"`
}

// CartService defines the interface for cart business logic
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, *CartSummary, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, size string, quantity int) (*domain.CartItem, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	shippingFee int64
}

// NewCartService creates a new instance of CartService
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	shippingFee int64,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		shippingFee: shippingFee,
	}
}

// GetCart returns the user's cart lines with current product snapshots and
// aggregate totals. An empty cart is not an error.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, *CartSummary, error) {
	lines, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cart: %w", err)
	}

	summary := &CartSummary{ItemCount: len(lines)}
	for _, line := range lines {
		summary.TotalQuantity += line.Quantity
		summary.Subtotal += line.Subtotal()
	}
	summary.Shipping = s.shippingFee
	summary.Total = summary.Subtotal + summary.Shipping

	return lines, summary, nil
}

// AddItem puts quantity units of a product size into the cart, merging with
// an existing line for the same (product, size) by summing quantities. The
// merged quantity may not exceed the currently available stock. This check
// is advisory: no stock is reserved until checkout.
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, size string, quantity int) (*domain.CartItem, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	available, err := s.stockRepo.GetAvailable(ctx, productID, size)
	if err != nil {
		if errors.Is(err, repository.ErrStockUnitNotFound) {
			return nil, ErrSizeNotAvailable
		}
		return nil, err
	}

	newQuantity := quantity
	existing, err := s.cartRepo.FindByUserProductSize(ctx, userID, productID, size)
	if err != nil && !errors.Is(err, repository.ErrCartItemNotFound) {
		return nil, err
	}
	if existing != nil {
		newQuantity += existing.Quantity
	}

	if newQuantity > available {
		return nil, &InsufficientStockError{
			ProductID:   productID,
			ProductName: product.Name,
			Size:        size,
			Requested:   newQuantity,
			Available:   available,
		}
	}

	if existing != nil {
		if err := s.cartRepo.UpdateQuantity(ctx, existing.ID, newQuantity); err != nil {
			return nil, err
		}
		existing.Quantity = newQuantity
		return existing, nil
	}

	now := time.Now()
	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.cartRepo.Upsert(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// UpdateItemQuantity sets the quantity of a cart line owned by the user
func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.CartItem, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	available, err := s.stockRepo.GetAvailable(ctx, item.ProductID, item.Size)
	if err != nil {
		if errors.Is(err, repository.ErrStockUnitNotFound) {
			return nil, ErrSizeNotAvailable
		}
		return nil, err
	}

	if quantity > available {
		product, prodErr := s.productRepo.FindByID(ctx, item.ProductID)
		name := ""
		if prodErr == nil {
			name = product.Name
		}
		return nil, &InsufficientStockError{
			ProductID:   item.ProductID,
			ProductName: name,
			Size:        item.Size,
			Requested:   quantity,
			Available:   available,
		}
	}

	if err := s.cartRepo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return nil, err
	}

	item.Quantity = quantity
	return item, nil
}

// RemoveItem deletes a cart line owned by the user
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}
	return s.cartRepo.Delete(ctx, itemID)
}

// Clear removes every line from the user's cart
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.ClearUser(ctx, userID)
}

// ownedItem loads a cart item and hides its existence from other users
func (s *cartService) ownedItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error) {
	item, err := s.cartRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, repository.ErrCartItemNotFound
	}
	return item, nil
}
