package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aura-store/internal/domain"
	"aura-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// orderNumberRetries bounds how many times a colliding order number is
// re-allocated before the checkout gives up.
const orderNumberRetries = 3

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")
)

// InsufficientStockError identifies the cart line that cannot be fulfilled
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Size        string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s size %s: requested %d, available %d",
		e.ProductName, e.Size, e.Requested, e.Available)
}

// CheckoutInput carries the customer contact and shipping fields captured at
// checkout time. Name and email are required; the rest is optional.
type CheckoutInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	ShippingCity    string
	ShippingState   string
	ShippingZip     string
}

// CheckoutService converts a user's cart into a persisted order. It is the
// sole entry point for order creation.
type CheckoutService interface {
	Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*domain.Order, error)
}

type checkoutService struct {
	cartRepo    repository.CartRepository
	stockRepo   repository.StockRepository
	orderRepo   repository.OrderRepository
	shippingFee int64
	logger      *zap.Logger
	now         func() time.Time
}

// NewCheckoutService creates a new instance of CheckoutService. shippingFee
// is the flat shipping policy value in minor currency units.
func NewCheckoutService(
	cartRepo repository.CartRepository,
	stockRepo repository.StockRepository,
	orderRepo repository.OrderRepository,
	shippingFee int64,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		cartRepo:    cartRepo,
		stockRepo:   stockRepo,
		orderRepo:   orderRepo,
		shippingFee: shippingFee,
		logger:      logger,
		now:         time.Now,
	}
}

// Checkout loads the cart, validates stock per line, computes integer-based
// totals, persists the order with a unique order number, decrements stock
// and clears the cart. The effect sequence is all-or-nothing: any failure
// after the order is persisted unwinds the decrements already applied and
// deletes the order, so a failed checkout leaves everything in its
// pre-checkout state.
func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*domain.Order, error) {
	lines, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Advisory pre-check against the snapshot; the conditional decrement
	// below is the authoritative guard.
	for _, line := range lines {
		if line.Available < line.Quantity {
			return nil, &InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Size:        line.Size,
				Requested:   line.Quantity,
				Available:   line.Available,
			}
		}
	}

	order := s.buildOrder(userID, input, lines)

	if err := s.persistOrder(ctx, order); err != nil {
		return nil, err
	}

	if err := s.applyEffects(ctx, order, lines, userID); err != nil {
		return nil, err
	}

	s.logger.Info("Checkout completed",
		zap.String("user_id", userID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total", order.Total),
		zap.Int("lines", len(order.Items)),
	)

	return order, nil
}

// buildOrder snapshots the cart lines into an immutable order. All currency
// arithmetic is integer-based in minor units.
func (s *checkoutService) buildOrder(userID uuid.UUID, input CheckoutInput, lines []*domain.CartLine) *domain.Order {
	now := s.now()
	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          userID,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		ShippingAddress: input.ShippingAddress,
		ShippingCity:    input.ShippingCity,
		ShippingState:   input.ShippingState,
		ShippingZip:     input.ShippingZip,
		Status:          domain.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var subtotal int64
	for _, line := range lines {
		item := &domain.OrderItem{
			ID:           uuid.New(),
			OrderID:      order.ID,
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			ProductImage: line.ImageURL,
			Size:         line.Size,
			Quantity:     line.Quantity,
			Price:        line.UnitPrice,
			Discount:     line.Discount,
			Subtotal:     line.Subtotal(),
		}
		subtotal += item.Subtotal
		order.Items = append(order.Items, item)
	}

	order.Subtotal = subtotal
	order.Shipping = s.shippingFee
	order.Total = subtotal + s.shippingFee

	return order
}

// persistOrder allocates an order number and creates the order, retrying
// allocation on a number collision instead of surfacing the storage error.
func (s *checkoutService) persistOrder(ctx context.Context, order *domain.Order) error {
	for attempt := 0; attempt < orderNumberRetries; attempt++ {
		number, err := s.orderRepo.NextOrderNumber(ctx, s.now().Year())
		if err != nil {
			return fmt.Errorf("failed to allocate order number: %w", err)
		}
		order.OrderNumber = number

		err = s.orderRepo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrOrderNumberTaken) {
			s.logger.Warn("Order number collision, retrying allocation",
				zap.String("order_number", number),
				zap.Int("attempt", attempt+1),
			)
			continue
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return ErrOrderNumberExhausted
}

// applyEffects decrements stock for every line and clears the cart. On any
// failure it compensates: stock already taken is returned and the persisted
// order is deleted.
func (s *checkoutService) applyEffects(ctx context.Context, order *domain.Order, lines []*domain.CartLine, userID uuid.UUID) error {
	applied := make([]*domain.CartLine, 0, len(lines))

	for _, line := range lines {
		err := s.stockRepo.Decrement(ctx, line.ProductID, line.Size, line.Quantity)
		if err == nil {
			applied = append(applied, line)
			continue
		}

		s.compensate(ctx, order, applied)

		if errors.Is(err, repository.ErrInsufficientStock) {
			// Lost the race for the last units since the pre-check
			available, availErr := s.stockRepo.GetAvailable(ctx, line.ProductID, line.Size)
			if availErr != nil {
				available = 0
			}
			return &InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Size:        line.Size,
				Requested:   line.Quantity,
				Available:   available,
			}
		}
		if errors.Is(err, repository.ErrStockUnitNotFound) {
			return fmt.Errorf("product %s size %s no longer exists: %w", line.ProductID, line.Size, err)
		}
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if err := s.cartRepo.ClearUser(ctx, userID); err != nil {
		s.compensate(ctx, order, applied)
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

// compensate unwinds applied stock decrements in reverse order and deletes
// the persisted order. Failures here are logged but not returned: the
// checkout has already failed and the caller gets the original error.
func (s *checkoutService) compensate(ctx context.Context, order *domain.Order, applied []*domain.CartLine) {
	for i := len(applied) - 1; i >= 0; i-- {
		line := applied[i]
		if err := s.stockRepo.Increment(ctx, line.ProductID, line.Size, line.Quantity); err != nil {
			s.logger.Error("Failed to restore stock during checkout rollback",
				zap.String("product_id", line.ProductID.String()),
				zap.String("size", line.Size),
				zap.Int("quantity", line.Quantity),
				zap.Error(err),
			)
		}
	}

	if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
		s.logger.Error("Failed to delete order during checkout rollback",
			zap.String("order_id", order.ID.String()),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
}
