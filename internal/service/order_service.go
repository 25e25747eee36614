package service

import (
	"context"
	"errors"
	"fmt"

	"aura-store/internal/domain"
	"aura-store/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrOrderAccessDenied       = errors.New("order does not belong to this user")
	ErrInvalidOrderStatus      = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// OrderService exposes order lookup and the admin-only status transitions
type OrderService interface {
	GetOrder(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole string) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListOrders(ctx context.Context, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, target domain.OrderStatus) (*domain.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// GetOrder retrieves an order by ID. Only the owner or an admin may read it.
func (s *orderService) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole string) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != requesterID && requesterRole != domain.RoleAdmin {
		return nil, ErrOrderAccessDenied
	}

	return order, nil
}

// ListUserOrders retrieves all orders of a user, newest first
func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListOrders retrieves orders across all users with optional status filter
func (s *orderService) ListOrders(ctx context.Context, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, int, error) {
	if status != nil && !status.Valid() {
		return nil, 0, ErrInvalidOrderStatus
	}
	return s.orderRepo.List(ctx, status, limit, offset)
}

// UpdateStatus moves an order to the target status. The target must be one
// of the enumerated statuses and reachable from the current state; an
// invalid transition is rejected without mutating the order.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, target domain.OrderStatus) (*domain.Order, error) {
	if !target.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransition(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, target)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, target); err != nil {
		return nil, err
	}

	order.Status = target
	return order, nil
}
