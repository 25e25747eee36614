package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

// OrderStatuses lists every status accepted by the admin transition endpoint
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// Valid reports whether s is one of the enumerated order statuses
func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusRefunded
}

// CanTransition reports whether an order may move from s to target.
// Forward movement follows PENDING -> CONFIRMED -> PROCESSING -> SHIPPED -> DELIVERED;
// CANCELLED and REFUNDED are reachable from any non-terminal state.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	if !target.Valid() || s.IsTerminal() {
		return false
	}
	switch target {
	case OrderStatusCancelled, OrderStatusRefunded:
		return true
	case OrderStatusConfirmed:
		return s == OrderStatusPending
	case OrderStatusProcessing:
		return s == OrderStatusConfirmed
	case OrderStatusShipped:
		return s == OrderStatusProcessing
	case OrderStatusDelivered:
		return s == OrderStatusShipped
	default:
		return false
	}
}

// Order is an immutable record of a successful checkout. Customer and
// shipping fields are snapshotted from the request; monetary amounts are in
// minor currency units. Only Status changes after creation.
type Order struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	UserID          uuid.UUID    `json:"user_id" db:"user_id"`
	OrderNumber     string       `json:"order_number" db:"order_number"`
	CustomerName    string       `json:"customer_name" db:"customer_name"`
	CustomerEmail   string       `json:"customer_email" db:"customer_email"`
	CustomerPhone   string       `json:"customer_phone" db:"customer_phone"`
	ShippingAddress string       `json:"shipping_address" db:"shipping_address"`
	ShippingCity    string       `json:"shipping_city" db:"shipping_city"`
	ShippingState   string       `json:"shipping_state" db:"shipping_state"`
	ShippingZip     string       `json:"shipping_zip" db:"shipping_zip"`
	Subtotal        int64        `json:"subtotal" db:"subtotal"`
	Shipping        int64        `json:"shipping" db:"shipping"`
	Total           int64        `json:"total" db:"total"`
	Status          OrderStatus  `json:"status" db:"status"`
	Items           []*OrderItem `json:"items"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

// OrderItem snapshots one cart line at the moment of purchase. It is
// deliberately decoupled from the live product so historical orders stay
// stable when products are edited or deleted.
type OrderItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OrderID      uuid.UUID `json:"order_id" db:"order_id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	ProductName  string    `json:"product_name" db:"product_name"`
	ProductImage string    `json:"product_image" db:"product_image"`
	Size         string    `json:"size" db:"size"`
	Quantity     int       `json:"quantity" db:"quantity"`
	Price        int64     `json:"price" db:"price"`
	Discount     int       `json:"discount" db:"discount"`
	Subtotal     int64     `json:"subtotal" db:"subtotal"`
}
