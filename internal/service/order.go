package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/printpower/storefront/internal/domain"
)

// Orders exposes order lookups to handlers.
type Orders struct {
	store domain.OrderStore
}

// Compile-time check that Orders implements domain.OrderService.
var _ domain.OrderService = (*Orders)(nil)

// NewOrders creates the order lookup service.
func NewOrders(store domain.OrderStore) *Orders {
	return &Orders{store: store}
}

// GetOrder retrieves an order by its UUID.
func (s *Orders) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.Invalid("order.get", "invalid order id")
	}
	return s.store.GetOrder(ctx, orderID)
}

// GetOrderByNumber retrieves an order by its human-readable number.
func (s *Orders) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	if number == "" {
		return nil, domain.Invalid("order.get_by_number", "order number required")
	}
	return s.store.GetOrderByNumber(ctx, number)
}
