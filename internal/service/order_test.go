package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printpower/storefront/internal/domain"
)

func TestOrders_GetOrder(t *testing.T) {
	orderID := uuid.New()
	svc := NewOrders(&mockOrderStore{
		GetOrderFunc: func(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
			if id == orderID {
				return &domain.Order{ID: orderID, OrderNumber: "PPP-1042"}, nil
			}
			return nil, domain.NotFound("order.get", "order", id.String())
		},
	})

	order, err := svc.GetOrder(context.Background(), orderID.String())
	require.NoError(t, err)
	assert.Equal(t, "PPP-1042", order.OrderNumber)

	_, err = svc.GetOrder(context.Background(), "not-a-uuid")
	assert.True(t, domain.IsCode(err, domain.EINVALID))

	_, err = svc.GetOrder(context.Background(), uuid.NewString())
	assert.True(t, domain.IsCode(err, domain.ENOTFOUND))
}

func TestOrders_GetOrderByNumber(t *testing.T) {
	svc := NewOrders(&mockOrderStore{
		GetOrderByNumberFunc: func(ctx context.Context, number string) (*domain.Order, error) {
			if number == "PPP-1042" {
				return &domain.Order{OrderNumber: number}, nil
			}
			return nil, domain.NotFound("order.get_by_number", "order", number)
		},
	})

	order, err := svc.GetOrderByNumber(context.Background(), "PPP-1042")
	require.NoError(t, err)
	assert.Equal(t, "PPP-1042", order.OrderNumber)

	_, err = svc.GetOrderByNumber(context.Background(), "")
	assert.True(t, domain.IsCode(err, domain.EINVALID))
}
