package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/services"
)

func TestOrderCreateComputesTotal(t *testing.T) {
	svcs, _ := newFixture(t)
	ctx := context.Background()

	roses := createTestProduct(t, svcs, "Red Roses", "FY-1", 29.99)
	lilies := createTestProduct(t, svcs, "White Lilies", "FY-2", 19.99)

	order, err := svcs.Order.Create(ctx, &services.CreateOrderRequest{
		CustomerEmail:   "rosa@example.com",
		CustomerName:    "Rosa Morales",
		DeliveryAddress: "Av. Libertador 123, Caracas",
		Items: []services.OrderItemRequest{
			{ProductID: roses.ID, Quantity: 2},
			{ProductID: lilies.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(order.OrderNumber, "FY-"), "order number %q", order.OrderNumber)
	require.Equal(t, "pending", order.Status)
	require.InDelta(t, 2*29.99+19.99, order.TotalUSD, 0.001)

	// Item lines snapshot the product name and price at order time.
	require.Len(t, order.Items, 2)
	require.Equal(t, "Red Roses", order.Items[0].ProductName)
	require.Equal(t, 29.99, order.Items[0].UnitPriceUSD)
	require.Equal(t, int64(2), order.Items[0].Quantity)
}

func TestOrderCreateUnknownProduct(t *testing.T) {
	svcs, _ := newFixture(t)

	_, err := svcs.Order.Create(context.Background(), &services.CreateOrderRequest{
		CustomerEmail:   "rosa@example.com",
		CustomerName:    "Rosa Morales",
		DeliveryAddress: "Av. Libertador 123, Caracas",
		Items:           []services.OrderItemRequest{{ProductID: 999, Quantity: 1}},
	})
	require.True(t, apperror.IsKind(err, apperror.KindNotFound), "got %v", err)
}

func TestOrderCreateValidation(t *testing.T) {
	svcs, _ := newFixture(t)

	// No items.
	_, err := svcs.Order.Create(context.Background(), &services.CreateOrderRequest{
		CustomerEmail:   "rosa@example.com",
		CustomerName:    "Rosa Morales",
		DeliveryAddress: "Av. Libertador 123, Caracas",
	})
	require.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)
}

func TestOrderUpdateStatusAppendsHistory(t *testing.T) {
	svcs, _ := newFixture(t)
	ctx := context.Background()

	roses := createTestProduct(t, svcs, "Red Roses", "FY-1", 29.99)
	order, err := svcs.Order.Create(ctx, &services.CreateOrderRequest{
		CustomerEmail:   "rosa@example.com",
		CustomerName:    "Rosa Morales",
		DeliveryAddress: "Av. Libertador 123, Caracas",
		Items:           []services.OrderItemRequest{{ProductID: roses.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	admin := int64(1)
	updated, err := svcs.Order.UpdateStatus(ctx, order.ID, "shipped", "left the shop", &admin)
	require.NoError(t, err)
	require.Equal(t, "shipped", updated.Status)

	history, err := svcs.Order.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "shipped", history[0].Status)
	require.Equal(t, "left the shop", history[0].Notes)
	require.Equal(t, admin, *history[0].ChangedBy)

	_, err = svcs.Order.UpdateStatus(ctx, order.ID, "", "", nil)
	require.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)
}
