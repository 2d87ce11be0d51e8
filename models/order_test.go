package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	// Happy path
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusPreparing))
	assert.True(t, OrderStatusPreparing.CanTransitionTo(OrderStatusReady))
	assert.True(t, OrderStatusReady.CanTransitionTo(OrderStatusCompleted))

	// Payment webhook path
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusPaid))
	assert.True(t, OrderStatusPaid.CanTransitionTo(OrderStatusPreparing))

	// No skipping forward or moving backwards
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusReady))
	assert.False(t, OrderStatusReady.CanTransitionTo(OrderStatusPreparing))
	assert.False(t, OrderStatusPreparing.CanTransitionTo(OrderStatusCompleted))

	// Cancelled is reachable from every non-terminal state
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusPaid, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady} {
		assert.True(t, s.CanTransitionTo(OrderStatusCancelled), "from %s", s)
	}

	// Terminal states allow nothing
	for _, s := range []OrderStatus{OrderStatusCompleted, OrderStatusCancelled} {
		assert.True(t, s.IsTerminal())
		for _, next := range []OrderStatus{OrderStatusPending, OrderStatusPreparing, OrderStatusReady, OrderStatusCancelled} {
			assert.False(t, s.CanTransitionTo(next), "%s -> %s", s, next)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("Preparing")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPreparing, s)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)
}

func TestRecomputeTotals(t *testing.T) {
	order := Order{
		OrderType: OrderTypePickup,
		Items: []OrderItem{
			{Name: "Margherita", Price: decimal.RequireFromString("9.50"), Quantity: 2},
			{Name: "Lemonade", Price: decimal.RequireFromString("3.25"), Quantity: 1},
		},
	}
	taxRate := decimal.RequireFromString("0.10")
	fee := decimal.RequireFromString("4.00")

	order.RecomputeTotals(taxRate, fee)
	assert.Equal(t, "22.25", order.Subtotal.StringFixed(2))
	assert.Equal(t, "2.23", order.Tax.StringFixed(2))
	assert.True(t, order.DeliveryFee.IsZero(), "pickup orders carry no delivery fee")
	assert.Equal(t, order.Subtotal.Add(order.Tax).StringFixed(2), order.Total.StringFixed(2))

	order.OrderType = OrderTypeDelivery
	order.RecomputeTotals(taxRate, fee)
	assert.Equal(t, "4.00", order.DeliveryFee.StringFixed(2))
	assert.Equal(t, order.Subtotal.Add(order.Tax).Add(order.DeliveryFee).StringFixed(2), order.Total.StringFixed(2))
}

func TestNewOrderNumber(t *testing.T) {
	n := NewOrderNumber()
	require.True(t, strings.HasPrefix(n, "ORD-"))
	parts := strings.Split(n, "-")
	require.Len(t, parts, 3)
	assert.Len(t, parts[1], 8)
	assert.Len(t, parts[2], 4)
	assert.NotEqual(t, n, NewOrderNumber())
}

func TestRoleImplies(t *testing.T) {
	assert.True(t, RoleAdmin.Implies(RoleKitchen))
	assert.True(t, RoleAdmin.Implies(RoleAdmin))
	assert.True(t, RoleKitchen.Implies(RoleKitchen))
	assert.False(t, RoleKitchen.Implies(RoleAdmin))
}
