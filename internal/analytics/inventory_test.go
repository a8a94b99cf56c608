package analytics

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsight/internal/domain"
)

// inventorySnapshot builds n delivered single-item orders for one product.
// Purchases are spread so the first and last are spanDays apart; every order
// delivers leadDays after purchase.
func inventorySnapshot(t *testing.T, n, spanDays, leadDays int, price, freight float64) *domain.Snapshot {
	t.Helper()
	snap := &domain.Snapshot{
		Products: []domain.Product{{ID: "P1", Category: "tools"}},
		Sellers:  []domain.Seller{{ID: "S1"}},
	}
	start := ts(t, "2023-01-01")
	for i := 0; i < n; i++ {
		offset := 0
		if i == n-1 {
			offset = spanDays
		} else if i > 0 {
			offset = i * spanDays / n
		}
		orderID := fmt.Sprintf("o%d", i)
		customerID := fmt.Sprintf("c%d", i)
		snap.Customers = append(snap.Customers, domain.Customer{ID: customerID})
		snap.Orders = append(snap.Orders, deliveredOrder(orderID, customerID, start.AddDate(0, 0, offset), leadDays))
		snap.OrderItems = append(snap.OrderItems, item(orderID, 1, "P1", "S1", price, freight))
	}
	return snap
}

func TestOptimizeInventoryWorkedExample(t *testing.T) {
	// 10 delivered items spanning 100 days at avg price 50 and avg freight
	// 10: annual demand 36.5, EOQ sqrt(2*36.5*10/(50*0.2)) = 8.54 -> 9.
	snap := inventorySnapshot(t, 10, 100, 10, 50, 10)
	p := newTestPipeline(t, DefaultParams())

	rows, err := p.OptimizeInventory(context.Background(), BuildIndexes(snap))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "P1", row.ProductID)
	assert.InDelta(t, 36.50, row.AnnualDemand, 0.001)
	assert.Equal(t, 9.0, row.EOQ)
	// Constant 10-day lead time: zero variability, so no safety stock and a
	// reorder point of one lead-time demand, 10 * 36.5/365 = 1.
	assert.Equal(t, 0.0, row.SafetyStock)
	assert.Equal(t, 1.0, row.ReorderPoint)
}

func TestOptimizeInventoryExclusions(t *testing.T) {
	p := newTestPipeline(t, DefaultParams())

	tests := []struct {
		name string
		snap *domain.Snapshot
	}{
		{
			name: "at_most_threshold_items",
			snap: inventorySnapshot(t, 5, 100, 10, 50, 10),
		},
		{
			name: "zero_day_span",
			snap: inventorySnapshot(t, 10, 0, 10, 50, 10),
		},
		{
			name: "zero_average_price",
			snap: inventorySnapshot(t, 10, 100, 10, 0, 10),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := p.OptimizeInventory(context.Background(), BuildIndexes(tt.snap))
			require.NoError(t, err)
			assert.Empty(t, rows)
		})
	}
}

func TestOptimizeInventorySkipsUndeliveredOrders(t *testing.T) {
	snap := inventorySnapshot(t, 10, 100, 10, 50, 10)
	// Shipped but never delivered: drops the group to the threshold.
	for i := range snap.Orders[:5] {
		snap.Orders[i].Status = "shipped"
		snap.Orders[i].DeliveredAt = snap.Orders[i].PurchasedAt // ignored for non-delivered status
	}

	p := newTestPipeline(t, DefaultParams())
	rows, err := p.OptimizeInventory(context.Background(), BuildIndexes(snap))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOptimizeInventoryInvariants(t *testing.T) {
	// Variable lead times produce a positive safety stock; the reorder point
	// must never fall below it.
	snap := inventorySnapshot(t, 12, 200, 7, 80, 12)
	for i := range snap.Orders {
		snap.Orders[i].DeliveredAt = snap.Orders[i].PurchasedAt.AddDate(0, 0, 3+i)
	}

	p := newTestPipeline(t, DefaultParams())
	rows, err := p.OptimizeInventory(context.Background(), BuildIndexes(snap))
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	for _, row := range rows {
		assert.GreaterOrEqual(t, row.ReorderPoint, row.SafetyStock)
		assert.GreaterOrEqual(t, row.SafetyStock, 0.0)
		assert.GreaterOrEqual(t, row.EOQ, 0.0)
	}
}

func TestOptimizeInventorySortedByReorderPoint(t *testing.T) {
	snap := inventorySnapshot(t, 10, 100, 10, 50, 10)
	second := inventorySnapshot(t, 10, 100, 40, 50, 10)
	// Merge the second product under new ids.
	snap.Products = append(snap.Products, domain.Product{ID: "P2", Category: "tools"})
	for i, o := range second.Orders {
		o.ID = fmt.Sprintf("x%d", i)
		o.CustomerID = fmt.Sprintf("xc%d", i)
		snap.Orders = append(snap.Orders, o)
		snap.Customers = append(snap.Customers, domain.Customer{ID: o.CustomerID})
		snap.OrderItems = append(snap.OrderItems, item(o.ID, 1, "P2", "S1", 50, 10))
	}

	p := newTestPipeline(t, DefaultParams())
	rows, err := p.OptimizeInventory(context.Background(), BuildIndexes(snap))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "P2", rows[0].ProductID) // longer lead time, higher reorder point
	assert.GreaterOrEqual(t, rows[0].ReorderPoint, rows[1].ReorderPoint)
}

func TestOptimizeInventoryCancellation(t *testing.T) {
	snap := inventorySnapshot(t, 10, 100, 10, 50, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(t, DefaultParams())
	_, err := p.OptimizeInventory(ctx, BuildIndexes(snap))
	assert.ErrorIs(t, err, context.Canceled)
}
