package analytics

import (
	"testing"
	"time"

	"opsight/internal/domain"
)

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return parsed
}

func newTestPipeline(t *testing.T, params Params) *Pipeline {
	t.Helper()
	p, err := NewPipeline(params, nil)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return p
}

// deliveredOrder builds a delivered order with the given purchase date and
// lead time in days.
func deliveredOrder(id, customerID string, purchased time.Time, leadDays int) domain.Order {
	return domain.Order{
		ID:          id,
		CustomerID:  customerID,
		Status:      domain.OrderStatusDelivered,
		PurchasedAt: purchased,
		DeliveredAt: purchased.AddDate(0, 0, leadDays),
	}
}

func item(orderID string, seq int, productID, sellerID string, price, freight float64) domain.OrderItem {
	return domain.OrderItem{
		OrderID:   orderID,
		Seq:       seq,
		ProductID: productID,
		SellerID:  sellerID,
		Price:     price,
		Freight:   freight,
	}
}
