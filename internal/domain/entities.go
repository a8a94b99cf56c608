// Package domain defines the read-only entity model shared by the analytics
// pipeline and its collaborators. Entities are created once by the load step
// and never mutated; optional timestamps use the zero time.Time as "absent".
package domain

import "time"

// OrderStatusDelivered marks orders that completed customer delivery.
const OrderStatusDelivered = "delivered"

// Customer identifies a buyer account. PersonID is stable across accounts
// belonging to the same person.
type Customer struct {
	ID        string
	PersonID  string
	ZipPrefix string
	City      string
	State     string
}

// Order is a single purchase. PurchasedAt is always set; the remaining
// timestamps may be absent depending on how far the order progressed.
type Order struct {
	ID                  string
	CustomerID          string
	Status              string
	PurchasedAt         time.Time
	ApprovedAt          time.Time
	ShippedAt           time.Time // carrier handoff
	DeliveredAt         time.Time // customer delivery
	EstimatedDeliveryAt time.Time
}

// IsDelivered reports whether the order reached the customer and carries a
// usable delivery timestamp.
func (o Order) IsDelivered() bool {
	return o.Status == OrderStatusDelivered && !o.DeliveredAt.IsZero()
}

// Product carries the catalog category used by the trend and co-purchase
// analyzers.
type Product struct {
	ID       string
	Category string
}

// Seller identifies a marketplace seller.
type Seller struct {
	ID        string
	ZipPrefix string
	City      string
	State     string
}

// OrderItem is one line of an order, keyed by (OrderID, Seq).
type OrderItem struct {
	OrderID         string
	Seq             int
	ProductID       string
	SellerID        string
	ShippingLimitAt time.Time
	Price           float64
	Freight         float64
}

// IsValid reports whether the line item carries non-negative amounts and the
// keys the analyzers join on.
func (oi OrderItem) IsValid() bool {
	return oi.OrderID != "" && oi.ProductID != "" && oi.SellerID != "" &&
		oi.Price >= 0 && oi.Freight >= 0
}

// Payment is one payment installment against an order, keyed by
// (OrderID, Seq). Not consumed by the analyzers; retained for snapshot
// completeness.
type Payment struct {
	OrderID string
	Seq     int
	Type    string
	Value   float64
}

// Review is a customer review. An order may carry more than one review row.
type Review struct {
	ReviewID   string
	OrderID    string
	Score      int
	CreatedAt  time.Time
	AnsweredAt time.Time
}

// GeoPoint maps a zip prefix to a coordinate. The source data is noisy: a
// prefix usually maps to many nearby points.
type GeoPoint struct {
	ZipPrefix string
	Latitude  float64
	Longitude float64
	City      string
	State     string
}

// Snapshot is the immutable input to a pipeline run: the eight entity
// collections supplied by the data-access layer.
type Snapshot struct {
	Customers  []Customer
	Orders     []Order
	Products   []Product
	Sellers    []Seller
	OrderItems []OrderItem
	Payments   []Payment
	Reviews    []Review
	GeoPoints  []GeoPoint
}
