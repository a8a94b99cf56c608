// Package dataset is the data-access collaborator: it reads the eight
// entity CSV files of a snapshot directory into an immutable
// domain.Snapshot. Malformed rows are skipped and tallied, never fatal.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"opsight/internal/domain"
)

// File names expected inside a snapshot directory.
const (
	CustomersFile  = "customers.csv"
	OrdersFile     = "orders.csv"
	ProductsFile   = "products.csv"
	SellersFile    = "sellers.csv"
	OrderItemsFile = "order_items.csv"
	PaymentsFile   = "payments.csv"
	ReviewsFile    = "reviews.csv"
	GeoFile        = "geolocation.csv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads one snapshot directory.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader returns a loader for the given directory.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, logger: logger}
}

// Load reads all eight entity files. Payments and reviews are optional on
// disk (an empty collection results); the other six files must exist.
func (l *Loader) Load(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}

	steps := []struct {
		file     string
		required bool
		parse    func(table) int // returns skipped row count
	}{
		{CustomersFile, true, func(t table) int { return l.parseCustomers(t, snap) }},
		{OrdersFile, true, func(t table) int { return l.parseOrders(t, snap) }},
		{ProductsFile, true, func(t table) int { return l.parseProducts(t, snap) }},
		{SellersFile, true, func(t table) int { return l.parseSellers(t, snap) }},
		{OrderItemsFile, true, func(t table) int { return l.parseOrderItems(t, snap) }},
		{PaymentsFile, false, func(t table) int { return l.parsePayments(t, snap) }},
		{ReviewsFile, false, func(t table) int { return l.parseReviews(t, snap) }},
		{GeoFile, true, func(t table) int { return l.parseGeoPoints(t, snap) }},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(l.dir, step.file)
		t, err := readTable(path)
		if err != nil {
			if os.IsNotExist(err) && !step.required {
				l.logger.InfoContext(ctx, "optional snapshot file missing", "file", step.file)
				continue
			}
			return nil, fmt.Errorf("load %s: %w", step.file, err)
		}
		skipped := step.parse(t)
		l.logger.InfoContext(ctx, "loaded snapshot file",
			"file", step.file, "rows", len(t.rows), "skipped", skipped)
	}
	return snap, nil
}

// table is a parsed CSV file with a header-index lookup.
type table struct {
	cols map[string]int
	rows [][]string
}

func (t table) field(row []string, name string) string {
	i, ok := t.cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func readTable(path string) (table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return table{}, err
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return table{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return table{}, fmt.Errorf("empty file")
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	return table{cols: cols, rows: records[1:]}, nil
}

func (l *Loader) parseCustomers(t table, snap *domain.Snapshot) int {
	skipped := 0
	for _, row := range t.rows {
		c := domain.Customer{
			ID:        t.field(row, "customer_id"),
			PersonID:  t.field(row, "person_id"),
			ZipPrefix: t.field(row, "zip_prefix"),
			City:      t.field(row, "city"),
			State:     t.field(row, "state"),
		}
		if c.ID == "" {
			skipped++
			continue
		}
		snap.Customers = append(snap.Customers, c)
	}
	return skipped
}

func (l *Loader) parseOrders(t table, snap *domain.Snapshot) int {
	skipped := 0
	for _, row := range t.rows {
		purchased, err := parseTimestamp(t.field(row, "purchased_at"))
		if err != nil || purchased.IsZero() {
			// Purchase timestamp is the one required timestamp.
			skipped++
			continue
		}
		o := domain.Order{
			ID:          t.field(row, "order_id"),
			CustomerID:  t.field(row, "customer_id"),
			Status:      t.field(row, "status"),
			PurchasedAt: purchased,
		}
		if o.ID == "" {
			skipped++
			continue
		}
		o.ApprovedAt = parseOptionalTimestamp(t.field(row, "approved_at"))
		o.ShippedAt = parseOptionalTimestamp(t.field(row, "shipped_at"))
		o.DeliveredAt = parseOptionalTimestamp(t.field(row, "delivered_at"))
		o.EstimatedDeliveryAt = parseOptionalTimestamp(t.field(row, "estimated_delivery_at"))
		snap.Orders = append(snap.Orders, o)
	}
	return skipped
}

func (l *Loader) parseProducts(t table, snap *domain.Snapshot) int {
	skipped := 0
	for _, row := range t.rows {
		p := domain.Product{
			ID:       t.field(row, "product_id"),
			Category: t.field(row, "category"),
		}
		if p.ID == "" {
			skipped++
			continue
		}
		snap.Products = append(snap.Products, p)
	}
	return skipped
}

func (l *Loader) parseSellers(t table, snap *domain.Snapshot) int {
	skipped := 0
	for _, row := range t.rows {
		s := domain.Seller{
			ID:        t.field(row, "seller_id"),
			ZipPrefix: t.field(row, "zip_prefix"),
			City:      t.field(row, "city"),
			State:     t.field(row, "state"),
		}
		if s.ID == "" {
			skipped++
			continue
		}
		snap.Sellers = append(snap.Sellers, s)
	}
	return skipped
}

func (l *Loader) parseOrderItems(t table, snap *domain.Snapshot) int {
	skipped := 0
	for _, row := range t.rows {
		seq, err := strconv.Atoi(t.field(row, "item_seq"))
		if err != nil {
			skipped++
			continue
		}
		price, err := strconv.ParseFloat(t.field(row, "price"), 64)
		if err != nil {
			skipped++
			continue
		}
		freight, err := strconv.ParseFloat(t.field(row, "freight"), 64)
		if err != nil {
			skipped++
			continue
		}
		it := domain.OrderItem{
			OrderID:         t.field(row, "order_id"),
			Seq:             seq,
			ProductID:       t.field(row, "product_id"),
			SellerID:        t.field(row, "seller_id"),
			ShippingLimitAt: parseOptionalTimestamp(t.field(row, "shipping_limit_at")),
			Price:           price,
			Freight:         freight,
		}
		if it.OrderID == "" || it.ProductID == "" || it.SellerID == "" {
			skipped++
			continue
		}
		snap.OrderItems = append(snap.OrderItems, it)
	}
	return skipped
}

func (l *Loader) parsePayments(t table, snap *domain.Snapshot) int {
	skipped := 0
	for _, row := range t.rows {
		seq, err := strconv.Atoi(t.field(row, "payment_seq"))
		if err != nil {
			skipped++
			continue
		}
		value, err := strconv.ParseFloat(t.field(row, "value"), 64)
		if err != nil {
			skipped++
			continue
		}
		p := domain.Payment{
			OrderID: t.field(row, "order_id"),
			Seq:     seq,
			Type:    t.field(row, "type"),
			Value:   value,
		}
		if p.OrderID == "" {
			skipped++
			continue
		}
		snap.Payments = append(snap.Payments, p)
	}
	return skipped
}

func (l *Loader) parseReviews(t table, snap *domain.Snapshot) int {
	skipped := 0
	for _, row := range t.rows {
		score, err := strconv.Atoi(t.field(row, "score"))
		if err != nil || score < 1 || score > 5 {
			skipped++
			continue
		}
		r := domain.Review{
			ReviewID:   t.field(row, "review_id"),
			OrderID:    t.field(row, "order_id"),
			Score:      score,
			CreatedAt:  parseOptionalTimestamp(t.field(row, "created_at")),
			AnsweredAt: parseOptionalTimestamp(t.field(row, "answered_at")),
		}
		if r.ReviewID == "" || r.OrderID == "" {
			skipped++
			continue
		}
		snap.Reviews = append(snap.Reviews, r)
	}
	return skipped
}

func (l *Loader) parseGeoPoints(t table, snap *domain.Snapshot) int {
	skipped := 0
	for _, row := range t.rows {
		lat, errLat := strconv.ParseFloat(t.field(row, "lat"), 64)
		lng, errLng := strconv.ParseFloat(t.field(row, "lng"), 64)
		gp := domain.GeoPoint{
			ZipPrefix: t.field(row, "zip_prefix"),
			Latitude:  lat,
			Longitude: lng,
			City:      t.field(row, "city"),
			State:     t.field(row, "state"),
		}
		if gp.ZipPrefix == "" || errLat != nil || errLng != nil {
			skipped++
			continue
		}
		snap.GeoPoints = append(snap.GeoPoints, gp)
	}
	return skipped
}

// timestampLayouts are tried in order when parsing snapshot timestamps.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// parseOptionalTimestamp returns the zero time for empty or malformed
// values; absent timestamps are represented by time.Time's zero value.
func parseOptionalTimestamp(s string) time.Time {
	t, err := parseTimestamp(s)
	if err != nil {
		return time.Time{}
	}
	return t
}
