package analytics

import (
	"opsight/internal/domain"
)

// Coordinate is the resolved location of a zip prefix. Source geolocation
// data carries many noisy points per prefix; BuildIndexes pre-aggregates
// them to the mean coordinate so the join stays one-to-one and runs are
// reproducible.
type Coordinate struct {
	Lat float64
	Lng float64
}

// DiscardTally counts rows dropped during indexing and analysis. Discards
// never abort a run; they are surfaced on the report.
type DiscardTally struct {
	// UnresolvedItems are order items whose order, product or seller id did
	// not resolve.
	UnresolvedItems int
	// InvalidItems carried a negative price or freight value or a missing
	// key field.
	InvalidItems int
	// OrdersWithoutCustomer are orders whose customer id did not resolve.
	OrdersWithoutCustomer int
	// ItemsWithoutGeo are item rows the cluster engine skipped because the
	// customer or its zip prefix had no geolocation.
	ItemsWithoutGeo int
}

// Total returns the number of discarded rows across all causes.
func (d DiscardTally) Total() int {
	return d.UnresolvedItems + d.InvalidItems + d.OrdersWithoutCustomer + d.ItemsWithoutGeo
}

// Indexes are the per-analysis in-memory lookups built once per run so each
// analyzer need not rescan the raw collections. All maps are read-only after
// BuildIndexes returns.
type Indexes struct {
	Orders    map[string]domain.Order
	Products  map[string]domain.Product
	Sellers   map[string]domain.Seller
	Customers map[string]domain.Customer

	// OrdersPerCustomer counts all orders per customer id, the basis of the
	// first-time-buyer test in the risk scorer.
	OrdersPerCustomer map[string]int

	// Items holds every order item that resolved to an existing order,
	// product and seller and passed validation.
	Items []domain.OrderItem

	// ItemsByOrder groups Items by order id for per-order pair generation.
	ItemsByOrder map[string][]domain.OrderItem

	// ReviewsByOrder groups review rows by order id. An order may carry more
	// than one review row; the fan-out is preserved.
	ReviewsByOrder map[string][]domain.Review

	// GeoByZip maps a zip prefix to its mean coordinate.
	GeoByZip map[string]Coordinate

	Discards DiscardTally
}

// BuildIndexes scans the snapshot once per collection and builds the shared
// lookups. Rows with unresolved references are dropped and tallied, never
// fatal.
func BuildIndexes(snap *domain.Snapshot) *Indexes {
	idx := &Indexes{
		Orders:            make(map[string]domain.Order, len(snap.Orders)),
		Products:          make(map[string]domain.Product, len(snap.Products)),
		Sellers:           make(map[string]domain.Seller, len(snap.Sellers)),
		Customers:         make(map[string]domain.Customer, len(snap.Customers)),
		OrdersPerCustomer: make(map[string]int, len(snap.Customers)),
		ItemsByOrder:      make(map[string][]domain.OrderItem),
		ReviewsByOrder:    make(map[string][]domain.Review),
		GeoByZip:          make(map[string]Coordinate),
	}

	for _, c := range snap.Customers {
		idx.Customers[c.ID] = c
	}
	for _, p := range snap.Products {
		idx.Products[p.ID] = p
	}
	for _, s := range snap.Sellers {
		idx.Sellers[s.ID] = s
	}

	for _, o := range snap.Orders {
		idx.Orders[o.ID] = o
		idx.OrdersPerCustomer[o.CustomerID]++
		if _, ok := idx.Customers[o.CustomerID]; !ok {
			idx.Discards.OrdersWithoutCustomer++
		}
	}

	idx.Items = make([]domain.OrderItem, 0, len(snap.OrderItems))
	for _, it := range snap.OrderItems {
		if !it.IsValid() {
			idx.Discards.InvalidItems++
			continue
		}
		if _, ok := idx.Orders[it.OrderID]; !ok {
			idx.Discards.UnresolvedItems++
			continue
		}
		if _, ok := idx.Products[it.ProductID]; !ok {
			idx.Discards.UnresolvedItems++
			continue
		}
		if _, ok := idx.Sellers[it.SellerID]; !ok {
			idx.Discards.UnresolvedItems++
			continue
		}
		idx.Items = append(idx.Items, it)
		idx.ItemsByOrder[it.OrderID] = append(idx.ItemsByOrder[it.OrderID], it)
	}

	for _, r := range snap.Reviews {
		idx.ReviewsByOrder[r.OrderID] = append(idx.ReviewsByOrder[r.OrderID], r)
	}

	idx.GeoByZip = aggregateGeoPoints(snap.GeoPoints)
	return idx
}

// aggregateGeoPoints collapses duplicate geolocation rows to one mean
// coordinate per zip prefix.
func aggregateGeoPoints(points []domain.GeoPoint) map[string]Coordinate {
	type geoSum struct {
		lat, lng float64
		n        int
	}
	sums := make(map[string]*geoSum)
	for _, gp := range points {
		s := sums[gp.ZipPrefix]
		if s == nil {
			s = &geoSum{}
			sums[gp.ZipPrefix] = s
		}
		s.lat += gp.Latitude
		s.lng += gp.Longitude
		s.n++
	}

	out := make(map[string]Coordinate, len(sums))
	for zip, s := range sums {
		out[zip] = Coordinate{Lat: s.lat / float64(s.n), Lng: s.lng / float64(s.n)}
	}
	return out
}
