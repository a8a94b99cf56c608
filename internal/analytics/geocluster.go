package analytics

import (
	"sort"
)

// clusterKey is a coarse grid cell: coordinates truncated toward zero at the
// configured number of decimals. Truncation keeps points on either side of a
// rounding boundary in the cell their leading digits name, e.g. 12.34 and
// 12.36 both land in 12.3.
type clusterKey struct {
	lat float64
	lng float64
}

// ClusterDemand buckets item rows into the coordinate grid of their
// customer's zip prefix and ranks the buckets by per-line-item volume and by
// shipping cost. An order with several items contributes one count per item.
// The second return value is the number of item rows skipped for missing
// geolocation.
func (p *Pipeline) ClusterDemand(idx *Indexes) (GeoClusterReport, int) {
	type clusterAccum struct {
		orders int
		cost   float64
	}

	accums := make(map[clusterKey]*clusterAccum)
	// Keys in first-seen order; ties in both rankings break by insertion
	// order of the cluster key.
	var insertion []clusterKey
	skipped := 0

	for _, it := range idx.Items {
		order := idx.Orders[it.OrderID]
		customer, ok := idx.Customers[order.CustomerID]
		if !ok {
			skipped++
			continue
		}
		coord, ok := idx.GeoByZip[customer.ZipPrefix]
		if !ok {
			skipped++
			continue
		}

		k := clusterKey{
			lat: truncTo(coord.Lat, p.params.ClusterRoundingDecimals),
			lng: truncTo(coord.Lng, p.params.ClusterRoundingDecimals),
		}
		a := accums[k]
		if a == nil {
			a = &clusterAccum{}
			accums[k] = a
			insertion = append(insertion, k)
		}
		a.orders++
		a.cost += it.Freight
	}

	rows := make([]ClusterRow, 0, len(insertion))
	for _, k := range insertion {
		a := accums[k]
		rows = append(rows, ClusterRow{
			Latitude:          k.lat,
			Longitude:         k.lng,
			TotalOrders:       a.orders,
			TotalShippingCost: a.cost,
		})
	}

	return GeoClusterReport{
		TopByVolume: topClusters(rows, p.params.ClusterTopNVolume, func(r ClusterRow) float64 { return float64(r.TotalOrders) }),
		TopByCost:   topClusters(rows, p.params.ClusterTopNCost, func(r ClusterRow) float64 { return r.TotalShippingCost }),
	}, skipped
}

// topClusters returns the n highest-valued rows, descending, keeping the
// incoming order for equal values.
func topClusters(rows []ClusterRow, n int, value func(ClusterRow) float64) []ClusterRow {
	ranked := make([]ClusterRow, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return value(ranked[i]) > value(ranked[j])
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
