package analytics

import (
	"context"
	"math"
	"sort"
	"time"
)

// inventoryGroup accumulates the per-product statistics behind the reorder
// parameters.
type inventoryGroup struct {
	count      int
	sumPrice   float64
	sumFreight float64
	earliest   time.Time
	latest     time.Time
	leadTimes  []float64 // delivery minus purchase, in days
}

// OptimizeInventory computes EOQ, safety stock and reorder point per
// product over delivered order items. Products with too few items, a
// non-positive average price or a zero-day demand span are excluded.
// Rows come back sorted by reorder point descending.
func (p *Pipeline) OptimizeInventory(ctx context.Context, idx *Indexes) ([]InventoryRow, error) {
	groups := make(map[string]*inventoryGroup)

	for _, it := range idx.Items {
		order := idx.Orders[it.OrderID]
		if !order.IsDelivered() {
			continue
		}

		g := groups[it.ProductID]
		if g == nil {
			g = &inventoryGroup{earliest: order.PurchasedAt, latest: order.PurchasedAt}
			groups[it.ProductID] = g
		}
		g.count++
		g.sumPrice += it.Price
		g.sumFreight += it.Freight
		if order.PurchasedAt.Before(g.earliest) {
			g.earliest = order.PurchasedAt
		}
		if order.PurchasedAt.After(g.latest) {
			g.latest = order.PurchasedAt
		}
		g.leadTimes = append(g.leadTimes, order.DeliveredAt.Sub(order.PurchasedAt).Hours()/24)
	}

	rows := make([]InventoryRow, 0, len(groups))
	for productID, g := range groups {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if g.count <= p.params.MinOrderCountForEOQ {
			continue
		}
		avgPrice := g.sumPrice / float64(g.count)
		if avgPrice <= 0 {
			continue
		}

		spanDays := daysBetweenDates(g.earliest, g.latest)
		annualDemand := safeDiv(float64(g.count), float64(spanDays)/DaysPerYear)
		if !annualDemand.Valid {
			// Zero-day span: annual demand is undefined for this product.
			continue
		}

		avgFreight := g.sumFreight / float64(g.count)
		avgLeadDays := mean(g.leadTimes)
		leadSigma := sampleStdDev(g.leadTimes)

		demand := annualDemand.Float64
		dailyDemand := demand / DaysPerYear
		eoq := economicOrderQuantity(demand, avgFreight, avgPrice, p.params.HoldingCostFraction)
		safetyStock := p.params.ServiceLevelZ * leadSigma * dailyDemand
		reorderPoint := avgLeadDays*dailyDemand + safetyStock

		rows = append(rows, InventoryRow{
			ProductID:    productID,
			AnnualDemand: round2(demand),
			EOQ:          roundUnits(eoq),
			SafetyStock:  roundUnits(safetyStock),
			ReorderPoint: roundUnits(reorderPoint),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ReorderPoint != rows[j].ReorderPoint {
			return rows[i].ReorderPoint > rows[j].ReorderPoint
		}
		return rows[i].ProductID < rows[j].ProductID
	})
	return rows, nil
}

// economicOrderQuantity is the classic EOQ formula with the per-item freight
// value standing in for the ordering cost and a fractional holding cost on
// the average price.
func economicOrderQuantity(annualDemand, orderingCost, unitPrice, holdingFraction float64) float64 {
	return math.Sqrt(2 * annualDemand * orderingCost / (unitPrice * holdingFraction))
}

// daysBetweenDates returns the whole-day distance between the date parts of
// the two timestamps.
func daysBetweenDates(a, b time.Time) int {
	return int(truncateDate(b).Sub(truncateDate(a)).Hours() / 24)
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
