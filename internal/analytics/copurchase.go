package analytics

import (
	"context"
	"math"
	"sort"

	"opsight/internal/domain"
)

// pairKey identifies an aggregated co-purchase pair. For seller pairs the
// labels follow the product-id tie-break of the underlying item pair, not a
// canonical seller order: the same two sellers can appear under either label
// depending on which product sorted first.
type pairKey struct {
	a string
	b string
}

type pairAccum struct {
	count int
	total float64
}

// AnalyzeCoPurchase generates every unordered item pair within each order
// where the products differ (canonically a.ProductID < b.ProductID) and the
// sellers differ, and aggregates the lost shipping margin per seller pair
// and per category pair. Pair generation is quadratic per order and is never
// run across orders; the context is checked between order groups so a caller
// can abort cheaply.
func (p *Pipeline) AnalyzeCoPurchase(ctx context.Context, idx *Indexes) (CoPurchaseReport, error) {
	sellerPairs := make(map[pairKey]*pairAccum)
	categoryPairs := make(map[pairKey]*pairAccum)

	for _, items := range idx.ItemsByOrder {
		select {
		case <-ctx.Done():
			return CoPurchaseReport{}, ctx.Err()
		default:
		}
		if len(items) < 2 {
			continue
		}

		ordered := make([]domain.OrderItem, len(items))
		copy(ordered, items)
		sort.Slice(ordered, func(i, j int) bool {
			if ordered[i].ProductID != ordered[j].ProductID {
				return ordered[i].ProductID < ordered[j].ProductID
			}
			return ordered[i].Seq < ordered[j].Seq
		})

		for i := 0; i < len(ordered); i++ {
			for j := i + 1; j < len(ordered); j++ {
				a, b := ordered[i], ordered[j]
				// Strict product ordering: identical products never pair.
				if a.ProductID == b.ProductID {
					continue
				}
				if a.SellerID == b.SellerID {
					continue
				}

				// The consolidated shipment would pay only the larger
				// freight; the smaller one is the lost margin.
				lost := a.Freight + b.Freight - math.Max(a.Freight, b.Freight)
				addPair(sellerPairs, pairKey{a: a.SellerID, b: b.SellerID}, lost)

				catA := idx.Products[a.ProductID].Category
				catB := idx.Products[b.ProductID].Category
				if catA != "" && catB != "" && catA != catB {
					addPair(categoryPairs, pairKey{a: catA, b: catB}, lost)
				}
			}
		}
	}

	report := CoPurchaseReport{
		SellerPairs:   emitPairs(sellerPairs, p.params.MinCoPurchaseCount),
		CategoryPairs: emitPairs(categoryPairs, p.params.MinCoPurchaseCount),
	}

	// Seller pairs rank by money left on the table, category pairs by how
	// often the split happens.
	sort.Slice(report.SellerPairs, func(i, j int) bool {
		return lessPairRows(report.SellerPairs[i], report.SellerPairs[j],
			func(r PairRow) float64 { return r.TotalLostMargin },
			func(r PairRow) float64 { return float64(r.CoPurchaseCount) })
	})
	sort.Slice(report.CategoryPairs, func(i, j int) bool {
		return lessPairRows(report.CategoryPairs[i], report.CategoryPairs[j],
			func(r PairRow) float64 { return float64(r.CoPurchaseCount) },
			func(r PairRow) float64 { return r.TotalLostMargin })
	})
	return report, nil
}

func addPair(pairs map[pairKey]*pairAccum, k pairKey, lost float64) {
	a := pairs[k]
	if a == nil {
		a = &pairAccum{}
		pairs[k] = a
	}
	a.count++
	a.total += lost
}

// emitPairs turns accumulators into rows, dropping pairs below the
// occurrence threshold.
func emitPairs(pairs map[pairKey]*pairAccum, minCount int) []PairRow {
	rows := make([]PairRow, 0, len(pairs))
	for k, a := range pairs {
		if a.count < minCount {
			continue
		}
		rows = append(rows, PairRow{
			A:               k.a,
			B:               k.b,
			CoPurchaseCount: a.count,
			TotalLostMargin: a.total,
			AvgLostMargin:   a.total / float64(a.count),
		})
	}
	return rows
}

// lessPairRows orders by the primary measure descending, then the secondary
// measure descending, then the pair labels ascending for determinism.
func lessPairRows(x, y PairRow, primary, secondary func(PairRow) float64) bool {
	if primary(x) != primary(y) {
		return primary(x) > primary(y)
	}
	if secondary(x) != secondary(y) {
		return secondary(x) > secondary(y)
	}
	if x.A != y.A {
		return x.A < y.A
	}
	return x.B < y.B
}
