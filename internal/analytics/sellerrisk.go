package analytics

import (
	"sort"
)

// ScoreSellerRisk flags sellers whose late carrier handoffs coincide with
// first-time-customer churn. A shipping row exists per (delayed item,
// review) pair: an order with several review rows contributes one row per
// review, preserving the source join's fan-out. Sorted by churn probability
// descending.
func (p *Pipeline) ScoreSellerRisk(idx *Indexes) []SellerRiskRow {
	type riskAccum struct {
		delayed int
		churned int
	}
	accums := make(map[string]*riskAccum)

	for _, it := range idx.Items {
		if it.ShippingLimitAt.IsZero() {
			continue
		}
		order := idx.Orders[it.OrderID]
		if order.ShippedAt.IsZero() {
			continue
		}

		delayDays := order.ShippedAt.Sub(it.ShippingLimitAt).Hours() / 24
		if delayDays < p.params.MinDelayDays {
			continue
		}

		firstTimeBuyer := idx.OrdersPerCustomer[order.CustomerID] == 1
		for _, review := range idx.ReviewsByOrder[order.ID] {
			a := accums[it.SellerID]
			if a == nil {
				a = &riskAccum{}
				accums[it.SellerID] = a
			}
			a.delayed++
			if firstTimeBuyer && review.Score <= ReviewScoreChurnMax {
				a.churned++
			}
		}
	}

	rows := make([]SellerRiskRow, 0, len(accums))
	for sellerID, a := range accums {
		probability := round2(float64(a.churned) / float64(a.delayed))
		flag := RiskFlagLow
		if probability > p.params.ChurnRiskCutoff {
			flag = RiskFlagHigh
		}
		rows = append(rows, SellerRiskRow{
			SellerID:         sellerID,
			DelayedOrders:    a.delayed,
			ChurnedOrders:    a.churned,
			ChurnProbability: probability,
			RiskFlag:         flag,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ChurnProbability != rows[j].ChurnProbability {
			return rows[i].ChurnProbability > rows[j].ChurnProbability
		}
		if rows[i].DelayedOrders != rows[j].DelayedOrders {
			return rows[i].DelayedOrders > rows[j].DelayedOrders
		}
		return rows[i].SellerID < rows[j].SellerID
	})
	return rows
}
