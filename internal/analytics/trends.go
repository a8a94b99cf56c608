package analytics

import (
	"sort"
)

// trendAccum counts one group's items in a single pass: twelve running
// month counters plus the year total, instead of twelve filtered scans.
type trendAccum struct {
	months [12]int
	total  int
}

func (t *trendAccum) add(month int) {
	t.months[month-1]++
	t.total++
}

func (t *trendAccum) monthlyPct() [12]Float {
	var pct [12]Float
	for i, n := range t.months {
		v := safeDiv(100*float64(n), float64(t.total))
		if v.Valid {
			v.Float64 = round2(v.Float64)
		}
		pct[i] = v
	}
	return pct
}

// AnalyzeProductTrends computes each product's monthly demand distribution
// per calendar year, sorted by year descending then yearly units descending.
func (p *Pipeline) AnalyzeProductTrends(idx *Indexes) []ProductTrendRow {
	type key struct {
		productID string
		year      int
	}
	groups := make(map[key]*trendAccum)

	for _, it := range idx.Items {
		purchased := idx.Orders[it.OrderID].PurchasedAt
		k := key{productID: it.ProductID, year: purchased.Year()}
		g := groups[k]
		if g == nil {
			g = &trendAccum{}
			groups[k] = g
		}
		g.add(int(purchased.Month()))
	}

	rows := make([]ProductTrendRow, 0, len(groups))
	for k, g := range groups {
		rows = append(rows, ProductTrendRow{
			ProductID:        k.productID,
			Year:             k.year,
			MonthlyPct:       g.monthlyPct(),
			TotalYearlyUnits: g.total,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year > rows[j].Year
		}
		if rows[i].TotalYearlyUnits != rows[j].TotalYearlyUnits {
			return rows[i].TotalYearlyUnits > rows[j].TotalYearlyUnits
		}
		return rows[i].ProductID < rows[j].ProductID
	})
	return rows
}

// AnalyzeCategoryTrends computes each category's monthly demand distribution
// per calendar year plus year-over-year growth against the category's
// immediately preceding year. Growth is null for a category's first year and
// when the preceding total is zero. Sorted by category, then year descending.
func (p *Pipeline) AnalyzeCategoryTrends(idx *Indexes) []CategoryTrendRow {
	type key struct {
		category string
		year     int
	}
	groups := make(map[key]*trendAccum)

	for _, it := range idx.Items {
		purchased := idx.Orders[it.OrderID].PurchasedAt
		k := key{category: idx.Products[it.ProductID].Category, year: purchased.Year()}
		g := groups[k]
		if g == nil {
			g = &trendAccum{}
			groups[k] = g
		}
		g.add(int(purchased.Month()))
	}

	// Partition years per category and sort ascending so growth compares
	// each entry with the immediately preceding one, independent of arrival
	// order.
	yearsByCategory := make(map[string][]int)
	for k := range groups {
		yearsByCategory[k.category] = append(yearsByCategory[k.category], k.year)
	}

	var rows []CategoryTrendRow
	for category, years := range yearsByCategory {
		sort.Ints(years)
		for i, year := range years {
			g := groups[key{category: category, year: year}]
			row := CategoryTrendRow{
				Category:         category,
				Year:             year,
				MonthlyPct:       g.monthlyPct(),
				TotalYearlyUnits: g.total,
			}
			if i > 0 {
				prev := groups[key{category: category, year: years[i-1]}]
				growth := safeDiv(100*float64(g.total-prev.total), float64(prev.total))
				if growth.Valid {
					growth.Float64 = round2(growth.Float64)
				}
				row.YoYGrowthPct = growth
			}
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Category != rows[j].Category {
			return rows[i].Category < rows[j].Category
		}
		return rows[i].Year > rows[j].Year
	})
	return rows
}
