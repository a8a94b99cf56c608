package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsight/internal/domain"
)

// trendSnapshot builds one single-item order per (product, date) entry.
type trendEntry struct {
	productID string
	category  string
	date      string
}

func trendSnapshot(t *testing.T, entries []trendEntry) *domain.Snapshot {
	t.Helper()
	snap := &domain.Snapshot{Sellers: []domain.Seller{{ID: "S1"}}}
	seenProducts := map[string]bool{}
	for i, e := range entries {
		if !seenProducts[e.productID] {
			seenProducts[e.productID] = true
			snap.Products = append(snap.Products, domain.Product{ID: e.productID, Category: e.category})
		}
		orderID := fmt.Sprintf("o%d", i)
		customerID := fmt.Sprintf("c%d", i)
		snap.Customers = append(snap.Customers, domain.Customer{ID: customerID})
		snap.Orders = append(snap.Orders, domain.Order{
			ID:          orderID,
			CustomerID:  customerID,
			Status:      "shipped",
			PurchasedAt: ts(t, e.date),
		})
		snap.OrderItems = append(snap.OrderItems, item(orderID, 1, e.productID, "S1", 10, 1))
	}
	return snap
}

func TestAnalyzeProductTrendsMonthlySplit(t *testing.T) {
	snap := trendSnapshot(t, []trendEntry{
		{"P1", "tools", "2023-01-05"},
		{"P1", "tools", "2023-01-20"},
		{"P1", "tools", "2023-01-28"},
		{"P1", "tools", "2023-03-02"},
	})
	p := newTestPipeline(t, DefaultParams())

	rows := p.AnalyzeProductTrends(BuildIndexes(snap))
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "P1", row.ProductID)
	assert.Equal(t, 2023, row.Year)
	assert.Equal(t, 4, row.TotalYearlyUnits)
	require.True(t, row.MonthlyPct[0].Valid)
	assert.InDelta(t, 75.0, row.MonthlyPct[0].Float64, 0.001)
	require.True(t, row.MonthlyPct[2].Valid)
	assert.InDelta(t, 25.0, row.MonthlyPct[2].Float64, 0.001)

	sum := 0.0
	for _, pct := range row.MonthlyPct {
		require.True(t, pct.Valid)
		sum += pct.Float64
	}
	assert.InDelta(t, 100.0, sum, 0.1)
}

func TestAnalyzeProductTrendsMonthlySumWithinTolerance(t *testing.T) {
	// Seven items over three months: each share repeats in decimals, so the
	// rounded percentages only sum to 100 within tolerance.
	snap := trendSnapshot(t, []trendEntry{
		{"P1", "tools", "2022-01-10"},
		{"P1", "tools", "2022-02-10"},
		{"P1", "tools", "2022-02-11"},
		{"P1", "tools", "2022-05-01"},
		{"P1", "tools", "2022-05-02"},
		{"P1", "tools", "2022-05-03"},
		{"P1", "tools", "2022-05-04"},
	})
	p := newTestPipeline(t, DefaultParams())

	rows := p.AnalyzeProductTrends(BuildIndexes(snap))
	require.Len(t, rows, 1)

	sum := 0.0
	for _, pct := range rows[0].MonthlyPct {
		sum += pct.Float64
	}
	assert.InDelta(t, 100.0, sum, 0.1)
}

func TestAnalyzeProductTrendsSorting(t *testing.T) {
	snap := trendSnapshot(t, []trendEntry{
		{"P1", "tools", "2022-04-01"},
		{"P2", "toys", "2023-04-01"},
		{"P2", "toys", "2023-05-01"},
		{"P3", "toys", "2023-06-01"},
	})
	p := newTestPipeline(t, DefaultParams())

	rows := p.AnalyzeProductTrends(BuildIndexes(snap))
	require.Len(t, rows, 3)
	// Year descending, then yearly units descending.
	assert.Equal(t, []string{"P2", "P3", "P1"}, []string{rows[0].ProductID, rows[1].ProductID, rows[2].ProductID})
}

func TestAnalyzeCategoryTrendsYoYGrowth(t *testing.T) {
	entries := []trendEntry{
		{"P1", "tools", "2022-01-01"},
		{"P1", "tools", "2022-02-01"},
		{"P1", "tools", "2022-03-01"},
		{"P1", "tools", "2022-04-01"},
	}
	for i := 0; i < 6; i++ {
		entries = append(entries, trendEntry{"P1", "tools", fmt.Sprintf("2023-0%d-01", i+1)})
	}
	snap := trendSnapshot(t, entries)
	p := newTestPipeline(t, DefaultParams())

	rows := p.AnalyzeCategoryTrends(BuildIndexes(snap))
	require.Len(t, rows, 2)

	// Sorted by category then year descending: 2023 first.
	latest, first := rows[0], rows[1]
	assert.Equal(t, 2023, latest.Year)
	require.True(t, latest.YoYGrowthPct.Valid)
	assert.InDelta(t, 50.0, latest.YoYGrowthPct.Float64, 0.001) // 4 -> 6 units

	assert.Equal(t, 2022, first.Year)
	assert.False(t, first.YoYGrowthPct.Valid, "first year has no preceding year")
}

func TestAnalyzeCategoryTrendsYoYSkipsGapYears(t *testing.T) {
	// The preceding entry is positional, not year-1: 2020 then 2023 still
	// compare against each other.
	snap := trendSnapshot(t, []trendEntry{
		{"P1", "tools", "2020-06-01"},
		{"P1", "tools", "2020-07-01"},
		{"P1", "tools", "2023-06-01"},
	})
	p := newTestPipeline(t, DefaultParams())

	rows := p.AnalyzeCategoryTrends(BuildIndexes(snap))
	require.Len(t, rows, 2)
	require.True(t, rows[0].YoYGrowthPct.Valid)
	assert.InDelta(t, -50.0, rows[0].YoYGrowthPct.Float64, 0.001) // 2 -> 1 units
}

func TestAnalyzeCategoryTrendsSortedByCategoryThenYear(t *testing.T) {
	snap := trendSnapshot(t, []trendEntry{
		{"P2", "toys", "2023-01-01"},
		{"P1", "tools", "2022-01-01"},
		{"P1", "tools", "2023-02-01"},
	})
	p := newTestPipeline(t, DefaultParams())

	rows := p.AnalyzeCategoryTrends(BuildIndexes(snap))
	require.Len(t, rows, 3)
	assert.Equal(t, "tools", rows[0].Category)
	assert.Equal(t, 2023, rows[0].Year)
	assert.Equal(t, "tools", rows[1].Category)
	assert.Equal(t, 2022, rows[1].Year)
	assert.Equal(t, "toys", rows[2].Category)
}
