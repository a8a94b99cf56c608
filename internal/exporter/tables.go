// Package exporter renders an assembled analytics report to CSV files and a
// combined XLSX workbook. It is the presentation collaborator; the core
// never writes anything itself.
package exporter

import (
	"strconv"

	"opsight/internal/analytics"
)

// Table is one report section rendered to strings, shared by the CSV and
// workbook writers.
type Table struct {
	Name     string
	FileName string
	Header   []string
	Rows     [][]string
}

var monthColumns = []string{
	"jan_pct", "feb_pct", "mar_pct", "apr_pct", "may_pct", "jun_pct",
	"jul_pct", "aug_pct", "sep_pct", "oct_pct", "nov_pct", "dec_pct",
}

// Tables renders every report section in a fixed order.
func Tables(report *analytics.Report) []Table {
	return []Table{
		inventoryTable(report.Inventory),
		productTrendTable(report.ProductTrends),
		categoryTrendTable(report.CategoryTrends),
		clusterTable("clusters_by_volume", report.GeoClusters.TopByVolume),
		clusterTable("clusters_by_cost", report.GeoClusters.TopByCost),
		sellerRiskTable(report.SellerRisk),
		pairTable("co_purchase_sellers", "seller_a", "seller_b", report.CoPurchase.SellerPairs),
		pairTable("co_purchase_categories", "category_a", "category_b", report.CoPurchase.CategoryPairs),
	}
}

func inventoryTable(rows []analytics.InventoryRow) Table {
	t := Table{
		Name:     analytics.SectionInventory,
		FileName: "inventory.csv",
		Header:   []string{"product_id", "annual_demand", "eoq", "safety_stock", "reorder_point"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.ProductID,
			formatFloat(r.AnnualDemand, 2),
			formatFloat(r.EOQ, 0),
			formatFloat(r.SafetyStock, 0),
			formatFloat(r.ReorderPoint, 0),
		})
	}
	return t
}

func productTrendTable(rows []analytics.ProductTrendRow) Table {
	t := Table{
		Name:     analytics.SectionProductTrends,
		FileName: "product_trends.csv",
		Header:   append(append([]string{"product_id", "year"}, monthColumns...), "total_yearly_units"),
	}
	for _, r := range rows {
		row := []string{r.ProductID, strconv.Itoa(r.Year)}
		for _, pct := range r.MonthlyPct {
			row = append(row, formatOptional(pct, 2))
		}
		row = append(row, strconv.Itoa(r.TotalYearlyUnits))
		t.Rows = append(t.Rows, row)
	}
	return t
}

func categoryTrendTable(rows []analytics.CategoryTrendRow) Table {
	t := Table{
		Name:     analytics.SectionCategoryTrends,
		FileName: "category_trends.csv",
		Header:   append(append([]string{"category", "year"}, monthColumns...), "total_yearly_units", "yoy_growth_pct"),
	}
	for _, r := range rows {
		row := []string{r.Category, strconv.Itoa(r.Year)}
		for _, pct := range r.MonthlyPct {
			row = append(row, formatOptional(pct, 2))
		}
		row = append(row, strconv.Itoa(r.TotalYearlyUnits), formatOptional(r.YoYGrowthPct, 2))
		t.Rows = append(t.Rows, row)
	}
	return t
}

func clusterTable(name string, rows []analytics.ClusterRow) Table {
	t := Table{
		Name:     name,
		FileName: name + ".csv",
		Header:   []string{"lat", "lng", "total_orders", "total_shipping_cost"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			formatCoordinate(r.Latitude),
			formatCoordinate(r.Longitude),
			strconv.Itoa(r.TotalOrders),
			formatFloat(r.TotalShippingCost, 2),
		})
	}
	return t
}

func sellerRiskTable(rows []analytics.SellerRiskRow) Table {
	t := Table{
		Name:     analytics.SectionSellerRisk,
		FileName: "seller_risk.csv",
		Header:   []string{"seller_id", "delayed_orders", "churned_orders", "churn_probability", "risk_flag"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.SellerID,
			strconv.Itoa(r.DelayedOrders),
			strconv.Itoa(r.ChurnedOrders),
			formatFloat(r.ChurnProbability, 2),
			r.RiskFlag,
		})
	}
	return t
}

func pairTable(name, colA, colB string, rows []analytics.PairRow) Table {
	t := Table{
		Name:     name,
		FileName: name + ".csv",
		Header:   []string{colA, colB, "co_purchase_count", "total_lost_margin", "avg_lost_margin"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.A,
			r.B,
			strconv.Itoa(r.CoPurchaseCount),
			formatFloat(r.TotalLostMargin, 2),
			formatFloat(r.AvgLostMargin, 2),
		})
	}
	return t
}

// formatFloat renders a value with a fixed number of decimals.
func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// formatOptional renders an undefined value as an empty cell.
func formatOptional(v analytics.Float, precision int) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Float64, precision)
}

// formatCoordinate renders a cluster coordinate with its shortest exact
// representation.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
