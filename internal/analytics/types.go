// Package analytics computes the five operational reports from an immutable
// order snapshot: inventory reorder parameters, demand trends, geospatial
// demand clusters, seller delivery-risk scores, and cross-seller co-purchase
// margin loss. The package performs no I/O; collaborators load the snapshot
// and persist the assembled report.
package analytics

import (
	"time"
)

// Named constants shared by the analyzers.
const (
	// DaysPerYear annualizes per-day demand rates.
	DaysPerYear = 365.0

	// DefaultServiceLevelZ is the z-score for a 95% service level, used to
	// size safety stock against lead-time variability.
	DefaultServiceLevelZ = 1.65

	// ReviewScoreChurnMax is the highest review score still counted as a
	// churn signal for a first-time buyer.
	ReviewScoreChurnMax = 2
)

// Risk flags emitted by the seller risk scorer.
const (
	RiskFlagHigh = "HIGH RISK"
	RiskFlagLow  = "LOW RISK"
)

// Section names used for report notes, durations and exports.
const (
	SectionInventory      = "inventory"
	SectionProductTrends  = "product_trends"
	SectionCategoryTrends = "category_trends"
	SectionGeoClusters    = "geo_clusters"
	SectionSellerRisk     = "seller_risk"
	SectionCoPurchase     = "co_purchase"
)

// Params carries every analyzer threshold. Collaborators build it from
// configuration; DefaultParams gives the documented defaults.
type Params struct {
	MinOrderCountForEOQ int
	HoldingCostFraction float64
	ServiceLevelZ       float64

	MinDelayDays    float64
	ChurnRiskCutoff float64

	ClusterRoundingDecimals int
	ClusterTopNVolume       int
	ClusterTopNCost         int

	MinCoPurchaseCount int
}

// DefaultParams returns the documented default thresholds.
func DefaultParams() Params {
	return Params{
		MinOrderCountForEOQ:     5,
		HoldingCostFraction:     0.20,
		ServiceLevelZ:           DefaultServiceLevelZ,
		MinDelayDays:            5,
		ChurnRiskCutoff:         0.30,
		ClusterRoundingDecimals: 1,
		ClusterTopNVolume:       5,
		ClusterTopNCost:         3,
		MinCoPurchaseCount:      10,
	}
}

// IsValid checks the parameter ranges the analyzers rely on.
func (p Params) IsValid() bool {
	return p.MinOrderCountForEOQ >= 1 &&
		p.HoldingCostFraction > 0 &&
		p.ServiceLevelZ > 0 &&
		p.MinDelayDays >= 0 &&
		p.ChurnRiskCutoff >= 0 && p.ChurnRiskCutoff <= 1 &&
		p.ClusterRoundingDecimals >= 0 &&
		p.ClusterTopNVolume >= 1 &&
		p.ClusterTopNCost >= 1 &&
		p.MinCoPurchaseCount >= 1
}

// Float is an optional float64. A computation with a zero divisor yields an
// invalid Float instead of an error or a NaN; exporters render it as an
// empty cell.
type Float struct {
	Float64 float64
	Valid   bool
}

// FloatFrom wraps a defined value.
func FloatFrom(v float64) Float {
	return Float{Float64: v, Valid: true}
}

// InventoryRow is one product's reorder parameters.
// AnnualDemand carries two decimals; EOQ, SafetyStock and ReorderPoint are
// rounded half-up to whole units.
type InventoryRow struct {
	ProductID    string
	AnnualDemand float64
	EOQ          float64
	SafetyStock  float64
	ReorderPoint float64
}

// ProductTrendRow is the monthly demand distribution of one product in one
// calendar year. MonthlyPct[0] is January.
type ProductTrendRow struct {
	ProductID        string
	Year             int
	MonthlyPct       [12]Float
	TotalYearlyUnits int
}

// CategoryTrendRow is the monthly demand distribution of one category in one
// calendar year, with year-over-year growth against the category's
// immediately preceding year.
type CategoryTrendRow struct {
	Category         string
	Year             int
	MonthlyPct       [12]Float
	TotalYearlyUnits int
	YoYGrowthPct     Float
}

// ClusterRow is one coarse geographic demand bucket. Latitude and Longitude
// are the bucket key coordinates. TotalOrders counts item rows, not distinct
// orders.
type ClusterRow struct {
	Latitude          float64
	Longitude         float64
	TotalOrders       int
	TotalShippingCost float64
}

// GeoClusterReport holds the two cluster rankings.
type GeoClusterReport struct {
	TopByVolume []ClusterRow
	TopByCost   []ClusterRow
}

// SellerRiskRow is one seller's delivery-delay churn score.
type SellerRiskRow struct {
	SellerID         string
	DelayedOrders    int
	ChurnedOrders    int
	ChurnProbability float64
	RiskFlag         string
}

// PairRow is one aggregated co-purchase pair. A and B are seller ids in the
// seller grouping and category names in the category grouping, ordered by
// the product-id tie-break of the underlying pairs.
type PairRow struct {
	A               string
	B               string
	CoPurchaseCount int
	TotalLostMargin float64
	AvgLostMargin   float64
}

// CoPurchaseReport holds both co-purchase groupings.
type CoPurchaseReport struct {
	SellerPairs   []PairRow
	CategoryPairs []PairRow
}

// Report is the assembled output of one pipeline run.
type Report struct {
	RunID       string
	GeneratedAt time.Time

	Inventory      []InventoryRow
	ProductTrends  []ProductTrendRow
	CategoryTrends []CategoryTrendRow
	GeoClusters    GeoClusterReport
	SellerRisk     []SellerRiskRow
	CoPurchase     CoPurchaseReport

	// Notes carries one diagnostic line per empty or degraded section, keyed
	// by section name.
	Notes map[string]string

	// Durations records wall time per section, keyed by section name.
	Durations map[string]time.Duration

	// Discards tallies rows dropped during indexing and analysis.
	Discards DiscardTally
}
