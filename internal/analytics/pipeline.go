package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"opsight/internal/domain"
)

// Pipeline runs the five analyzers over one snapshot and assembles their
// reports. The five have no data dependency on one another and run
// concurrently over the shared read-only indexes; each writes a private
// accumulator merged only after all finish.
type Pipeline struct {
	params Params
	logger *slog.Logger
}

// NewPipeline validates the thresholds and returns a ready pipeline.
func NewPipeline(params Params, logger *slog.Logger) (*Pipeline, error) {
	if !params.IsValid() {
		return nil, fmt.Errorf("invalid analysis parameters: %+v", params)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{params: params, logger: logger}, nil
}

// Run builds the shared indexes, executes the analyzers in parallel and
// assembles the report. A cancelled context aborts the whole run and the
// partial accumulators are discarded; any other per-analyzer fault degrades
// only its own section, leaving a diagnostic note on the report.
func (p *Pipeline) Run(ctx context.Context, snap *domain.Snapshot) (*Report, error) {
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	logger.InfoContext(ctx, "starting analytics run",
		"orders", len(snap.Orders),
		"order_items", len(snap.OrderItems),
		"customers", len(snap.Customers),
		"products", len(snap.Products),
		"sellers", len(snap.Sellers),
	)

	idx := BuildIndexes(snap)
	if n := idx.Discards.Total(); n > 0 {
		logger.WarnContext(ctx, "discarded rows during indexing",
			"unresolved_items", idx.Discards.UnresolvedItems,
			"invalid_items", idx.Discards.InvalidItems,
			"orders_without_customer", idx.Discards.OrdersWithoutCustomer,
		)
	}

	report := &Report{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Notes:       make(map[string]string),
		Durations:   make(map[string]time.Duration),
	}

	var (
		inventory      []InventoryRow
		productTrends  []ProductTrendRow
		categoryTrends []CategoryTrendRow
		clusters       GeoClusterReport
		geoSkipped     int
		sellerRisk     []SellerRiskRow
		coPurchase     CoPurchaseReport

		durations [6]time.Duration
		faults    [6]error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(section(gctx, &durations[0], &faults[0], func() error {
		var err error
		inventory, err = p.OptimizeInventory(gctx, idx)
		return err
	}))
	g.Go(section(gctx, &durations[1], &faults[1], func() error {
		productTrends = p.AnalyzeProductTrends(idx)
		return nil
	}))
	g.Go(section(gctx, &durations[2], &faults[2], func() error {
		categoryTrends = p.AnalyzeCategoryTrends(idx)
		return nil
	}))
	g.Go(section(gctx, &durations[3], &faults[3], func() error {
		clusters, geoSkipped = p.ClusterDemand(idx)
		return nil
	}))
	g.Go(section(gctx, &durations[4], &faults[4], func() error {
		sellerRisk = p.ScoreSellerRisk(idx)
		return nil
	}))
	g.Go(section(gctx, &durations[5], &faults[5], func() error {
		var err error
		coPurchase, err = p.AnalyzeCoPurchase(gctx, idx)
		return err
	}))

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analytics run aborted: %w", err)
	}

	report.Inventory = inventory
	report.ProductTrends = productTrends
	report.CategoryTrends = categoryTrends
	report.GeoClusters = clusters
	report.SellerRisk = sellerRisk
	report.CoPurchase = coPurchase
	report.Discards = idx.Discards
	report.Discards.ItemsWithoutGeo = geoSkipped

	sectionNames := []string{
		SectionInventory, SectionProductTrends, SectionCategoryTrends,
		SectionGeoClusters, SectionSellerRisk, SectionCoPurchase,
	}
	for i, name := range sectionNames {
		report.Durations[name] = durations[i]
		if faults[i] != nil {
			report.Notes[name] = fmt.Sprintf("analyzer failed, section omitted: %v", faults[i])
			logger.ErrorContext(ctx, "analyzer failed", "section", name, "error", faults[i])
		}
	}
	p.annotateEmptySections(report)

	logger.InfoContext(ctx, "analytics run completed",
		"duration", time.Since(start),
		"inventory_rows", len(report.Inventory),
		"product_trend_rows", len(report.ProductTrends),
		"category_trend_rows", len(report.CategoryTrends),
		"volume_clusters", len(report.GeoClusters.TopByVolume),
		"seller_risk_rows", len(report.SellerRisk),
		"seller_pair_rows", len(report.CoPurchase.SellerPairs),
		"category_pair_rows", len(report.CoPurchase.CategoryPairs),
		"discarded_rows", report.Discards.Total(),
	)
	return report, nil
}

// section wraps one analyzer goroutine. Context errors propagate and abort
// the run; any other fault, including a panic, is captured so the remaining
// sections still complete.
func section(ctx context.Context, duration *time.Duration, fault *error, fn func() error) func() error {
	return func() (err error) {
		start := time.Now()
		defer func() {
			*duration = time.Since(start)
			if r := recover(); r != nil {
				*fault = fmt.Errorf("panic: %v", r)
				err = nil
			}
		}()
		if runErr := fn(); runErr != nil {
			if ctx.Err() != nil {
				return runErr
			}
			*fault = runErr
		}
		return nil
	}
}

// annotateEmptySections records a diagnostic note for every section that
// produced no rows, so an empty table is distinguishable from a missing one.
func (p *Pipeline) annotateEmptySections(report *Report) {
	note := func(name, msg string) {
		if _, exists := report.Notes[name]; !exists {
			report.Notes[name] = msg
		}
	}
	if len(report.Inventory) == 0 {
		note(SectionInventory, fmt.Sprintf("no product exceeded %d delivered items with a positive price and a non-zero demand span", p.params.MinOrderCountForEOQ))
	}
	if len(report.ProductTrends) == 0 {
		note(SectionProductTrends, "no resolvable order items; nothing to trend")
	}
	if len(report.CategoryTrends) == 0 {
		note(SectionCategoryTrends, "no resolvable order items; nothing to trend")
	}
	if len(report.GeoClusters.TopByVolume) == 0 {
		note(SectionGeoClusters, "no item row resolved to a geolocated customer")
	}
	if len(report.SellerRisk) == 0 {
		note(SectionSellerRisk, fmt.Sprintf("no reviewed shipment was %.0f or more days late", p.params.MinDelayDays))
	}
	if len(report.CoPurchase.SellerPairs) == 0 && len(report.CoPurchase.CategoryPairs) == 0 {
		note(SectionCoPurchase, fmt.Sprintf("no cross-seller pair reached %d co-purchases", p.params.MinCoPurchaseCount))
	}
}
