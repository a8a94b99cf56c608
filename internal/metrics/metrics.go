// Package metrics exposes run instrumentation through a private prometheus
// registry: discard tallies, per-section durations and row counts. The
// pipeline has no network listener, so the registry is gathered and logged
// at the end of a run.
package metrics

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"opsight/internal/analytics"
)

// Registry owns the run metrics.
type Registry struct {
	reg *prometheus.Registry

	RunsTotal       prometheus.Counter
	RowsDiscarded   *prometheus.CounterVec
	SectionSeconds  *prometheus.GaugeVec
	SectionRows     *prometheus.GaugeVec
	SectionDegraded *prometheus.GaugeVec
}

// NewRegistry builds and registers the run metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	runs := prometheus.NewCounter(prometheus.CounterOpts{Name: "opsight_runs_total"})
	discarded := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "opsight_rows_discarded_total"}, []string{"cause"})
	seconds := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "opsight_section_duration_seconds"}, []string{"section"})
	rows := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "opsight_section_rows"}, []string{"section"})
	degraded := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "opsight_section_degraded"}, []string{"section"})

	reg.MustRegister(runs, discarded, seconds, rows, degraded)
	return &Registry{
		reg:             reg,
		RunsTotal:       runs,
		RowsDiscarded:   discarded,
		SectionSeconds:  seconds,
		SectionRows:     rows,
		SectionDegraded: degraded,
	}
}

// ObserveReport records one completed run.
func (r *Registry) ObserveReport(report *analytics.Report) {
	r.RunsTotal.Inc()

	r.RowsDiscarded.WithLabelValues("unresolved_items").Add(float64(report.Discards.UnresolvedItems))
	r.RowsDiscarded.WithLabelValues("invalid_items").Add(float64(report.Discards.InvalidItems))
	r.RowsDiscarded.WithLabelValues("orders_without_customer").Add(float64(report.Discards.OrdersWithoutCustomer))
	r.RowsDiscarded.WithLabelValues("items_without_geo").Add(float64(report.Discards.ItemsWithoutGeo))

	for section, d := range report.Durations {
		r.SectionSeconds.WithLabelValues(section).Set(d.Seconds())
	}
	for section, rows := range map[string]int{
		analytics.SectionInventory:      len(report.Inventory),
		analytics.SectionProductTrends:  len(report.ProductTrends),
		analytics.SectionCategoryTrends: len(report.CategoryTrends),
		analytics.SectionGeoClusters:    len(report.GeoClusters.TopByVolume),
		analytics.SectionSellerRisk:     len(report.SellerRisk),
		analytics.SectionCoPurchase:     len(report.CoPurchase.SellerPairs) + len(report.CoPurchase.CategoryPairs),
	} {
		r.SectionRows.WithLabelValues(section).Set(float64(rows))
	}
	for section := range report.Notes {
		r.SectionDegraded.WithLabelValues(section).Set(1)
	}
}

// LogSummary gathers the registry and logs every sample, so batch runs
// leave their instrumentation in the structured log.
func (r *Registry) LogSummary(logger *slog.Logger) {
	families, err := r.reg.Gather()
	if err != nil {
		logger.Warn("gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			default:
				continue
			}
			attrs := []any{"value", value}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			logger.Info(fmt.Sprintf("metric %s", mf.GetName()), attrs...)
		}
	}
}
