package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsight/internal/analytics"
)

func TestObserveReport(t *testing.T) {
	r := NewRegistry()

	report := &analytics.Report{
		Inventory:  []analytics.InventoryRow{{ProductID: "P1"}, {ProductID: "P2"}},
		SellerRisk: []analytics.SellerRiskRow{{SellerID: "S1"}},
		Notes:      map[string]string{analytics.SectionCoPurchase: "no cross-seller pair reached 10 co-purchases"},
		Durations:  map[string]time.Duration{analytics.SectionInventory: 2 * time.Second},
		Discards: analytics.DiscardTally{
			UnresolvedItems: 3,
			ItemsWithoutGeo: 1,
		},
	}
	r.ObserveReport(report)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.RunsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.RowsDiscarded.WithLabelValues("unresolved_items")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RowsDiscarded.WithLabelValues("items_without_geo")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.RowsDiscarded.WithLabelValues("invalid_items")))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.SectionSeconds.WithLabelValues(analytics.SectionInventory)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.SectionRows.WithLabelValues(analytics.SectionInventory)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SectionRows.WithLabelValues(analytics.SectionSellerRisk)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SectionDegraded.WithLabelValues(analytics.SectionCoPurchase)))

	// Counters accumulate across runs.
	r.ObserveReport(report)
	assert.Equal(t, 2.0, testutil.ToFloat64(r.RunsTotal))
	assert.Equal(t, 6.0, testutil.ToFloat64(r.RowsDiscarded.WithLabelValues("unresolved_items")))
}

func TestRegistryGathers(t *testing.T) {
	r := NewRegistry()
	r.ObserveReport(&analytics.Report{})

	families, err := r.reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "opsight_runs_total")
	assert.Contains(t, names, "opsight_rows_discarded_total")
	assert.Contains(t, names, "opsight_section_rows")
}
