package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStockMetricsCountsMovements(t *testing.T) {
	reg := prometheus.NewRegistry()
	stock := NewStockMetrics(reg)
	stock.IncMovement("reserve", "APPLIED")
	stock.IncMovement("reserve", "APPLIED")
	stock.IncMovement("reserve", "INSUFFICIENT_STOCK")
	stock.IncInconsistentReservation()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	mf := findMetricFamily(mfs, "catalog_stock_movements_total")
	if mf == nil {
		t.Fatal("movements metric not found")
	}
	var applied, insufficient float64
	for _, metric := range mf.GetMetric() {
		if !matchesLabel(metric.GetLabel(), "kind", "reserve") {
			continue
		}
		switch {
		case matchesLabel(metric.GetLabel(), "outcome", "APPLIED"):
			applied = metric.GetCounter().GetValue()
		case matchesLabel(metric.GetLabel(), "outcome", "INSUFFICIENT_STOCK"):
			insufficient = metric.GetCounter().GetValue()
		}
	}
	if applied != 2 || insufficient != 1 {
		t.Fatalf("unexpected counts applied=%f insufficient=%f", applied, insufficient)
	}

	if got := singleCounter(t, mfs, "catalog_stock_inconsistent_reservations_total"); got != 1 {
		t.Fatalf("expected 1 inconsistent reservation, got %f", got)
	}
}

func TestVariantMetricsCountsResolutions(t *testing.T) {
	reg := prometheus.NewRegistry()
	variants := NewVariantMetrics(reg)
	variants.IncResolution(ResolutionCreated)
	variants.IncResolution(ResolutionExisting)
	variants.IncResolution(ResolutionExisting)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "catalog_variant_resolutions_total", "result", ResolutionExisting); err != nil || got != 2 {
		t.Fatalf("expected existing=2, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "catalog_variant_resolutions_total", "result", ResolutionCreated); err != nil || got != 1 {
		t.Fatalf("expected created=1, got %f (%v)", got, err)
	}
}

func TestDomainMetricsNilSafe(t *testing.T) {
	var stock *StockMetrics
	stock.IncMovement("receive", "APPLIED")
	stock.IncInconsistentReservation()
	var variants *VariantMetrics
	variants.IncResolution(ResolutionCreated)
	NewStockMetrics(nil).IncMovement("x", "y")
}

func singleCounter(t *testing.T, mfs []*dto.MetricFamily, name string) float64 {
	t.Helper()
	mf := findMetricFamily(mfs, name)
	if mf == nil || len(mf.GetMetric()) != 1 {
		t.Fatalf("metric %q not found", name)
	}
	return mf.GetMetric()[0].GetCounter().GetValue()
}
