package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetrics(reg)
	metrics.ObserveOperation("add_product", "committed", 250*time.Millisecond)
	metrics.ObserveOperation("add_product", "out_of_stock", 10*time.Millisecond)
	metrics.IncCatalogRequest("stock", "ok")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cart_operations_total", "outcome", "committed"); err != nil {
		t.Fatalf("fetch committed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected committed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_operations_total", "outcome", "out_of_stock"); err != nil {
		t.Fatalf("fetch out_of_stock: %v", err)
	} else if got != 1 {
		t.Fatalf("expected out_of_stock=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "catalog_requests_total", "resource", "stock"); err != nil {
		t.Fatalf("fetch catalog: %v", err)
	} else if got != 1 {
		t.Fatalf("expected catalog stock=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "cart_operation_duration_seconds", "operation", "add_product"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0.25 {
		t.Fatalf("expected duration sum > 0.25, got %f", got)
	}
}

func TestNilCartMetricsIsSafe(t *testing.T) {
	var m *CartMetrics
	m.ObserveOperation("add_product", "committed", time.Second)
	m.IncCatalogRequest("stock", "ok")

	NewCartMetrics(nil).ObserveOperation("", "", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
