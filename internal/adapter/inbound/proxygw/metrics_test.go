package proxygw

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRequestsTotalIncrementsWithLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, nil)

	m.RequestsTotal.WithLabelValues("GET", "200").Inc()
	m.RequestsTotal.WithLabelValues("GET", "200").Inc()

	var metric dto.Metric
	if err := m.RequestsTotal.WithLabelValues("GET", "200").Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("count = %f, want 2", metric.Counter.GetValue())
	}
}

func TestForbiddenTotalVisibleInGather(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, nil)
	m.ForbiddenTotal.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var found bool
	for _, mf := range families {
		if mf.GetName() == "fbgate_forbidden_total" {
			found = true
			if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 1 {
				t.Errorf("forbidden_total = %f, want 1", got)
			}
		}
	}
	if !found {
		t.Fatal("fbgate_forbidden_total not found in gathered metrics")
	}
}

func TestNewMetricsDefaultsToPrivateRegistryWhenNilPassed(t *testing.T) {
	// Two independent Gateways with no explicit registry must not panic on
	// duplicate registration.
	m1 := NewMetrics(nil, nil)
	m2 := NewMetrics(nil, nil)
	m1.RequestsTotal.WithLabelValues("GET", "200").Inc()
	m2.RequestsTotal.WithLabelValues("GET", "200").Inc()
}

func TestForbidSetSizeReflectsCallback(t *testing.T) {
	reg := prometheus.NewRegistry()
	size := 3
	m := NewMetrics(reg, func() float64 { return float64(size) })

	var metric dto.Metric
	if err := m.ForbidSetSize.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := metric.Gauge.GetValue(); got != 3 {
		t.Errorf("forbid_set_size = %f, want 3", got)
	}

	size = 5
	metric = dto.Metric{}
	if err := m.ForbidSetSize.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := metric.Gauge.GetValue(); got != 5 {
		t.Errorf("forbid_set_size = %f, want 5 after callback changes", got)
	}
}
