package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	// Package-level metrics survive between tests; reset the mutable ones.
	sweepActiveTest.Reset()
	reg := prometheus.NewRegistry()
	c := NewCollectorWithRegistry(CollectorConfig{
		Version:      "test",
		Input:        "input.mp4",
		PlannedTests: 3,
	}, reg)
	return c, reg
}

func gatherValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		m := mf.GetMetric()[0]
		switch mf.GetType() {
		case dto.MetricType_COUNTER:
			return m.GetCounter().GetValue()
		case dto.MetricType_GAUGE:
			return m.GetGauge().GetValue()
		case dto.MetricType_HISTOGRAM:
			return float64(m.GetHistogram().GetSampleCount())
		}
	}
	t.Fatalf("metric %q not found", name)
	return 0
}

func TestCollector_PlannedTests(t *testing.T) {
	_, reg := newTestCollector(t)
	if got := gatherValue(t, reg, "qp_sweep_tests_planned"); got != 3 {
		t.Errorf("tests_planned = %v, want 3", got)
	}
}

func TestCollector_SetPlannedAfterConstruction(t *testing.T) {
	// The batch size is only known after the test array parses, so the
	// driver publishes it through SetPlanned rather than the constructor.
	c, reg := newTestCollector(t)
	c.SetPlanned(7)
	if got := gatherValue(t, reg, "qp_sweep_tests_planned"); got != 7 {
		t.Errorf("tests_planned = %v, want 7", got)
	}
}

func TestCollector_CompletedTrial(t *testing.T) {
	c, reg := newTestCollector(t)

	before := gatherValue(t, reg, "qp_sweep_tests_completed_total")
	c.TestStarted("qp35 x265 1080p SW", "SW")
	c.TestCompleted(5*time.Second, 1024)

	if got := gatherValue(t, reg, "qp_sweep_tests_completed_total"); got != before+1 {
		t.Errorf("tests_completed_total = %v, want %v", got, before+1)
	}
}

func TestCollector_FailedTrialClearsActive(t *testing.T) {
	c, reg := newTestCollector(t)

	before := gatherValue(t, reg, "qp_sweep_tests_failed_total")
	c.TestStarted("crf23 x264 original HW", "HW")
	c.TestFailed()

	if got := gatherValue(t, reg, "qp_sweep_tests_failed_total"); got != before+1 {
		t.Errorf("tests_failed_total = %v, want %v", got, before+1)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "qp_sweep_active_test" && len(mf.GetMetric()) != 0 {
			t.Error("active_test should be cleared after failure")
		}
	}
}

func TestCollector_RecordSpeedIgnoresWarmup(t *testing.T) {
	c, reg := newTestCollector(t)

	c.RecordSpeed(1.5)
	c.RecordSpeed(0) // N/A sample must not overwrite
	if got := gatherValue(t, reg, "qp_sweep_encode_speed"); got != 1.5 {
		t.Errorf("encode_speed = %v, want 1.5", got)
	}
}
