package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// gathered returns the summed counter/gauge values and histogram sample
// counts for every family in the registry.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	out := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				out[f.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[f.GetName()] += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[f.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithNamespace("test"))

	m.RecordEvent("click", "invoked")
	m.RecordEvent("click", "invoked")
	m.RecordEvent("click", "dropped")
	m.RecordDispatch("click", time.Millisecond)
	m.RecordInstruction("setStyle")
	m.ViewOpened()
	m.Connected()
	m.Connected()
	m.Disconnected()

	got := gathered(t, reg)
	want := map[string]float64{
		"test_events_total":              3,
		"test_dispatch_duration_seconds": 1,
		"test_instructions_total":        1,
		"test_active_views":              1,
		"test_surface_connections":       1,
	}
	for name, v := range want {
		if got[name] != v {
			t.Errorf("%s = %v, want %v", name, got[name], v)
		}
	}
}

func TestSubsystemAndLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(
		WithRegistry(reg),
		WithSubsystem("bridge"),
		WithConstLabels(prometheus.Labels{"app": "demo"}),
		WithBuckets([]float64{0.1, 1}),
	)
	m.RecordInstruction("fill")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() != "joestar_bridge_instructions_total" {
			continue
		}
		found = true
		labels := f.GetMetric()[0].GetLabel()
		hasApp := false
		for _, l := range labels {
			if l.GetName() == "app" && l.GetValue() == "demo" {
				hasApp = true
			}
		}
		if !hasApp {
			t.Errorf("labels = %v, want app=demo", labels)
		}
	}
	if !found {
		t.Error("joestar_bridge_instructions_total not registered")
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordEvent("click", "invoked")
	m.RecordDispatch("click", time.Second)
	m.RecordInstruction("fill")
	m.ViewOpened()
	m.ViewClosed()
	m.Connected()
	m.Disconnected()
}
