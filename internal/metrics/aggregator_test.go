package metrics

import (
	"testing"

	"crowdsim/internal/geom"
)

func TestStepTracksPeakDensity(t *testing.T) {
	agg := NewAggregator(10, 10, 1, 2, 4)
	positions := []geom.Vec2{{X: 1.1, Y: 1.1}, {X: 1.2, Y: 1.2}, {X: 1.3, Y: 1.3}}
	agg.Step(0.05, positions)
	if agg.PeakDensity() != 3 {
		t.Fatalf("expected peak density 3 persons/m^2, got %v", agg.PeakDensity())
	}
}

func TestStepAccumulatesDwellAboveThresholds(t *testing.T) {
	agg := NewAggregator(10, 10, 1, 2, 4)
	crowded := []geom.Vec2{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}
	agg.Step(0.1, crowded)
	if agg.TimeAboveWarning() != 0.1 {
		t.Fatalf("expected 0.1s above warning, got %v", agg.TimeAboveWarning())
	}
	if agg.TimeAboveDanger() != 0.1 {
		t.Fatalf("expected 0.1s above danger, got %v", agg.TimeAboveDanger())
	}

	empty := []geom.Vec2{}
	agg.Step(0.1, empty)
	if agg.TimeAboveWarning() != 0.1 {
		t.Fatalf("expected dwell accumulator to stop advancing once density drops, got %v", agg.TimeAboveWarning())
	}
}

func TestP95EgressEmptyIsZero(t *testing.T) {
	agg := NewAggregator(10, 10, 1, 2, 4)
	if agg.P95Egress() != 0 {
		t.Fatalf("expected 0 p95 egress with no recorded exits")
	}
}

func TestP95EgressOrdersBeforeQuantile(t *testing.T) {
	agg := NewAggregator(10, 10, 1, 2, 4)
	for _, v := range []float64{50, 10, 90, 30, 70, 20, 80, 40, 60, 100} {
		agg.RecordEgress(v)
	}
	p95 := agg.P95Egress()
	if p95 < 90 || p95 > 100 {
		t.Fatalf("expected p95 near the top of the distribution, got %v", p95)
	}
}

func TestMaxQueueLengthIsRunningMax(t *testing.T) {
	agg := NewAggregator(10, 10, 1, 2, 4)
	agg.RecordQueueLength("bar", 3)
	agg.RecordQueueLength("bar", 7)
	agg.RecordQueueLength("bar", 2)
	if agg.MaxQueueLength("bar") != 7 {
		t.Fatalf("expected running max queue length 7, got %d", agg.MaxQueueLength("bar"))
	}
}
