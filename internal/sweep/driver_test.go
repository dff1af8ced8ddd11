package sweep

import (
	"context"
	"errors"
	"testing"

	"crowdsim/internal/logging"
	"crowdsim/internal/simconfig"
)

func sweepTestLayout() simconfig.VenueLayout {
	return simconfig.VenueLayout{
		Width:  10,
		Height: 10,
		Entrances: []simconfig.Entrance{
			{ID: "e1", X: 0.5, Y: 5, Width: 2},
		},
		Exits: []simconfig.Exit{
			{ID: "x1", X: 9.5, Y: 5, Width: 1.5},
		},
	}
}

func sweepTestConfig() simconfig.Config {
	cfg := simconfig.DefaultConfig()
	cfg.ArrivalMode = simconfig.ArrivalBurst
	cfg.ArrivalDuration = 0.5
	cfg.QueueEnabled = false
	cfg.SweepMinN = 5
	cfg.SweepMaxN = 15
	cfg.SweepStep = 5
	return cfg
}

func TestRunFailsWithoutEgressRoute(t *testing.T) {
	layout := sweepTestLayout()
	layout.Exits = nil
	d := NewDriver(layout, sweepTestConfig(), logging.NopPublisher(), nil)
	_, err := d.Run(context.Background())
	if !errors.Is(err, ErrNoEgressRoute) {
		t.Fatalf("expected ErrNoEgressRoute, got %v", err)
	}
}

func TestRunCoversConfiguredRange(t *testing.T) {
	var seen []int
	d := NewDriver(sweepTestLayout(), sweepTestConfig(), logging.NopPublisher(), func(r Result) {
		seen = append(seen, r.N)
	})
	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected sweep error: %v", err)
	}
	want := []int{5, 10, 15}
	if len(report.Results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(report.Results))
	}
	for i, n := range want {
		if report.Results[i].N != n {
			t.Fatalf("expected result[%d] for N=%d, got N=%d", i, n, report.Results[i].N)
		}
		if seen[i] != n {
			t.Fatalf("expected progress callback for N=%d, got N=%d", n, seen[i])
		}
	}
}

func TestRunIsDeterministicUnderOneSeed(t *testing.T) {
	run := func() []Result {
		cfg := sweepTestConfig()
		cfg.Seed = "sweep-replay"
		d := NewDriver(sweepTestLayout(), cfg, logging.NopPublisher(), nil)
		report, err := d.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected sweep error: %v", err)
		}
		return report.Results
	}

	first := run()
	second := run()
	for i := range first {
		a, b := first[i], second[i]
		if a.N != b.N || a.PeakDensity != b.PeakDensity ||
			a.P95EgressMinutes != b.P95EgressMinutes ||
			a.TimeAboveWarningPct != b.TimeAboveWarningPct ||
			a.Passed != b.Passed {
			t.Fatalf("expected identical sweep tuples at index %d, got %+v vs %+v", i, a, b)
		}
	}
}

func TestRunRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDriver(sweepTestLayout(), sweepTestConfig(), logging.NopPublisher(), nil)
	_, err := d.Run(ctx)
	if err == nil {
		t.Fatalf("expected a cancelled sweep to surface the context error")
	}
}
