package simconfig

import "testing"

func TestNormalizeFillsZeroValueDefaults(t *testing.T) {
	n := Config{}.Normalize()

	if n.Seed == "" {
		t.Fatalf("expected a default seed")
	}
	if n.ArrivalMode != ArrivalLinear {
		t.Fatalf("expected an unknown arrival mode to default to linear, got %v", n.ArrivalMode)
	}
	if n.SpeedMin <= 0 || n.SpeedMax < n.SpeedMin {
		t.Fatalf("expected a sane speed band, got [%v, %v]", n.SpeedMin, n.SpeedMax)
	}
	if n.SpeedMean < n.SpeedMin || n.SpeedMean > n.SpeedMax {
		t.Fatalf("expected mean inside the band, got %v", n.SpeedMean)
	}
	if n.DangerDensity <= n.WarningDensity {
		t.Fatalf("expected danger above warning, got %v <= %v", n.DangerDensity, n.WarningDensity)
	}
	if n.PanicMultiplier <= 0 || n.HeatmapCellSize <= 0 {
		t.Fatalf("expected positive panic multiplier and cell size")
	}
}

func TestNormalizeClampsNegativePopulation(t *testing.T) {
	n := Config{N: -10}.Normalize()
	if n.N != 0 {
		t.Fatalf("expected a negative N clamped to zero, got %d", n.N)
	}
}

func TestNormalizePreservesValidValues(t *testing.T) {
	cfg := DefaultConfig()
	n := cfg.Normalize()
	if n != cfg {
		t.Fatalf("expected the default config to pass normalization unchanged:\n%+v\n%+v", cfg, n)
	}
}

func TestNormalizeOrdersSweepBounds(t *testing.T) {
	n := Config{SweepMinN: 100, SweepMaxN: 10}.Normalize()
	if n.SweepMaxN < n.SweepMinN {
		t.Fatalf("expected sweep max raised to min, got [%d, %d]", n.SweepMinN, n.SweepMaxN)
	}
	if n.SweepStep <= 0 {
		t.Fatalf("expected a positive sweep step, got %d", n.SweepStep)
	}
}
