package billing

import (
	"math"
	"testing"
)

func TestComputeMonthDerivations(t *testing.T) {
	rates := RateTable{
		SharedVolumePrice:        0.10,
		ComplementaryVolumePrice: 0.25,
		VATRatePercent:           21,
	}
	entry := ComputeMonth(MonthlyVolumes{SharedVolume: 100, ComplementaryVolume: 50}, rates)

	if entry.CostShared != 10.00 {
		t.Fatalf("cost shared: got %v want 10.00", entry.CostShared)
	}
	if entry.CostComplementary != 12.50 {
		t.Fatalf("cost complementary: got %v want 12.50", entry.CostComplementary)
	}
	if entry.TotalCosts != 22.50 {
		t.Fatalf("total costs: got %v want 22.50", entry.TotalCosts)
	}
	if entry.TotalRemunerations != 0 {
		t.Fatalf("total remunerations: got %v want 0", entry.TotalRemunerations)
	}
	if entry.MonthlyBalance != -22.50 {
		t.Fatalf("monthly balance: got %v want -22.50", entry.MonthlyBalance)
	}
}

func TestComputeMonthDeterminism(t *testing.T) {
	volumes := MonthlyVolumes{SharedVolume: 123.456, ComplementaryVolume: 0.789, SharedInjection: 42.1, ComplementaryInjection: 7.7}
	rates := RateTable{SharedVolumePrice: 0.2031, ComplementaryVolumePrice: 0.3517, SharedInjectionPrice: 0.0981, ComplementaryInjectionPrice: 0.0412, VATRatePercent: 6}

	first := ComputeMonth(volumes, rates)
	for i := 0; i < 100; i++ {
		if got := ComputeMonth(volumes, rates); got != first {
			t.Fatalf("run %d differs: got %+v want %+v", i, got, first)
		}
	}
}

func TestComputeMonthAdditivity(t *testing.T) {
	cases := []MonthlyVolumes{
		{},
		{SharedVolume: 1000.5, ComplementaryVolume: 250.25, SharedInjection: 300, ComplementaryInjection: 12.5},
		{SharedVolume: -15, ComplementaryInjection: -3.2},
		{SharedInjection: 0.0001},
	}
	rates := DefaultRates
	for _, volumes := range cases {
		entry := ComputeMonth(volumes, rates)
		if entry.TotalCosts != entry.CostShared+entry.CostComplementary {
			t.Fatalf("total costs additivity broken for %+v", volumes)
		}
		if entry.TotalRemunerations != entry.RemunerationSharedInjection+entry.RemunerationComplementaryInjection {
			t.Fatalf("total remunerations additivity broken for %+v", volumes)
		}
		if entry.MonthlyBalance != entry.TotalRemunerations-entry.TotalCosts {
			t.Fatalf("balance additivity broken for %+v", volumes)
		}
	}
}

func TestComputeMonthNegativePassthrough(t *testing.T) {
	// Negative injection corrections are not clamped.
	rates := RateTable{SharedInjectionPrice: 0.10}
	entry := ComputeMonth(MonthlyVolumes{SharedInjection: -50}, rates)
	if math.Abs(entry.RemunerationSharedInjection-(-5)) > 1e-12 {
		t.Fatalf("negative injection: got %v want -5", entry.RemunerationSharedInjection)
	}
	if entry.MonthlyBalance >= 0 {
		t.Fatalf("expected negative balance, got %v", entry.MonthlyBalance)
	}
}
