package chemistry

import (
	"math"
	"testing"
)

func TestPlanDoseBasic(t *testing.T) {
	c := Compound{ID: "test", Parameter: "calcium", PotencyPer100L: 2.0, MaxSingleCorrection: 0}

	// Raise by 10 units in 200 L: 10/2 * 200/100 = 10 g, single dose.
	plan, err := PlanDose(c, 400, 410, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(plan.TotalGrams-10) > 1e-9 {
		t.Errorf("TotalGrams = %g, want 10", plan.TotalGrams)
	}
	if plan.Doses != 1 {
		t.Errorf("Doses = %d, want 1", plan.Doses)
	}
	if math.Abs(plan.GramsPerDose-plan.TotalGrams) > 1e-9 {
		t.Errorf("GramsPerDose = %g, want %g", plan.GramsPerDose, plan.TotalGrams)
	}
}

func TestPlanDoseClampedAtZero(t *testing.T) {
	c := Compound{ID: "test", Parameter: "calcium", PotencyPer100L: 2.0}

	for _, target := range []float64{400, 390} {
		plan, err := PlanDose(c, 400, target, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plan.TotalGrams != 0 || plan.Delta != 0 {
			t.Errorf("target %g: expected zero dose, got %+v", target, plan)
		}
	}
}

func TestPlanDoseSplitting(t *testing.T) {
	c := Compound{ID: "test", Parameter: "calcium", PotencyPer100L: 2.73, MaxSingleCorrection: 20}

	// 50 ppm delta with 20 ppm max per dose -> ceil(50/20) = 3 doses.
	plan, err := PlanDose(c, 380, 430, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Doses != 3 {
		t.Errorf("Doses = %d, want 3", plan.Doses)
	}
	if math.Abs(plan.RaisePerDose-50.0/3) > 1e-9 {
		t.Errorf("RaisePerDose = %g, want %g", plan.RaisePerDose, 50.0/3)
	}
	if math.Abs(plan.GramsPerDose*float64(plan.Doses)-plan.TotalGrams) > 1e-9 {
		t.Error("per-dose grams do not sum to total")
	}

	// Delta exactly at the limit stays a single dose.
	plan, err = PlanDose(c, 400, 420, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Doses != 1 {
		t.Errorf("Doses = %d, want 1 at exactly the limit", plan.Doses)
	}
}

func TestPlanDoseInvalidInputs(t *testing.T) {
	if _, err := PlanDose(Compound{ID: "x"}, 0, 10, 100); err == nil {
		t.Error("expected error for zero potency")
	}
	if _, err := PlanDose(Compound{ID: "x", PotencyPer100L: 1}, 0, 10, 0); err == nil {
		t.Error("expected error for zero tank volume")
	}
}

func TestCompoundCatalog(t *testing.T) {
	cs := Compounds()
	if len(cs) == 0 {
		t.Fatal("empty compound catalog")
	}
	seen := map[string]bool{}
	for _, c := range cs {
		if c.PotencyPer100L <= 0 {
			t.Errorf("%s: non-positive potency", c.ID)
		}
		if seen[c.ID] {
			t.Errorf("%s: duplicate ID", c.ID)
		}
		seen[c.ID] = true
	}
	// Catalog is sorted for stable API output.
	for i := 1; i < len(cs); i++ {
		if cs[i-1].ID >= cs[i].ID {
			t.Fatalf("catalog not sorted: %s before %s", cs[i-1].ID, cs[i].ID)
		}
	}

	if _, ok := CompoundByID("sodium_bicarbonate"); !ok {
		t.Error("sodium_bicarbonate missing from catalog")
	}
	if _, ok := CompoundByID("unobtanium"); ok {
		t.Error("lookup of unknown compound succeeded")
	}
}
