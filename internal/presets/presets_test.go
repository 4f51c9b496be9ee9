package presets

import "testing"

func TestForTankOrderingInvariant(t *testing.T) {
	combos := []struct{ water, subtype string }{
		{"saltwater", ""},
		{"saltwater", "sps_dominant"},
		{"saltwater", "fish_only"},
		{"freshwater", ""},
		{"freshwater", "amazonian"},
		{"freshwater", "tanganyika"},
		{"brackish", ""},
		{"unknown", "whatever"},
	}
	for _, c := range combos {
		ranges := ForTank(c.water, c.subtype)
		if len(ranges) == 0 {
			t.Errorf("%s/%s: no ranges", c.water, c.subtype)
			continue
		}
		for _, r := range ranges {
			if r.Min > r.Ideal || r.Ideal > r.Max {
				t.Errorf("%s/%s %s: min<=ideal<=max violated (%g, %g, %g)",
					c.water, c.subtype, r.ParameterType, r.Min, r.Ideal, r.Max)
			}
		}
		for i := 1; i < len(ranges); i++ {
			if ranges[i-1].ParameterType >= ranges[i].ParameterType {
				t.Errorf("%s/%s: output not sorted at %d", c.water, c.subtype, i)
			}
		}
	}
}

func TestSubtypeOverridesApply(t *testing.T) {
	base := rangesByType(ForTank("saltwater", ""))
	sps := rangesByType(ForTank("saltwater", "sps_dominant"))

	if sps["nitrate"].Max >= base["nitrate"].Max {
		t.Errorf("sps nitrate ceiling (%g) should be tighter than base (%g)",
			sps["nitrate"].Max, base["nitrate"].Max)
	}
	if sps["calcium"].Min != 400 {
		t.Errorf("sps calcium min = %g, want 400", sps["calcium"].Min)
	}
	// Untouched parameters carry through from the base.
	if sps["temperature"] != base["temperature"] {
		t.Error("sps temperature should match base")
	}
}

func TestUnknownSubtypeFallsBack(t *testing.T) {
	base := ForTank("freshwater", "")
	got := ForTank("freshwater", "not_a_subtype")
	if len(got) != len(base) {
		t.Fatalf("fallback set has %d ranges, base has %d", len(got), len(base))
	}
}

func TestStabilityParameters(t *testing.T) {
	if got := StabilityParameters("freshwater"); len(got) != 3 {
		t.Errorf("freshwater: got %v", got)
	}
	if got := StabilityParameters("saltwater"); len(got) != 6 {
		t.Errorf("saltwater: got %v", got)
	}
	// Unknown types use the saltwater set.
	if got := StabilityParameters(""); len(got) != 6 {
		t.Errorf("default: got %v", got)
	}
}

func rangesByType(in []Range) map[string]Range {
	out := make(map[string]Range, len(in))
	for _, r := range in {
		out[r.ParameterType] = r
	}
	return out
}
