package chemistry

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Compound describes a dosing additive: how many parameter units one gram
// raises per 100 L of water, and the largest correction that is safe to
// apply in a single dose.
type Compound struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Parameter string  `json:"parameter"` // parameter type the compound raises
	Unit      string  `json:"unit"`      // unit of the raised parameter
	// PotencyPer100L is the parameter increase caused by dosing one gram
	// into 100 liters of water.
	PotencyPer100L float64 `json:"potency_per_100l"`
	// MaxSingleCorrection is the largest parameter delta that should be
	// corrected in one dose. Larger corrections are split.
	MaxSingleCorrection float64 `json:"max_single_correction"`
	Notes               string  `json:"notes,omitempty"`
}

// DosePlan is the result of planning a correction with a compound.
type DosePlan struct {
	Compound     string  `json:"compound"`
	Parameter    string  `json:"parameter"`
	Delta        float64 `json:"delta"`          // target - current, clamped at 0
	TotalGrams   float64 `json:"total_grams"`    // grams needed for the full delta
	Doses        int     `json:"doses"`          // number of separate doses
	GramsPerDose float64 `json:"grams_per_dose"` // TotalGrams / Doses
	RaisePerDose float64 `json:"raise_per_dose"` // Delta / Doses
}

var errZeroPotency = errors.New("compound potency must be > 0")

// PlanDose computes the gram dose of a compound required to raise a
// parameter from current to target in a tank of the given volume:
//
//	grams = delta / potency * (liters / 100)
//
// The dose is clamped to zero when no correction is needed. When the delta
// exceeds the compound's max single correction, the plan splits it into
// ceil(delta/max) equal doses.
func PlanDose(c Compound, current, target, tankLiters float64) (DosePlan, error) {
	if c.PotencyPer100L <= 0 {
		return DosePlan{}, fmt.Errorf("compound %q: %w", c.ID, errZeroPotency)
	}
	if tankLiters <= 0 {
		return DosePlan{}, fmt.Errorf("tank volume must be > 0 liters, got %g", tankLiters)
	}
	plan := DosePlan{Compound: c.ID, Parameter: c.Parameter, Doses: 1}
	delta := target - current
	if delta <= 0 {
		return plan, nil
	}
	plan.Delta = delta
	plan.TotalGrams = delta / c.PotencyPer100L * (tankLiters / 100)
	if c.MaxSingleCorrection > 0 && delta > c.MaxSingleCorrection {
		plan.Doses = int(math.Ceil(delta / c.MaxSingleCorrection))
	}
	plan.GramsPerDose = plan.TotalGrams / float64(plan.Doses)
	plan.RaisePerDose = delta / float64(plan.Doses)
	return plan, nil
}

// catalog holds the built-in dosing compounds. Potencies are the commonly
// published values for dry dosing; max corrections follow the usual
// reef-keeping guidance (alkalinity moves slowly, magnesium can jump).
var catalog = map[string]Compound{
	"calcium_chloride": {
		ID: "calcium_chloride", Name: "Calcium Chloride (CaCl2·2H2O)",
		Parameter: "calcium", Unit: "ppm",
		PotencyPer100L: 2.73, MaxSingleCorrection: 20,
		Notes: "Raise calcium no more than 20 ppm per day.",
	},
	"sodium_bicarbonate": {
		ID: "sodium_bicarbonate", Name: "Sodium Bicarbonate (NaHCO3)",
		Parameter: "alkalinity_kh", Unit: "dKH",
		PotencyPer100L: 0.187, MaxSingleCorrection: 1.4,
		Notes: "Baking soda. Slightly lowers pH; safe for daily dosing.",
	},
	"soda_ash": {
		ID: "soda_ash", Name: "Soda Ash (Na2CO3)",
		Parameter: "alkalinity_kh", Unit: "dKH",
		PotencyPer100L: 0.529, MaxSingleCorrection: 1.4,
		Notes: "Raises pH noticeably; dose into high flow.",
	},
	"magnesium_mix": {
		ID: "magnesium_mix", Name: "Magnesium Chloride/Sulfate Mix",
		Parameter: "magnesium", Unit: "ppm",
		PotencyPer100L: 1.18, MaxSingleCorrection: 100,
		Notes: "5:3 MgCl2·6H2O to MgSO4·7H2O keeps ionic balance.",
	},
	"potassium_chloride": {
		ID: "potassium_chloride", Name: "Potassium Chloride (KCl)",
		Parameter: "potassium", Unit: "ppm",
		PotencyPer100L: 5.24, MaxSingleCorrection: 20,
	},
	"potassium_nitrate": {
		ID: "potassium_nitrate", Name: "Potassium Nitrate (KNO3)",
		Parameter: "nitrate", Unit: "ppm",
		PotencyPer100L: 6.13, MaxSingleCorrection: 5,
		Notes: "For nutrient-starved systems only.",
	},
}

// Compounds returns the built-in compound catalog sorted by ID.
func Compounds() []Compound {
	out := make([]Compound, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CompoundByID looks up a built-in compound.
func CompoundByID(id string) (Compound, bool) {
	c, ok := catalog[id]
	return c, ok
}
