// Package presets holds the default parameter ranges seeded onto a tank
// when it is created or reset. Ranges are keyed by water type and refined
// by aquarium subtype; users can customize them afterwards.
package presets

import "sort"

// Range is one default parameter bound.
type Range struct {
	ParameterType string
	Name          string
	Unit          string
	Min           float64
	Max           float64
	Ideal         float64
}

type rangeSet map[string]Range

func merge(base rangeSet, overrides rangeSet) rangeSet {
	out := make(rangeSet, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

var freshwaterBase = rangeSet{
	"temperature":   {"temperature", "Temperature", "°C", 22, 28, 25},
	"ph":            {"ph", "pH", "", 6.5, 7.5, 7.0},
	"gh":            {"gh", "General Hardness (GH)", "dGH", 4, 12, 8},
	"alkalinity_kh": {"alkalinity_kh", "Alkalinity (KH)", "dKH", 3, 8, 5},
	"ammonia":       {"ammonia", "Ammonia (NH₃/NH₄)", "ppm", 0, 0.02, 0},
	"nitrite":       {"nitrite", "Nitrite (NO₂)", "ppm", 0, 0.02, 0},
	"nitrate":       {"nitrate", "Nitrate (NO₃)", "ppm", 0, 40, 20},
	"phosphate":     {"phosphate", "Phosphate (PO₄)", "ppm", 0, 2.0, 0.5},
}

var saltwaterBase = rangeSet{
	"temperature":   {"temperature", "Temperature", "°C", 24, 27, 25.5},
	"ph":            {"ph", "pH", "", 8.0, 8.4, 8.2},
	"salinity":      {"salinity", "Salinity", "SG", 1.024, 1.027, 1.026},
	"alkalinity_kh": {"alkalinity_kh", "Alkalinity (KH)", "dKH", 7, 11, 8.5},
	"calcium":       {"calcium", "Calcium", "ppm", 380, 450, 420},
	"magnesium":     {"magnesium", "Magnesium", "ppm", 1250, 1450, 1350},
	"ammonia":       {"ammonia", "Ammonia (NH₃/NH₄)", "ppm", 0, 0.02, 0},
	"nitrite":       {"nitrite", "Nitrite (NO₂)", "ppm", 0, 0.02, 0},
	"nitrate":       {"nitrate", "Nitrate (NO₃)", "ppm", 0, 20, 5},
	"phosphate":     {"phosphate", "Phosphate (PO₄)", "ppm", 0, 0.1, 0.03},
}

var brackishBase = rangeSet{
	"temperature":   {"temperature", "Temperature", "°C", 23, 28, 25.5},
	"ph":            {"ph", "pH", "", 7.5, 8.4, 8.0},
	"salinity":      {"salinity", "Salinity", "SG", 1.005, 1.018, 1.010},
	"alkalinity_kh": {"alkalinity_kh", "Alkalinity (KH)", "dKH", 6, 12, 9},
	"ammonia":       {"ammonia", "Ammonia (NH₃/NH₄)", "ppm", 0, 0.02, 0},
	"nitrite":       {"nitrite", "Nitrite (NO₂)", "ppm", 0, 0.02, 0},
	"nitrate":       {"nitrate", "Nitrate (NO₃)", "ppm", 0, 30, 10},
}

var saltwaterSubtypes = map[string]rangeSet{
	"fish_only": merge(saltwaterBase, rangeSet{
		"nitrate":   {"nitrate", "Nitrate (NO₃)", "ppm", 0, 40, 15},
		"phosphate": {"phosphate", "Phosphate (PO₄)", "ppm", 0, 0.5, 0.1},
	}),
	"soft_coral": merge(saltwaterBase, rangeSet{
		"calcium":       {"calcium", "Calcium", "ppm", 350, 420, 400},
		"alkalinity_kh": {"alkalinity_kh", "Alkalinity (KH)", "dKH", 7, 12, 9},
		"nitrate":       {"nitrate", "Nitrate (NO₃)", "ppm", 0, 30, 10},
		"phosphate":     {"phosphate", "Phosphate (PO₄)", "ppm", 0.01, 0.15, 0.05},
	}),
	"lps_dominant": merge(saltwaterBase, rangeSet{
		"calcium":       {"calcium", "Calcium", "ppm", 380, 440, 410},
		"alkalinity_kh": {"alkalinity_kh", "Alkalinity (KH)", "dKH", 7, 11, 9},
		"nitrate":       {"nitrate", "Nitrate (NO₃)", "ppm", 0, 20, 5},
		"phosphate":     {"phosphate", "Phosphate (PO₄)", "ppm", 0.01, 0.1, 0.05},
	}),
	"sps_dominant": merge(saltwaterBase, rangeSet{
		"calcium":       {"calcium", "Calcium", "ppm", 400, 450, 430},
		"magnesium":     {"magnesium", "Magnesium", "ppm", 1280, 1400, 1350},
		"alkalinity_kh": {"alkalinity_kh", "Alkalinity (KH)", "dKH", 7, 10, 8.5},
		"nitrate":       {"nitrate", "Nitrate (NO₃)", "ppm", 0, 10, 3},
		"phosphate":     {"phosphate", "Phosphate (PO₄)", "ppm", 0.01, 0.08, 0.03},
	}),
	"mixed_reef": merge(saltwaterBase, rangeSet{
		"calcium":       {"calcium", "Calcium", "ppm", 390, 450, 420},
		"alkalinity_kh": {"alkalinity_kh", "Alkalinity (KH)", "dKH", 7, 11, 8.5},
		"nitrate":       {"nitrate", "Nitrate (NO₃)", "ppm", 0, 15, 5},
		"phosphate":     {"phosphate", "Phosphate (PO₄)", "ppm", 0.01, 0.1, 0.04},
	}),
}

var freshwaterSubtypes = map[string]rangeSet{
	"community": freshwaterBase,
	"amazonian": merge(freshwaterBase, rangeSet{
		"temperature": {"temperature", "Temperature", "°C", 24, 29, 26.5},
		"ph":          {"ph", "pH", "", 5.5, 7.0, 6.5},
		"gh":          {"gh", "General Hardness (GH)", "dGH", 1, 8, 4},
	}),
	"tanganyika": merge(freshwaterBase, rangeSet{
		"ph": {"ph", "pH", "", 7.8, 9.0, 8.6},
		"gh": {"gh", "General Hardness (GH)", "dGH", 10, 20, 14},
		"alkalinity_kh": {"alkalinity_kh", "Alkalinity (KH)", "dKH", 10, 18, 14},
	}),
	"malawi": merge(freshwaterBase, rangeSet{
		"ph": {"ph", "pH", "", 7.5, 8.6, 8.0},
		"gh": {"gh", "General Hardness (GH)", "dGH", 8, 16, 12},
	}),
	"planted": merge(freshwaterBase, rangeSet{
		"nitrate":   {"nitrate", "Nitrate (NO₃)", "ppm", 5, 30, 15},
		"phosphate": {"phosphate", "Phosphate (PO₄)", "ppm", 0.5, 2.0, 1.0},
	}),
	"shrimp": merge(freshwaterBase, rangeSet{
		"temperature": {"temperature", "Temperature", "°C", 20, 25, 22},
		"ph":          {"ph", "pH", "", 6.0, 7.2, 6.6},
		"gh":          {"gh", "General Hardness (GH)", "dGH", 4, 8, 6},
	}),
}

// ForTank returns the default ranges for a water type and optional
// subtype, sorted by parameter type for stable output. Unknown subtypes
// fall back to the water type's base set; unknown water types default to
// the saltwater base.
func ForTank(waterType, subtype string) []Range {
	var set rangeSet
	switch waterType {
	case "freshwater":
		set = freshwaterBase
		if s, ok := freshwaterSubtypes[subtype]; ok {
			set = s
		}
	case "brackish":
		set = brackishBase
	default:
		set = saltwaterBase
		if s, ok := saltwaterSubtypes[subtype]; ok {
			set = s
		}
	}

	out := make([]Range, 0, len(set))
	for _, r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParameterType < out[j].ParameterType })
	return out
}

// StabilityParameters lists the parameter types whose variance feeds the
// maturity score for a given water type.
func StabilityParameters(waterType string) []string {
	switch waterType {
	case "freshwater":
		return []string{"temperature", "ph", "gh"}
	case "brackish":
		return []string{"temperature", "ph", "salinity"}
	default:
		return []string{"temperature", "alkalinity_kh", "calcium", "magnesium", "nitrate", "phosphate"}
	}
}

// Metadata returns the display name and unit for a parameter type,
// preferring the saltwater defaults and falling back to freshwater ones.
// Unknown types get the type string itself as a name.
func Metadata(parameterType string) (name, unit string) {
	if r, ok := saltwaterBase[parameterType]; ok {
		return r.Name, r.Unit
	}
	if r, ok := freshwaterBase[parameterType]; ok {
		return r.Name, r.Unit
	}
	if parameterType == "potassium" {
		return "Potassium (K)", "ppm"
	}
	return parameterType, ""
}

// KnownParameterTypes is the set of submittable measurement types.
var KnownParameterTypes = map[string]bool{
	"calcium":       true,
	"magnesium":     true,
	"alkalinity_kh": true,
	"nitrate":       true,
	"phosphate":     true,
	"salinity":      true,
	"temperature":   true,
	"ph":            true,
	"gh":            true,
	"ammonia":       true,
	"nitrite":       true,
	"potassium":     true,
}
