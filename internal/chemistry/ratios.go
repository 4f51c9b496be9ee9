package chemistry

import (
	"sort"
	"time"
)

// Reading is a single timestamped parameter measurement.
type Reading struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// RatioPoint is one derived ratio: a numerator reading paired with the
// closest denominator reading taken within the pairing window.
type RatioPoint struct {
	Time        time.Time `json:"time"` // timestamp of the numerator reading
	Ratio       float64   `json:"ratio"`
	Numerator   float64   `json:"numerator"`
	Denominator float64   `json:"denominator"`
	// Gap is how far apart the paired readings were taken.
	Gap time.Duration `json:"gap_seconds"`
}

// PairRatios pairs each numerator reading with the nearest-in-time
// denominator reading within the window and returns the ratio series,
// oldest first. Each denominator reading is used at most once, numerators
// are matched greedily in chronological order, and pairs whose denominator
// is zero are skipped rather than emitted as Inf.
//
// This mirrors how nitrate:phosphate and magnesium:calcium trends are
// derived: test kits are rarely read at the exact same instant, so two
// readings taken in the same session (within the window) count as one
// observation of the ratio.
func PairRatios(numerators, denominators []Reading, window time.Duration) []RatioPoint {
	if len(numerators) == 0 || len(denominators) == 0 {
		return nil
	}
	if window < 0 {
		window = -window
	}

	nums := sortedByTime(numerators)
	dens := sortedByTime(denominators)
	used := make([]bool, len(dens))

	var points []RatioPoint
	for _, n := range nums {
		best := -1
		var bestGap time.Duration
		for i, d := range dens {
			if used[i] {
				continue
			}
			gap := n.Time.Sub(d.Time)
			if gap < 0 {
				gap = -gap
			}
			if gap > window {
				continue
			}
			if best == -1 || gap < bestGap {
				best = i
				bestGap = gap
			}
		}
		if best == -1 {
			continue
		}
		used[best] = true
		d := dens[best]
		if d.Value == 0 {
			continue
		}
		points = append(points, RatioPoint{
			Time:        n.Time,
			Ratio:       n.Value / d.Value,
			Numerator:   n.Value,
			Denominator: d.Value,
			Gap:         bestGap,
		})
	}
	return points
}

func sortedByTime(in []Reading) []Reading {
	out := make([]Reading, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
