// Package chemistry implements the closed-form water chemistry math used by
// the calculator endpoints: linear dilution for water changes, geometric
// convergence for repeated partial changes, and compound dosing with
// safety-threshold splitting.
//
// All functions are pure. Inputs that would produce a meaningless result
// (negative fractions, unreachable targets, zero potency) return an error
// rather than NaN or Inf.
package chemistry

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnreachable is returned when no water-change fraction in [0,1]
	// can move the current value to the target.
	ErrUnreachable = errors.New("target not reachable by dilution")

	// ErrInvalidFraction is returned for change fractions outside [0,1].
	ErrInvalidFraction = errors.New("water change fraction must be in [0,1]")
)

// DilutionAfter returns the parameter value after replacing fraction f of
// the water with replacement water: after = current*(1-f) + replacement*f.
func DilutionAfter(current, replacement, f float64) (float64, error) {
	if f < 0 || f > 1 || math.IsNaN(f) {
		return 0, ErrInvalidFraction
	}
	return current*(1-f) + replacement*f, nil
}

// FractionForTarget solves the dilution formula for the change fraction
// needed to reach target in a single water change:
//
//	f = (current - target) / (current - replacement)
//
// The solve is only valid when current != replacement and the resulting
// fraction lies in [0,1]; anything else means the target cannot be reached
// by dilution alone and ErrUnreachable is returned.
func FractionForTarget(current, target, replacement float64) (float64, error) {
	denom := current - replacement
	if denom == 0 {
		return 0, fmt.Errorf("current equals replacement (%g): %w", current, ErrUnreachable)
	}
	f := (current - target) / denom
	if f < 0 || f > 1 || math.IsNaN(f) {
		return 0, ErrUnreachable
	}
	return f, nil
}

// AfterRepeatedChanges returns the value after n successive partial water
// changes of fraction f each: after_n = current*(1-f)^n + repl*(1-(1-f)^n).
// The series converges geometrically toward the replacement value.
func AfterRepeatedChanges(current, replacement, f float64, n int) (float64, error) {
	if f < 0 || f > 1 || math.IsNaN(f) {
		return 0, ErrInvalidFraction
	}
	if n < 0 {
		return 0, fmt.Errorf("change count must be >= 0, got %d", n)
	}
	keep := math.Pow(1-f, float64(n))
	return current*keep + replacement*(1-keep), nil
}

// ChangesToReachTarget returns the smallest number of partial changes of
// fraction f needed to bring current within tolerance of target. It caps
// the search at maxChanges because a target on the far side of the
// replacement value never converges.
func ChangesToReachTarget(current, target, replacement, f, tolerance float64, maxChanges int) (int, error) {
	if f <= 0 || f > 1 || math.IsNaN(f) {
		return 0, ErrInvalidFraction
	}
	if tolerance < 0 {
		return 0, fmt.Errorf("tolerance must be >= 0, got %g", tolerance)
	}
	if maxChanges <= 0 {
		maxChanges = 100
	}
	value := current
	for n := 0; n <= maxChanges; n++ {
		if math.Abs(value-target) <= tolerance {
			return n, nil
		}
		value = value*(1-f) + replacement*f
	}
	return 0, fmt.Errorf("not within %g of target after %d changes: %w", tolerance, maxChanges, ErrUnreachable)
}
