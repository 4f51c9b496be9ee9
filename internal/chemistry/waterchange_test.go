package chemistry

import (
	"errors"
	"math"
	"testing"
)

func TestDilutionAfter(t *testing.T) {
	tests := []struct {
		name        string
		current     float64
		replacement float64
		f           float64
		want        float64
		wantErr     bool
	}{
		{name: "NoChange", current: 40, replacement: 0, f: 0, want: 40},
		{name: "FullChange", current: 40, replacement: 0, f: 1, want: 0},
		{name: "HalfChange", current: 40, replacement: 0, f: 0.5, want: 20},
		{name: "ReplacementHigher", current: 400, replacement: 450, f: 0.2, want: 410},
		{name: "TenPercent", current: 25, replacement: 5, f: 0.1, want: 23},
		{name: "NegativeFraction", current: 40, replacement: 0, f: -0.1, wantErr: true},
		{name: "FractionOverOne", current: 40, replacement: 0, f: 1.5, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DilutionAfter(tt.current, tt.replacement, tt.f)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %g", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %g, want %g", got, tt.want)
			}
		})
	}
}

func TestFractionForTarget(t *testing.T) {
	tests := []struct {
		name        string
		current     float64
		target      float64
		replacement float64
		want        float64
		wantErr     bool
	}{
		{name: "HalveNitrate", current: 40, target: 20, replacement: 0, want: 0.5},
		{name: "QuarterReduction", current: 40, target: 30, replacement: 0, want: 0.25},
		{name: "RaiseTowardReplacement", current: 400, target: 425, replacement: 450, want: 0.5},
		{name: "TargetEqualsCurrent", current: 40, target: 40, replacement: 0, want: 0},
		{name: "TargetEqualsReplacement", current: 40, target: 0, replacement: 0, want: 1},
		{name: "TargetBelowReplacement", current: 40, target: -5, replacement: 0, wantErr: true},
		{name: "TargetAboveCurrentAndReplacement", current: 40, target: 60, replacement: 0, wantErr: true},
		{name: "CurrentEqualsReplacement", current: 10, target: 5, replacement: 10, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FractionForTarget(tt.current, tt.target, tt.replacement)
			if tt.wantErr {
				if !errors.Is(err, ErrUnreachable) {
					t.Fatalf("expected ErrUnreachable, got f=%g err=%v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %g, want %g", got, tt.want)
			}
		})
	}
}

func TestAfterRepeatedChanges(t *testing.T) {
	// Three 30% changes on nitrate 40 with clean replacement water:
	// 40 * 0.7^3 = 13.72
	got, err := AfterRepeatedChanges(40, 0, 0.3, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-13.72) > 1e-9 {
		t.Errorf("got %g, want 13.72", got)
	}

	// Zero changes leaves the value untouched.
	got, err = AfterRepeatedChanges(40, 0, 0.3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 40 {
		t.Errorf("got %g, want 40", got)
	}

	// Convergence: many changes approach the replacement value.
	got, err = AfterRepeatedChanges(40, 5, 0.25, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-5) > 0.01 {
		t.Errorf("expected convergence toward 5, got %g", got)
	}

	if _, err := AfterRepeatedChanges(40, 0, 0.3, -1); err == nil {
		t.Error("expected error for negative change count")
	}
	if _, err := AfterRepeatedChanges(40, 0, 1.2, 1); !errors.Is(err, ErrInvalidFraction) {
		t.Errorf("expected ErrInvalidFraction, got %v", err)
	}
}

func TestChangesToReachTarget(t *testing.T) {
	// Nitrate 40 -> 10 with 30% changes: 40*0.7^n <= 10+tol means n=4.
	n, err := ChangesToReachTarget(40, 10, 0, 0.3, 0.5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("got %d changes, want 4", n)
	}

	// Already at target.
	n, err = ChangesToReachTarget(10, 10, 0, 0.3, 0.0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("got %d changes, want 0", n)
	}

	// Target past the replacement value never converges.
	if _, err := ChangesToReachTarget(40, -1, 0, 0.3, 0.1, 20); !errors.Is(err, ErrUnreachable) {
		t.Errorf("expected ErrUnreachable, got %v", err)
	}
}
