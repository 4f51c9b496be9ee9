package chemistry

import (
	"math"
	"testing"
	"time"
)

func at(h int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(h) * time.Hour)
}

func TestPairRatiosSameSession(t *testing.T) {
	// Nitrate and phosphate tested a few minutes apart should pair up.
	no3 := []Reading{{Time: at(0), Value: 10}, {Time: at(24), Value: 8}}
	po4 := []Reading{{Time: at(0).Add(10 * time.Minute), Value: 0.1}, {Time: at(24).Add(-5 * time.Minute), Value: 0.08}}

	points := PairRatios(no3, po4, 24*time.Hour)
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if math.Abs(points[0].Ratio-100) > 1e-9 {
		t.Errorf("first ratio = %g, want 100", points[0].Ratio)
	}
	if math.Abs(points[1].Ratio-100) > 1e-9 {
		t.Errorf("second ratio = %g, want 100", points[1].Ratio)
	}
	if !points[0].Time.Equal(at(0)) {
		t.Errorf("point timestamp should come from the numerator reading")
	}
}

func TestPairRatiosWindowExcludesDistantReadings(t *testing.T) {
	mg := []Reading{{Time: at(0), Value: 1350}}
	ca := []Reading{{Time: at(48), Value: 420}}

	if got := PairRatios(mg, ca, 24*time.Hour); got != nil {
		t.Fatalf("expected no pairs across a 48h gap, got %d", len(got))
	}
	got := PairRatios(mg, ca, 72*time.Hour)
	if len(got) != 1 {
		t.Fatalf("expected one pair with a 72h window, got %d", len(got))
	}
	if math.Abs(got[0].Ratio-1350.0/420) > 1e-9 {
		t.Errorf("ratio = %g, want %g", got[0].Ratio, 1350.0/420)
	}
}

func TestPairRatiosEachDenominatorUsedOnce(t *testing.T) {
	// Two numerator readings near a single denominator reading: only the
	// closer one gets the pair.
	no3 := []Reading{{Time: at(0), Value: 12}, {Time: at(2), Value: 14}}
	po4 := []Reading{{Time: at(1), Value: 0.1}}

	points := PairRatios(no3, po4, 24*time.Hour)
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	// Chronological greedy matching: the first numerator claims it.
	if points[0].Numerator != 12 {
		t.Errorf("numerator = %g, want 12", points[0].Numerator)
	}
}

func TestPairRatiosPicksNearestDenominator(t *testing.T) {
	no3 := []Reading{{Time: at(10), Value: 20}}
	po4 := []Reading{
		{Time: at(0), Value: 0.05},
		{Time: at(11), Value: 0.2},
	}
	points := PairRatios(no3, po4, 24*time.Hour)
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if points[0].Denominator != 0.2 {
		t.Errorf("paired with %g, want the nearer 0.2", points[0].Denominator)
	}
	if points[0].Gap != time.Hour {
		t.Errorf("gap = %s, want 1h", points[0].Gap)
	}
}

func TestPairRatiosSkipsZeroDenominator(t *testing.T) {
	no3 := []Reading{{Time: at(0), Value: 10}}
	po4 := []Reading{{Time: at(0), Value: 0}}
	if got := PairRatios(no3, po4, time.Hour); got != nil {
		t.Fatalf("expected zero denominator to be skipped, got %+v", got)
	}
}

func TestPairRatiosEmptyInputs(t *testing.T) {
	if got := PairRatios(nil, []Reading{{Time: at(0), Value: 1}}, time.Hour); got != nil {
		t.Error("expected nil for empty numerators")
	}
	if got := PairRatios([]Reading{{Time: at(0), Value: 1}}, nil, time.Hour); got != nil {
		t.Error("expected nil for empty denominators")
	}
}

func TestPairRatiosUnsortedInput(t *testing.T) {
	no3 := []Reading{{Time: at(24), Value: 8}, {Time: at(0), Value: 10}}
	po4 := []Reading{{Time: at(24), Value: 0.08}, {Time: at(0), Value: 0.1}}
	points := PairRatios(no3, po4, time.Hour)
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if !points[0].Time.Before(points[1].Time) {
		t.Error("points not in chronological order")
	}
}
