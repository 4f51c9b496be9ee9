// Package maturity scores how established a tank is from its age, the
// stability of its key water parameters, and its livestock population.
// The score is out of 100: up to 30 points for age, 40 for stability,
// and 30 for livestock.
package maturity

import (
	"math"
	"time"
)

// Maturity levels, from a fresh setup to a fully mature system.
const (
	LevelNew         = "new"
	LevelGrowing     = "growing"
	LevelEstablished = "established"
	LevelThriving    = "thriving"
	LevelMature      = "mature"
)

// Score is the maturity breakdown for one tank.
type Score struct {
	AgeScore       float64 `json:"age_score"`
	StabilityScore float64 `json:"stability_score"`
	LivestockScore float64 `json:"livestock_score"`
	Total          float64 `json:"total"`
	Level          string  `json:"level"`
	AgeMonths      float64 `json:"age_months"`
}

// Series is one parameter's recent readings for the stability score.
type Series struct {
	ParameterType string
	Values        []float64
}

// Compute builds the full maturity score. setupDate may be zero when the
// user never recorded one; that tank simply earns no age points.
func Compute(setupDate time.Time, now time.Time, series []Series, aliveLivestock int) Score {
	s := Score{
		AgeScore:       AgeScore(setupDate, now),
		StabilityScore: StabilityScore(series),
		LivestockScore: LivestockScore(aliveLivestock),
	}
	s.AgeMonths = ageMonths(setupDate, now)
	s.Total = s.AgeScore + s.StabilityScore + s.LivestockScore
	s.Level = Level(s.Total)
	return s
}

// AgeScore awards up to 30 points, reaching the maximum at one year.
func AgeScore(setupDate, now time.Time) float64 {
	months := ageMonths(setupDate, now)
	if months <= 0 {
		return 0
	}
	score := months * 30 / 12
	if score > 30 {
		score = 30
	}
	return round1(score)
}

// StabilityScore awards up to 40 points based on the coefficient of
// variation of each parameter series, averaged over the series that have
// enough data. Fewer than three readings tells us nothing about
// stability, so such series are skipped.
func StabilityScore(series []Series) float64 {
	var total float64
	n := 0
	for _, sr := range series {
		if len(sr.Values) < 3 {
			continue
		}
		total += cvScore(coefficientOfVariation(sr.Values))
		n++
	}
	if n == 0 {
		return 0
	}
	return round1(total / float64(n))
}

// LivestockScore awards up to 30 points, three per living inhabitant.
func LivestockScore(alive int) float64 {
	if alive <= 0 {
		return 0
	}
	score := float64(alive) * 3
	if score > 30 {
		score = 30
	}
	return score
}

// Level maps a total score to a named maturity level.
func Level(total float64) string {
	switch {
	case total >= 80:
		return LevelMature
	case total >= 60:
		return LevelThriving
	case total >= 40:
		return LevelEstablished
	case total >= 20:
		return LevelGrowing
	default:
		return LevelNew
	}
}

// cvScore converts a coefficient of variation into stability points.
// Tighter control earns more.
func cvScore(cv float64) float64 {
	switch {
	case cv < 0.05:
		return 40
	case cv < 0.10:
		return 30
	case cv < 0.20:
		return 20
	case cv < 0.40:
		return 10
	default:
		return 0
	}
}

func coefficientOfVariation(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return math.Inf(1)
	}
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance) / math.Abs(mean)
}

func ageMonths(setupDate, now time.Time) float64 {
	if setupDate.IsZero() || now.Before(setupDate) {
		return 0
	}
	days := now.Sub(setupDate).Hours() / 24
	return days / 30.44
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
