package maturity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAgeScore(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		setup time.Time
		want  float64
	}{
		{"no setup date", time.Time{}, 0},
		{"brand new", now, 0},
		{"six months in", now.AddDate(0, -6, 0), 15},
		{"one year caps out", now.AddDate(-1, 0, 0), 30},
		{"five years stays capped", now.AddDate(-5, 0, 0), 30},
		{"setup in the future", now.AddDate(0, 1, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AgeScore(tt.setup, now), 0.5)
		})
	}
}

func TestStabilityScore(t *testing.T) {
	tests := []struct {
		name   string
		series []Series
		want   float64
	}{
		{"no data", nil, 0},
		{
			"too few readings",
			[]Series{{ParameterType: "alkalinity", Values: []float64{8.0, 8.1}}},
			0,
		},
		{
			"rock steady",
			[]Series{{ParameterType: "alkalinity", Values: []float64{8.0, 8.0, 8.0, 8.0}}},
			40,
		},
		{
			"wild swings",
			[]Series{{ParameterType: "nitrate", Values: []float64{1, 50, 2, 40}}},
			0,
		},
		{
			"mixed series average",
			[]Series{
				{ParameterType: "alkalinity", Values: []float64{8.0, 8.0, 8.0}},
				{ParameterType: "nitrate", Values: []float64{1, 50, 2, 40}},
			},
			20,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, StabilityScore(tt.series), 0.1)
		})
	}
}

func TestLivestockScore(t *testing.T) {
	assert.Zero(t, LivestockScore(0))
	assert.Equal(t, 3.0, LivestockScore(1))
	assert.Equal(t, 15.0, LivestockScore(5))
	assert.Equal(t, 30.0, LivestockScore(10))
	assert.Equal(t, 30.0, LivestockScore(100))
}

func TestLevelBoundaries(t *testing.T) {
	tests := []struct {
		total float64
		want  string
	}{
		{0, LevelNew},
		{19.9, LevelNew},
		{20, LevelGrowing},
		{40, LevelEstablished},
		{60, LevelThriving},
		{80, LevelMature},
		{100, LevelMature},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.total), "total %v", tt.total)
	}
}

func TestComputeMatureTank(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := []Series{
		{ParameterType: "alkalinity", Values: []float64{8.5, 8.5, 8.6, 8.5}},
		{ParameterType: "salinity", Values: []float64{35, 35, 35, 35}},
	}
	s := Compute(now.AddDate(-2, 0, 0), now, series, 12)
	assert.Equal(t, 30.0, s.AgeScore)
	assert.Equal(t, 40.0, s.StabilityScore)
	assert.Equal(t, 30.0, s.LivestockScore)
	assert.Equal(t, 100.0, s.Total)
	assert.Equal(t, LevelMature, s.Level)
}
