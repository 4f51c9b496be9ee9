package model

import (
	"time"

	"github.com/google/uuid"
)

// Water types.
const (
	WaterFreshwater = "freshwater"
	WaterSaltwater  = "saltwater"
	WaterBrackish   = "brackish"
)

// ValidWaterType reports whether s is a known water type.
func ValidWaterType(s string) bool {
	switch s {
	case WaterFreshwater, WaterSaltwater, WaterBrackish:
		return true
	}
	return false
}

// Tank is one aquarium system. Volumes are optional because not everyone
// measures precisely; total volume is derived from display + sump.
type Tank struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`

	DisplayVolumeLiters *float64 `json:"display_volume_liters,omitempty"`
	SumpVolumeLiters    *float64 `json:"sump_volume_liters,omitempty"`

	WaterType       string  `json:"water_type"`
	AquariumSubtype *string `json:"aquarium_subtype,omitempty"`

	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	SetupDate   *Date   `json:"setup_date,omitempty"`

	ElectricityCostPerDay *float64 `json:"electricity_cost_per_day,omitempty"`

	HasRefugium           bool     `json:"has_refugium"`
	RefugiumVolumeLiters  *float64 `json:"refugium_volume_liters,omitempty"`
	RefugiumType          *string  `json:"refugium_type,omitempty"`
	RefugiumAlgae         *string  `json:"refugium_algae,omitempty"`
	RefugiumLightingHours *float64 `json:"refugium_lighting_hours,omitempty"`
	RefugiumNotes         *string  `json:"refugium_notes,omitempty"`

	IsArchived   bool    `json:"is_archived"`
	ShareEnabled bool    `json:"share_enabled"`
	ShareToken   *string `json:"share_token,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalVolumeLiters is the display plus sump volume.
func (t *Tank) TotalVolumeLiters() float64 {
	var total float64
	if t.DisplayVolumeLiters != nil {
		total += *t.DisplayVolumeLiters
	}
	if t.SumpVolumeLiters != nil {
		total += *t.SumpVolumeLiters
	}
	return total
}

// TankEvent is a milestone in a tank's history (setup, rescape, upgrade,
// crash, milestone).
type TankEvent struct {
	ID          uuid.UUID `json:"id"`
	TankID      uuid.UUID `json:"tank_id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	EventDate   Date      `json:"event_date"`
	EventType   *string   `json:"event_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
