package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Note is a free-form tank observation.
type Note struct {
	ID        uuid.UUID `json:"id"`
	TankID    uuid.UUID `json:"tank_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Photo is uploaded image metadata; the file itself lives on disk under
// the uploads directory.
type Photo struct {
	ID            uuid.UUID `json:"id"`
	TankID        uuid.UUID `json:"tank_id"`
	UserID        uuid.UUID `json:"user_id"`
	Filename      string    `json:"filename"`
	FilePath      string    `json:"-"`
	Description   *string   `json:"description,omitempty"`
	TakenAt       time.Time `json:"taken_at"`
	IsTankDisplay bool      `json:"is_tank_display"`
	CreatedAt     time.Time `json:"created_at"`
}

// MaintenanceReminder is a recurring task. Completing it advances next_due
// by frequency_days from the completion date, not from the old due date,
// so schedules self-correct when tasks run early or late.
type MaintenanceReminder struct {
	ID            uuid.UUID `json:"id"`
	TankID        uuid.UUID `json:"tank_id"`
	UserID        uuid.UUID `json:"user_id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	ReminderType  string    `json:"reminder_type"`
	FrequencyDays int       `json:"frequency_days"`
	LastCompleted *Date     `json:"last_completed,omitempty"`
	NextDue       Date      `json:"next_due"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Livestock statuses.
const (
	LivestockAlive   = "alive"
	LivestockDead    = "dead"
	LivestockRemoved = "removed"
)

// Livestock is a fish, coral, or invertebrate in a tank.
type Livestock struct {
	ID            uuid.UUID `json:"id"`
	TankID        uuid.UUID `json:"tank_id"`
	UserID        uuid.UUID `json:"user_id"`
	SpeciesName   string    `json:"species_name"`
	CommonName    *string   `json:"common_name,omitempty"`
	Type          string    `json:"type"` // fish, coral, invertebrate
	Quantity      int       `json:"quantity"`
	Status        string    `json:"status"`
	AddedDate     *Date     `json:"added_date,omitempty"`
	PurchasePrice *string   `json:"purchase_price,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	IsArchived    bool      `json:"is_archived"`
	CreatedAt     time.Time `json:"created_at"`
}

// Equipment is a piece of hardware attached to a tank. Specs stay a
// free-form map because every device family has different fields.
type Equipment struct {
	ID            uuid.UUID         `json:"id"`
	TankID        uuid.UUID         `json:"tank_id"`
	UserID        uuid.UUID         `json:"user_id"`
	Name          string            `json:"name"`
	EquipmentType string            `json:"equipment_type"`
	Manufacturer  *string           `json:"manufacturer,omitempty"`
	Model         *string           `json:"model,omitempty"`
	Specs         map[string]string `json:"specs,omitempty"`
	PurchaseDate  *Date             `json:"purchase_date,omitempty"`
	PurchasePrice *string           `json:"purchase_price,omitempty"`
	PurchaseURL   *string           `json:"purchase_url,omitempty"`
	Condition     *string           `json:"condition,omitempty"`
	Notes         *string           `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Consumable statuses.
const (
	ConsumableActive   = "active"
	ConsumableLowStock = "low_stock"
	ConsumableDepleted = "depleted"
	ConsumableExpired  = "expired"
)

// Consumable is a stocked supply: salt mix, additives, food, filter media,
// test kits, medication.
type Consumable struct {
	ID             uuid.UUID `json:"id"`
	TankID         uuid.UUID `json:"tank_id"`
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	ConsumableType string    `json:"consumable_type"`
	Brand          *string   `json:"brand,omitempty"`
	ProductName    *string   `json:"product_name,omitempty"`
	QuantityOnHand *float64  `json:"quantity_on_hand,omitempty"`
	QuantityUnit   *string   `json:"quantity_unit,omitempty"`
	PurchaseDate   *Date     `json:"purchase_date,omitempty"`
	PurchasePrice  *string   `json:"purchase_price,omitempty"`
	PurchaseURL    *string   `json:"purchase_url,omitempty"`
	ExpirationDate *Date     `json:"expiration_date,omitempty"`
	Status         string    `json:"status"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConsumableUsage is one dosing or feeding draw against a consumable.
type ConsumableUsage struct {
	ID           uuid.UUID `json:"id"`
	ConsumableID uuid.UUID `json:"consumable_id"`
	UserID       uuid.UUID `json:"user_id"`
	UsageDate    Date      `json:"usage_date"`
	QuantityUsed float64   `json:"quantity_used"`
	QuantityUnit *string   `json:"quantity_unit,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// FeedingSchedule is a recurring feeding plan, optionally linked to a
// consumable for stock deduction.
type FeedingSchedule struct {
	ID             uuid.UUID  `json:"id"`
	TankID         uuid.UUID  `json:"tank_id"`
	UserID         uuid.UUID  `json:"user_id"`
	ConsumableID   *uuid.UUID `json:"consumable_id,omitempty"`
	FoodName       string     `json:"food_name"`
	Quantity       *float64   `json:"quantity,omitempty"`
	QuantityUnit   *string    `json:"quantity_unit,omitempty"`
	FrequencyHours int        `json:"frequency_hours"`
	LastFed        *time.Time `json:"last_fed,omitempty"`
	NextDue        *time.Time `json:"next_due,omitempty"`
	IsActive       bool       `json:"is_active"`
	Notes          *string    `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FeedingLog is one feeding event, scheduled or ad hoc.
type FeedingLog struct {
	ID           uuid.UUID  `json:"id"`
	TankID       uuid.UUID  `json:"tank_id"`
	UserID       uuid.UUID  `json:"user_id"`
	ScheduleID   *uuid.UUID `json:"schedule_id,omitempty"`
	FoodName     string     `json:"food_name"`
	Quantity     *float64   `json:"quantity,omitempty"`
	QuantityUnit *string    `json:"quantity_unit,omitempty"`
	FedAt        time.Time  `json:"fed_at"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Budget caps spending globally or per tank, over a month or a year,
// optionally restricted to one expense category.
type Budget struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	TankID    *uuid.UUID `json:"tank_id,omitempty"`
	Name      string     `json:"name"`
	Amount    float64    `json:"amount"`
	Currency  string     `json:"currency"`
	Period    string     `json:"period"` // monthly, yearly
	Category  *string    `json:"category,omitempty"`
	IsActive  bool       `json:"is_active"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ParameterRange is a per-tank bound for one water chemistry parameter.
type ParameterRange struct {
	ID            uuid.UUID `json:"id"`
	TankID        uuid.UUID `json:"tank_id"`
	ParameterType string    `json:"parameter_type"`
	Name          string    `json:"name"`
	Unit          string    `json:"unit"`
	MinValue      float64   `json:"min_value"`
	MaxValue      float64   `json:"max_value"`
	IdealValue    *float64  `json:"ideal_value,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Measurement is one water test reading.
type Measurement struct {
	TankID        uuid.UUID `json:"tank_id"`
	ParameterType string    `json:"parameter_type"`
	Value         float64   `json:"value"`
	MeasuredAt    time.Time `json:"time"`
}

// ICPTest is a lab water analysis. Per-element readings live in a
// symbol-keyed map instead of sixty nullable columns.
type ICPTest struct {
	ID       uuid.UUID `json:"id"`
	TankID   uuid.UUID `json:"tank_id"`
	UserID   uuid.UUID `json:"user_id"`
	TestDate Date      `json:"test_date"`
	LabName  string    `json:"lab_name"`
	TestID   *string   `json:"test_id,omitempty"`
	WaterType string   `json:"water_type"`

	ScoreMajorElements *int `json:"score_major_elements,omitempty"`
	ScoreMinorElements *int `json:"score_minor_elements,omitempty"`
	ScorePollutants    *int `json:"score_pollutants,omitempty"`
	ScoreOverall       *int `json:"score_overall,omitempty"`

	Elements map[string]ElementReading `json:"elements,omitempty"`

	Cost      *string   `json:"cost,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ElementReading is one element's value and the lab's verdict on it.
type ElementReading struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit,omitempty"`
	Status string  `json:"status,omitempty"` // NORMAL, ABOVE_NORMAL, ...
}

// LightingSchedule is a per-tank light program. Channels and points are
// opaque JSON shaped by the frontend's schedule editor.
type LightingSchedule struct {
	ID           uuid.UUID       `json:"id"`
	TankID       uuid.UUID       `json:"tank_id"`
	UserID       uuid.UUID       `json:"user_id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Channels     json.RawMessage `json:"channels"`
	ScheduleData json.RawMessage `json:"schedule_data"`
	IsActive     bool            `json:"is_active"`
	Notes        *string         `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
