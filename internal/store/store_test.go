package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquascope/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *Store, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Username: "tester", HashedPassword: "x"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func newTestTank(t *testing.T, s *Store, userID uuid.UUID) *model.Tank {
	t.Helper()
	subtype := "mixed_reef"
	vol := 200.0
	tank := &model.Tank{
		UserID:              userID,
		Name:                "Reef",
		WaterType:           model.WaterSaltwater,
		AquariumSubtype:     &subtype,
		DisplayVolumeLiters: &vol,
	}
	require.NoError(t, s.CreateTank(context.Background(), tank))
	return tank
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "a@example.com")
	require.NotEqual(t, uuid.Nil, u.ID)

	got, err := s.UserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// Duplicate email conflicts.
	dup := &model.User{Email: "a@example.com", Username: "other", HashedPassword: "y"}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), ErrConflict)

	_, err = s.UserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	got.IsAdmin = true
	require.NoError(t, s.UpdateUser(ctx, got))
	got2, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got2.IsAdmin)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.UserByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTankSeedsRanges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	tank := newTestTank(t, s, u.ID)

	ranges, err := s.ListParameterRanges(ctx, tank.ID)
	require.NoError(t, err)
	require.NotEmpty(t, ranges)

	byType := map[string]model.ParameterRange{}
	for _, r := range ranges {
		assert.LessOrEqual(t, r.MinValue, r.MaxValue)
		byType[r.ParameterType] = r
	}
	// Mixed reef presets include the big four.
	for _, p := range []string{"alkalinity_kh", "calcium", "magnesium", "salinity"} {
		assert.Contains(t, byType, p)
	}
}

func TestTankOwnership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s, "owner@example.com")
	other := newTestUser(t, s, "other@example.com")
	tank := newTestTank(t, s, owner.ID)

	_, err := s.TankForUser(ctx, owner.ID, tank.ID)
	require.NoError(t, err)

	// Someone else's tank is indistinguishable from a missing one.
	_, err = s.TankForUser(ctx, other.ID, tank.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.DeleteTank(ctx, other.ID, tank.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTankCascadeDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	tank := newTestTank(t, s, u.ID)

	note := &model.Note{TankID: tank.ID, UserID: u.ID, Content: "cycling started"}
	require.NoError(t, s.CreateNote(ctx, note))
	require.NoError(t, s.WriteMeasurements(ctx, u.ID, []model.Measurement{
		{TankID: tank.ID, ParameterType: "salinity", Value: 35, MeasuredAt: time.Now()},
	}))

	require.NoError(t, s.DeleteTank(ctx, u.ID, tank.ID))

	notes, err := s.ListNotes(ctx, u.ID, tank.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, notes)

	ms, err := s.LatestMeasurements(ctx, tank.ID)
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestShareToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	tank := newTestTank(t, s, u.ID)

	token := "abcd1234efgh5678"
	tank.ShareEnabled = true
	tank.ShareToken = &token
	require.NoError(t, s.UpdateTank(ctx, tank))

	got, err := s.TankByShareToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, tank.ID, got.ID)

	// Disabling the share hides the token lookup.
	tank.ShareEnabled = false
	require.NoError(t, s.UpdateTank(ctx, tank))
	_, err = s.TankByShareToken(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteReminderAdvancesFromCompletionDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	tank := newTestTank(t, s, u.ID)

	m := &model.MaintenanceReminder{
		TankID:        tank.ID,
		UserID:        u.ID,
		Title:         "Water change",
		ReminderType:  "water_change",
		FrequencyDays: 7,
		NextDue:       model.NewDate(2026, time.March, 1),
		IsActive:      true,
	}
	require.NoError(t, s.CreateReminder(ctx, m))

	// Completed late: next due counts from the completion date, not the
	// old due date.
	completed := model.NewDate(2026, time.March, 5)
	got, err := s.CompleteReminder(ctx, u.ID, m.ID, completed)
	require.NoError(t, err)
	require.NotNil(t, got.LastCompleted)
	assert.Equal(t, "2026-03-05", got.LastCompleted.String())
	assert.Equal(t, "2026-03-12", got.NextDue.String())
}

func TestOverdueReminders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	tank := newTestTank(t, s, u.ID)

	due := &model.MaintenanceReminder{
		TankID: tank.ID, UserID: u.ID, Title: "Filter clean",
		ReminderType: "filter", FrequencyDays: 14,
		NextDue: model.NewDate(2026, time.January, 10), IsActive: true,
	}
	future := &model.MaintenanceReminder{
		TankID: tank.ID, UserID: u.ID, Title: "Pump service",
		ReminderType: "equipment", FrequencyDays: 90,
		NextDue: model.NewDate(2026, time.June, 1), IsActive: true,
	}
	require.NoError(t, s.CreateReminder(ctx, due))
	require.NoError(t, s.CreateReminder(ctx, future))

	overdue, err := s.OverdueReminders(ctx, u.ID, model.NewDate(2026, time.February, 1))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Filter clean", overdue[0].Title)
}

func TestMarkFedDeductsConsumable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	tank := newTestTank(t, s, u.ID)

	qty := 100.0
	food := &model.Consumable{
		TankID: tank.ID, UserID: u.ID, Name: "Pellets",
		ConsumableType: "food", QuantityOnHand: &qty,
	}
	require.NoError(t, s.CreateConsumable(ctx, food))

	dose := 5.0
	sched := &model.FeedingSchedule{
		TankID: tank.ID, UserID: u.ID, ConsumableID: &food.ID,
		FoodName: "Pellets", Quantity: &dose, FrequencyHours: 24, IsActive: true,
	}
	require.NoError(t, s.CreateFeedingSchedule(ctx, sched))

	log, err := s.MarkFed(ctx, u.ID, sched.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Pellets", log.FoodName)

	got, err := s.ConsumableForUser(ctx, u.ID, food.ID)
	require.NoError(t, err)
	require.NotNil(t, got.QuantityOnHand)
	assert.InDelta(t, 95.0, *got.QuantityOnHand, 1e-9)

	after, err := s.FeedingScheduleForUser(ctx, u.ID, sched.ID)
	require.NoError(t, err)
	require.NotNil(t, after.LastFed)
	require.NotNil(t, after.NextDue)
	assert.Equal(t, 24*time.Hour, after.NextDue.Sub(*after.LastFed))

	logs, err := s.ListFeedingLogs(ctx, u.ID, tank.ID, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestDeriveStockStatus(t *testing.T) {
	tests := []struct {
		name      string
		remaining float64
		dose      float64
		current   string
		want      string
	}{
		{"plenty left", 100, 5, model.ConsumableActive, model.ConsumableActive},
		{"under three doses", 10, 5, model.ConsumableActive, model.ConsumableLowStock},
		{"exactly zero", 0, 5, model.ConsumableActive, model.ConsumableDepleted},
		{"expired stays expired", 100, 5, model.ConsumableExpired, model.ConsumableExpired},
		{"recovers from low stock", 100, 5, model.ConsumableLowStock, model.ConsumableActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveStockStatus(tt.remaining, tt.dose, tt.current))
		})
	}
}

func TestRecordConsumableUsage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	tank := newTestTank(t, s, u.ID)

	qty := 12.0
	c := &model.Consumable{
		TankID: tank.ID, UserID: u.ID, Name: "All For Reef",
		ConsumableType: "additive", QuantityOnHand: &qty,
	}
	require.NoError(t, s.CreateConsumable(ctx, c))

	usage := &model.ConsumableUsage{ConsumableID: c.ID, UserID: u.ID, QuantityUsed: 5}
	after, err := s.RecordConsumableUsage(ctx, usage)
	require.NoError(t, err)
	require.NotNil(t, after.QuantityOnHand)
	assert.InDelta(t, 7.0, *after.QuantityOnHand, 1e-9)
	assert.Equal(t, model.ConsumableLowStock, after.Status)

	usage2 := &model.ConsumableUsage{ConsumableID: c.ID, UserID: u.ID, QuantityUsed: 10}
	after, err = s.RecordConsumableUsage(ctx, usage2)
	require.NoError(t, err)
	assert.Zero(t, *after.QuantityOnHand)
	assert.Equal(t, model.ConsumableDepleted, after.Status)

	history, err := s.ListConsumableUsage(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestMeasurementsWindowAndLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	tank := newTestTank(t, s, u.ID)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ms []model.Measurement
	for i := 0; i < 5; i++ {
		ms = append(ms, model.Measurement{
			TankID:        tank.ID,
			ParameterType: "alkalinity",
			Value:         8.0 + float64(i)*0.1,
			MeasuredAt:    base.AddDate(0, 0, i),
		})
	}
	ms = append(ms, model.Measurement{
		TankID: tank.ID, ParameterType: "calcium", Value: 420, MeasuredAt: base,
	})
	require.NoError(t, s.WriteMeasurements(ctx, u.ID, ms))

	window, err := s.MeasurementsInWindow(ctx, tank.ID, "alkalinity",
		base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, window, 3)
	assert.InDelta(t, 8.1, window[0].Value, 1e-9)

	latest, err := s.LatestMeasurements(ctx, tank.ID)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	byType := map[string]model.Measurement{}
	for _, m := range latest {
		byType[m.ParameterType] = m
	}
	assert.InDelta(t, 8.4, byType["alkalinity"].Value, 1e-9)
	assert.InDelta(t, 420.0, byType["calcium"].Value, 1e-9)

	// Rewriting the same timestamp replaces the point.
	require.NoError(t, s.WriteMeasurements(ctx, u.ID, []model.Measurement{
		{TankID: tank.ID, ParameterType: "calcium", Value: 425, MeasuredAt: base},
	}))
	latest, err = s.LatestMeasurements(ctx, tank.ID)
	require.NoError(t, err)
	for _, m := range latest {
		if m.ParameterType == "calcium" {
			assert.InDelta(t, 425.0, m.Value, 1e-9)
		}
	}

	require.NoError(t, s.DeleteMeasurement(ctx, tank.ID, "calcium", base))
	types, err := s.MeasuredParameterTypes(ctx, tank.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alkalinity"}, types)
}

func TestUpsertParameterRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	tank := newTestTank(t, s, u.ID)

	ideal := 9.0
	pr := &model.ParameterRange{
		TankID:        tank.ID,
		ParameterType: "alkalinity",
		Name:          "Alkalinity",
		Unit:          "dKH",
		MinValue:      8,
		MaxValue:      10,
		IdealValue:    &ideal,
	}
	require.NoError(t, s.UpsertParameterRange(ctx, pr))

	got, err := s.ParameterRangeByType(ctx, tank.ID, "alkalinity")
	require.NoError(t, err)
	assert.InDelta(t, 8.0, got.MinValue, 1e-9)
	require.NotNil(t, got.IdealValue)
	assert.InDelta(t, 9.0, *got.IdealValue, 1e-9)
}

func TestLightingOneActivePerTank(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	tank := newTestTank(t, s, u.ID)

	a := &model.LightingSchedule{TankID: tank.ID, UserID: u.ID, Name: "Summer", IsActive: true}
	b := &model.LightingSchedule{TankID: tank.ID, UserID: u.ID, Name: "Winter"}
	require.NoError(t, s.CreateLightingSchedule(ctx, a))
	require.NoError(t, s.CreateLightingSchedule(ctx, b))

	_, err := s.ActivateLightingSchedule(ctx, u.ID, b.ID)
	require.NoError(t, err)

	schedules, err := s.ListLightingSchedules(ctx, u.ID, tank.ID)
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	active := 0
	for _, l := range schedules {
		if l.IsActive {
			active++
			assert.Equal(t, "Winter", l.Name)
		}
	}
	assert.Equal(t, 1, active)
}

func TestPhotoDisplayFlagExclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	tank := newTestTank(t, s, u.ID)

	p1 := &model.Photo{TankID: tank.ID, UserID: u.ID, Filename: "a.jpg", FilePath: "/x/a.jpg", IsTankDisplay: true}
	p2 := &model.Photo{TankID: tank.ID, UserID: u.ID, Filename: "b.jpg", FilePath: "/x/b.jpg"}
	require.NoError(t, s.CreatePhoto(ctx, p1))
	require.NoError(t, s.CreatePhoto(ctx, p2))

	p2.IsTankDisplay = true
	require.NoError(t, s.UpdatePhoto(ctx, p2))

	photos, err := s.ListPhotos(ctx, u.ID, tank.ID)
	require.NoError(t, err)
	display := 0
	for _, p := range photos {
		if p.IsTankDisplay {
			display++
			assert.Equal(t, "b.jpg", p.Filename)
		}
	}
	assert.Equal(t, 1, display)
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Setting(ctx, "registration_enabled")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetSetting(ctx, "registration_enabled", "true"))
	require.NoError(t, s.SetSetting(ctx, "registration_enabled", "false"))

	v, err := s.Setting(ctx, "registration_enabled")
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	all, err := s.AllSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDashboard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	tank := newTestTank(t, s, u.ID)

	require.NoError(t, s.CreateLivestock(ctx, &model.Livestock{
		TankID: tank.ID, UserID: u.ID, SpeciesName: "Amphiprion ocellaris",
		Type: "fish", Quantity: 2,
	}))
	require.NoError(t, s.CreateReminder(ctx, &model.MaintenanceReminder{
		TankID: tank.ID, UserID: u.ID, Title: "Water change",
		ReminderType: "water_change", FrequencyDays: 7,
		NextDue: model.NewDate(2020, time.January, 1), IsActive: true,
	}))

	cards, err := s.Dashboard(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 2, cards[0].LivestockCount)
	assert.Equal(t, 1, cards[0].OverdueReminders)
}

func TestStatsCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "a@example.com")
	newTestTank(t, s, u.ID)
	newTestTank(t, s, u.ID)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Users)
	assert.Equal(t, 2, stats.Tanks)

	perUser, err := s.UserStatsList(ctx)
	require.NoError(t, err)
	require.Len(t, perUser, 1)
	assert.Equal(t, 2, perUser[0].Tanks)
}
