package finance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquascope/internal/model"
	"aquascope/internal/store"
)

func setup(t *testing.T) (*Service, *store.Store, *model.User, *model.Tank) {
	t.Helper()
	s, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	u := &model.User{Email: "a@example.com", Username: "tester", HashedPassword: "x"}
	require.NoError(t, s.CreateUser(context.Background(), u))

	elec := 1.50
	tank := &model.Tank{UserID: u.ID, Name: "Reef", WaterType: model.WaterSaltwater, ElectricityCostPerDay: &elec}
	require.NoError(t, s.CreateTank(context.Background(), tank))

	return NewService(s), s, u, tank
}

func strPtr(s string) *string { return &s }

func datePtr(y int, m time.Month, d int) *model.Date {
	dd := model.NewDate(y, m, d)
	return &dd
}

func TestSummarize(t *testing.T) {
	svc, s, u, tank := setup(t)
	ctx := context.Background()

	require.NoError(t, s.CreateEquipment(ctx, &model.Equipment{
		TankID: tank.ID, UserID: u.ID, Name: "Skimmer", EquipmentType: "skimmer",
		PurchasePrice: strPtr("$249.99"), PurchaseDate: datePtr(2026, time.January, 10),
	}))
	require.NoError(t, s.CreateConsumable(ctx, &model.Consumable{
		TankID: tank.ID, UserID: u.ID, Name: "Salt", ConsumableType: "salt_mix",
		PurchasePrice: strPtr("79,90"), PurchaseDate: datePtr(2026, time.February, 2),
	}))
	require.NoError(t, s.CreateLivestock(ctx, &model.Livestock{
		TankID: tank.ID, UserID: u.ID, SpeciesName: "Zebrasoma flavescens", Type: "fish",
		PurchasePrice: strPtr("120"), AddedDate: datePtr(2026, time.February, 20),
	}))
	// Unparseable prices are skipped, not treated as zero.
	require.NoError(t, s.CreateEquipment(ctx, &model.Equipment{
		TankID: tank.ID, UserID: u.ID, Name: "Used pump", EquipmentType: "pump",
		PurchasePrice: strPtr("gift"),
	}))

	sum, err := svc.Summarize(ctx, u.ID)
	require.NoError(t, err)
	assert.InDelta(t, 249.99+79.90+120, sum.Total, 1e-9)
	assert.Equal(t, 3, sum.ExpenseCount)
	assert.Equal(t, 1, sum.SkippedEntries)
	assert.InDelta(t, 249.99, sum.ByCategory[CategoryEquipment], 1e-9)
	assert.InDelta(t, 79.90, sum.ByCategory[CategoryConsumables], 1e-9)
	assert.InDelta(t, 120.0, sum.ByCategory[CategoryLivestock], 1e-9)
	assert.InDelta(t, 249.99, sum.ByMonth["2026-01"], 1e-9)
	assert.InDelta(t, 79.90+120, sum.ByMonth["2026-02"], 1e-9)
	assert.InDelta(t, 1.50*30.44, sum.MonthlyElectricity, 1e-9)
}

func TestEvaluateBudget(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cat := CategoryLivestock
	expenses := []Expense{
		{Category: CategoryLivestock, Amount: 80, Date: datePtr(2026, time.March, 3)},
		{Category: CategoryLivestock, Amount: 50, Date: datePtr(2026, time.February, 10)},
		{Category: CategoryEquipment, Amount: 300, Date: datePtr(2026, time.March, 5)},
		{Category: CategoryLivestock, Amount: 40, Date: nil},
	}

	t.Run("monthly with category", func(t *testing.T) {
		b := model.Budget{Name: "Fish fund", Amount: 100, Period: "monthly", Category: &cat, IsActive: true}
		st := EvaluateBudget(b, expenses, now)
		assert.InDelta(t, 80.0, st.Spent, 1e-9)
		assert.InDelta(t, 20.0, st.Remaining, 1e-9)
		assert.False(t, st.OverBudget)
	})

	t.Run("yearly over budget", func(t *testing.T) {
		b := model.Budget{Name: "Everything", Amount: 400, Period: "yearly", IsActive: true}
		st := EvaluateBudget(b, expenses, now)
		assert.InDelta(t, 430.0, st.Spent, 1e-9)
		assert.True(t, st.OverBudget)
		assert.InDelta(t, 107.5, st.PercentUsed, 1e-9)
	})
}

func TestBudgetReportSkipsInactive(t *testing.T) {
	svc, s, u, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBudget(ctx, &model.Budget{
		UserID: u.ID, Name: "Active", Amount: 100, IsActive: true,
	}))
	require.NoError(t, s.CreateBudget(ctx, &model.Budget{
		UserID: u.ID, Name: "Paused", Amount: 100, IsActive: false,
	}))

	report, err := svc.BudgetReport(ctx, u.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "Active", report[0].Budget.Name)
}
