package ledger

import (
	"testing"
	"time"

	"tripsplit-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvance(t *testing.T) {
	cases := []struct {
		name     string
		from     time.Time
		freq     Frequency
		interval int
		want     time.Time
	}{
		{"daily", date(2025, time.March, 10), Daily, 1, date(2025, time.March, 11)},
		{"daily interval", date(2025, time.March, 10), Daily, 5, date(2025, time.March, 15)},
		{"weekly", date(2025, time.March, 10), Weekly, 2, date(2025, time.March, 24)},
		{"monthly plain", date(2025, time.April, 15), Monthly, 1, date(2025, time.May, 15)},
		{"monthly clamps to short month", date(2025, time.January, 31), Monthly, 1, date(2025, time.February, 28)},
		{"monthly clamps to leap february", date(2024, time.January, 31), Monthly, 1, date(2024, time.February, 29)},
		{"monthly carries the year", date(2024, time.November, 30), Monthly, 3, date(2025, time.February, 28)},
		{"monthly december rollover", date(2025, time.December, 5), Monthly, 1, date(2026, time.January, 5)},
		{"yearly", date(2025, time.June, 10), Yearly, 2, date(2027, time.June, 10)},
		{"yearly clamps feb 29", date(2024, time.February, 29), Yearly, 1, date(2025, time.February, 28)},
		{"yearly keeps feb 29 across leap cycle", date(2024, time.February, 29), Yearly, 4, date(2028, time.February, 29)},
		{"unknown frequency approximates a month", date(2025, time.March, 1), Frequency("fortnightly"), 2, date(2025, time.April, 30)},
		{"interval below one is treated as one", date(2025, time.March, 10), Daily, 0, date(2025, time.March, 11)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Advance(tc.from, tc.freq, tc.interval))
		})
	}
}

func TestProcessDueRecurringMaterializes(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	now := date(2025, time.March, 20)

	tpl := models.RecurringExpense{
		ID:             uuid.New(),
		TripID:         uuid.New(),
		PaidBy:         p1,
		Description:    "Apartment rent",
		Amount:         1200,
		Currency:       "USD",
		Category:       "lodging",
		SplitType:      "equal",
		Participants:   models.UUIDSlice{p1, p2},
		Frequency:      "monthly",
		Interval:       1,
		NextOccurrence: date(2025, time.January, 15),
		IsActive:       true,
	}

	result := ProcessDueRecurring([]models.RecurringExpense{tpl}, now)

	require.Len(t, result.Materialized, 1)
	exp := result.Materialized[0]
	assert.Equal(t, tpl.TripID, exp.TripID)
	assert.Equal(t, tpl.PaidBy, exp.PaidBy)
	assert.Equal(t, tpl.Description, exp.Description)
	assert.Equal(t, tpl.Amount, exp.Amount)
	assert.Equal(t, tpl.Participants, exp.Participants)
	assert.Equal(t, now, exp.ExpenseDate)
	require.NotNil(t, exp.RecurringID)
	assert.Equal(t, tpl.ID, *exp.RecurringID)

	require.Len(t, result.Updated, 1)
	updated := result.Updated[0]
	// Advanced one period from the stored occurrence, not jumped to now,
	// so a missed run catches up gradually.
	assert.Equal(t, date(2025, time.February, 15), updated.NextOccurrence)
	require.NotNil(t, updated.LastGenerated)
	assert.Equal(t, now, *updated.LastGenerated)
	assert.True(t, updated.IsActive)
}

func TestProcessDueRecurringDeactivatesPastEndDate(t *testing.T) {
	end := date(2025, time.February, 1)
	tpl := models.RecurringExpense{
		ID:             uuid.New(),
		Amount:         50,
		SplitType:      "equal",
		Participants:   models.UUIDSlice{uuid.New()},
		Frequency:      "weekly",
		Interval:       1,
		NextOccurrence: date(2025, time.January, 27),
		EndDate:        &end,
		IsActive:       true,
	}

	result := ProcessDueRecurring([]models.RecurringExpense{tpl}, date(2025, time.March, 1))

	assert.Empty(t, result.Materialized)
	require.Len(t, result.Updated, 1)
	assert.False(t, result.Updated[0].IsActive)
	// The schedule itself is left untouched on deactivation.
	assert.Equal(t, tpl.NextOccurrence, result.Updated[0].NextOccurrence)
}

func TestProcessDueRecurringSkipsNotDueAndInactive(t *testing.T) {
	future := models.RecurringExpense{
		Frequency:      "daily",
		NextOccurrence: date(2025, time.June, 1),
		IsActive:       true,
	}
	inactive := models.RecurringExpense{
		Frequency:      "daily",
		NextOccurrence: date(2025, time.January, 1),
		IsActive:       false,
	}

	result := ProcessDueRecurring([]models.RecurringExpense{future, inactive}, date(2025, time.March, 1))
	assert.Empty(t, result.Materialized)
	assert.Empty(t, result.Updated)
}

func TestProcessDueRecurringDoesNotMutateInput(t *testing.T) {
	tpl := models.RecurringExpense{
		ID:             uuid.New(),
		Amount:         10,
		SplitType:      "equal",
		Participants:   models.UUIDSlice{uuid.New()},
		Frequency:      "daily",
		Interval:       1,
		NextOccurrence: date(2025, time.January, 1),
		IsActive:       true,
	}
	templates := []models.RecurringExpense{tpl}

	ProcessDueRecurring(templates, date(2025, time.January, 2))

	assert.Equal(t, date(2025, time.January, 1), templates[0].NextOccurrence)
	assert.Nil(t, templates[0].LastGenerated)
}
