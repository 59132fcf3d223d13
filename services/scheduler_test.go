package services

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"tripsplit-backend/database"
	"tripsplit-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSchedulerDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.TripMember{},
		&models.Expense{},
		&models.RecurringExpense{},
		&models.Activity{},
	))
	database.DB = db
	database.Redis = nil
}

func seedDueTemplate(t *testing.T, next time.Time) models.RecurringExpense {
	t.Helper()
	payer := models.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Currency: "USD"}
	require.NoError(t, database.DB.Create(&payer).Error)

	tpl := models.RecurringExpense{
		TripID:         uuid.New(),
		PaidBy:         payer.ID,
		Description:    "Camp site",
		Amount:         60,
		Currency:       "USD",
		SplitType:      "equal",
		Participants:   models.UUIDSlice{payer.ID},
		Frequency:      "daily",
		Interval:       1,
		StartDate:      next,
		NextOccurrence: next,
		IsActive:       true,
	}
	require.NoError(t, database.DB.Create(&tpl).Error)
	return tpl
}

func TestSweepMaterializesOncePerPeriod(t *testing.T) {
	setupSchedulerDB(t)
	now := time.Now()
	tpl := seedDueTemplate(t, now.Add(-time.Hour))

	generated, err := ProcessDueRecurringOnce(now)
	require.NoError(t, err)
	assert.Equal(t, 1, generated)

	var expenses []models.Expense
	database.DB.Where("recurring_id = ?", tpl.ID).Find(&expenses)
	require.Len(t, expenses, 1)
	assert.Equal(t, tpl.Amount, expenses[0].Amount)

	var stored models.RecurringExpense
	require.NoError(t, database.DB.First(&stored, tpl.ID).Error)
	assert.True(t, stored.NextOccurrence.After(tpl.NextOccurrence))
	require.NotNil(t, stored.LastGenerated)

	// The advanced template is no longer due, so a second sweep at the same
	// instant leaves the expense log untouched.
	generated, err = ProcessDueRecurringOnce(now)
	require.NoError(t, err)
	assert.Equal(t, 0, generated)
	database.DB.Where("recurring_id = ?", tpl.ID).Find(&expenses)
	assert.Len(t, expenses, 1)
}

func TestSweepAdvanceCommitsOnlyWithExpense(t *testing.T) {
	setupSchedulerDB(t)
	now := time.Now()
	tpl := seedDueTemplate(t, now.Add(-time.Hour))

	// Sabotage the expense insert; the schedule advance must roll back with
	// it so the period is retried on the next sweep.
	require.NoError(t, database.DB.Migrator().DropTable(&models.Expense{}))

	generated, err := ProcessDueRecurringOnce(now)
	require.NoError(t, err)
	assert.Equal(t, 0, generated)

	var stored models.RecurringExpense
	require.NoError(t, database.DB.First(&stored, tpl.ID).Error)
	assert.WithinDuration(t, tpl.NextOccurrence, stored.NextOccurrence, time.Second)
	assert.Nil(t, stored.LastGenerated)
}

func TestSweepDeactivatesExpiredTemplate(t *testing.T) {
	setupSchedulerDB(t)
	now := time.Now()
	tpl := seedDueTemplate(t, now.Add(-48*time.Hour))

	ended := now.Add(-24 * time.Hour)
	require.NoError(t, database.DB.Model(&tpl).Update("end_date", ended).Error)

	generated, err := ProcessDueRecurringOnce(now)
	require.NoError(t, err)
	assert.Equal(t, 0, generated)

	var stored models.RecurringExpense
	require.NoError(t, database.DB.First(&stored, tpl.ID).Error)
	assert.False(t, stored.IsActive)

	var count int64
	database.DB.Model(&models.Expense{}).Where("recurring_id = ?", tpl.ID).Count(&count)
	assert.Zero(t, count)
}
