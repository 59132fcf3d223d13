package handlers

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

func setupSettlementDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Settlement{}))
	database.DB = db
}

func newPendingSettlement(t *testing.T) models.Settlement {
	t.Helper()
	settlement := models.Settlement{
		TripID:   uuid.New(),
		FromUser: uuid.New(),
		ToUser:   uuid.New(),
		Amount:   25,
		Currency: "USD",
		Status:   models.SettlementPending,
	}
	require.NoError(t, database.DB.Create(&settlement).Error)
	return settlement
}

func TestMarkCompletedSingleWinner(t *testing.T) {
	setupSettlementDB(t)
	settlement := newPendingSettlement(t)

	// Two requests read the settlement while it was still pending.
	first := settlement
	require.NoError(t, first.Complete(time.Now()))

	second := settlement
	require.NoError(t, second.Complete(time.Now()))

	assert.True(t, markCompleted(&first))
	assert.False(t, markCompleted(&second))

	var stored models.Settlement
	require.NoError(t, database.DB.First(&stored, settlement.ID).Error)
	assert.Equal(t, models.SettlementCompleted, stored.Status)
	require.NotNil(t, stored.SettledAt)
	assert.WithinDuration(t, *first.SettledAt, *stored.SettledAt, time.Second)
}

func TestMarkCompletedSkipsCancelled(t *testing.T) {
	setupSettlementDB(t)
	settlement := newPendingSettlement(t)

	stale := settlement
	require.NoError(t, database.DB.Model(&settlement).Update("status", models.SettlementCancelled).Error)

	require.NoError(t, stale.Complete(time.Now()))
	assert.False(t, markCompleted(&stale))

	var stored models.Settlement
	require.NoError(t, database.DB.First(&stored, settlement.ID).Error)
	assert.Equal(t, models.SettlementCancelled, stored.Status)
	assert.Nil(t, stored.SettledAt)
}
