package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"
	"tripsplit-backend/database"
	"tripsplit-backend/models"
	"tripsplit-backend/services"
	"tripsplit-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POST /api/trips/:id/settle
func CreateSettlement(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid trip ID")
		return
	}

	if !isMember(tripID, userID) {
		utils.Unauthorized(c, "You are not a member of this trip")
		return
	}

	var req models.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	toUser, err := uuid.Parse(req.ToUser)
	if err != nil {
		utils.BadRequest(c, "Invalid to_user ID")
		return
	}
	if !isMember(tripID, toUser) {
		utils.BadRequest(c, "Recipient is not a member of this trip")
		return
	}
	if toUser == userID {
		utils.BadRequest(c, "Cannot settle with yourself")
		return
	}

	var trip models.Trip
	database.DB.First(&trip, tripID)

	settlement := models.Settlement{
		TripID:   tripID,
		FromUser: userID,
		ToUser:   toUser,
		Amount:   req.Amount,
		Currency: trip.Currency,
		Status:   models.SettlementPending,
		Notes:    req.Notes,
	}

	if err := database.DB.Create(&settlement).Error; err != nil {
		utils.InternalError(c, "Failed to create settlement")
		return
	}

	var payer, payee models.User
	database.DB.First(&payer, userID)
	database.DB.First(&payee, toUser)

	database.DB.Create(&models.Activity{
		TripID:      tripID,
		UserID:      userID,
		Type:        "settlement_created",
		ReferenceID: settlement.ID,
		Description: fmt.Sprintf("%s recorded a payment of %s %.2f to %s", payer.Name, settlement.Currency, settlement.Amount, payee.Name),
	})

	utils.SuccessResponse(c, http.StatusCreated, "Settlement recorded", settlement)
}

// POST /api/settlements/:id/complete
func CompleteSettlement(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	settlementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid settlement ID")
		return
	}

	var settlement models.Settlement
	if err := database.DB.First(&settlement, settlementID).Error; err != nil {
		utils.NotFound(c, "Settlement not found")
		return
	}

	if userID != settlement.FromUser && userID != settlement.ToUser {
		utils.Unauthorized(c, "Only the two parties can complete a settlement")
		return
	}

	alreadyCompleted := settlement.Status == models.SettlementCompleted

	if err := settlement.Complete(time.Now()); err != nil {
		if errors.Is(err, models.ErrSettlementFinal) {
			utils.Conflict(c, "Settlement was cancelled")
			return
		}
		utils.InternalError(c, "Failed to complete settlement")
		return
	}

	// A retried completion is a no-op: nothing to persist, no second
	// balance adjustment, no duplicate notification.
	if alreadyCompleted {
		utils.SuccessResponse(c, http.StatusOK, "Settlement already completed", settlement)
		return
	}

	// Conditional write: two racing requests can both pass the status read
	// above, but only one claims the pending row. The loser re-reads and
	// reports the outcome without a second activity row or notification.
	if !markCompleted(&settlement) {
		database.DB.First(&settlement, settlementID)
		if settlement.Status == models.SettlementCancelled {
			utils.Conflict(c, "Settlement was cancelled")
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Settlement already completed", settlement)
		return
	}

	invalidateTripBalances(c, settlement.TripID)

	var payer, payee models.User
	database.DB.First(&payer, settlement.FromUser)
	database.DB.First(&payee, settlement.ToUser)
	var trip models.Trip
	database.DB.First(&trip, settlement.TripID)

	database.DB.Create(&models.Activity{
		TripID:      settlement.TripID,
		UserID:      userID,
		Type:        "settlement_completed",
		ReferenceID: settlement.ID,
		Description: fmt.Sprintf("%s paid %s %s %.2f", payer.Name, payee.Name, settlement.Currency, settlement.Amount),
	})

	go services.GetNotificationService().NotifySettlementCompleted(settlement, payer, payee, trip)

	utils.SuccessResponse(c, http.StatusOK, "Settlement completed", settlement)
}

// POST /api/settlements/:id/cancel
func CancelSettlement(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	settlementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid settlement ID")
		return
	}

	var settlement models.Settlement
	if err := database.DB.First(&settlement, settlementID).Error; err != nil {
		utils.NotFound(c, "Settlement not found")
		return
	}

	if userID != settlement.FromUser && userID != settlement.ToUser {
		utils.Unauthorized(c, "Only the two parties can cancel a settlement")
		return
	}

	if err := settlement.Cancel(); err != nil {
		utils.Conflict(c, "Settlement was already completed")
		return
	}

	res := database.DB.Model(&models.Settlement{}).
		Where("id = ? AND status = ?", settlement.ID, models.SettlementPending).
		Update("status", models.SettlementCancelled)
	if res.Error != nil || res.RowsAffected == 0 {
		database.DB.First(&settlement, settlementID)
		if settlement.Status == models.SettlementCompleted {
			utils.Conflict(c, "Settlement was already completed")
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Settlement already cancelled", settlement)
		return
	}

	database.DB.Create(&models.Activity{
		TripID:      settlement.TripID,
		UserID:      userID,
		Type:        "settlement_cancelled",
		ReferenceID: settlement.ID,
		Description: fmt.Sprintf("A pending payment of %s %.2f was cancelled", settlement.Currency, settlement.Amount),
	})

	utils.SuccessResponse(c, http.StatusOK, "Settlement cancelled", settlement)
}

// markCompleted persists the pending→completed transition. It returns false
// when another request finalized the settlement first.
func markCompleted(s *models.Settlement) bool {
	res := database.DB.Model(&models.Settlement{}).
		Where("id = ? AND status = ?", s.ID, models.SettlementPending).
		Updates(map[string]interface{}{
			"status":     s.Status,
			"settled_at": s.SettledAt,
		})
	return res.Error == nil && res.RowsAffected > 0
}

// GET /api/trips/:id/settlements
func GetTripSettlements(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid trip ID")
		return
	}

	if !isMember(tripID, userID) {
		utils.Unauthorized(c, "You are not a member of this trip")
		return
	}

	var settlements []models.Settlement
	database.DB.Where("trip_id = ?", tripID).
		Preload("Payer").Preload("Payee").
		Order("created_at DESC").
		Find(&settlements)

	utils.SuccessResponse(c, http.StatusOK, "", settlements)
}
