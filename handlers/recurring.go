package handlers

import (
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

// POST /api/trips/:id/recurring
func CreateRecurring(c *gin.Context) {
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

	var req models.CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		utils.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		return
	}

	var endDate *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			utils.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
			return
		}
		if parsed.Before(startDate) {
			utils.BadRequest(c, "end_date cannot be before start_date")
			return
		}
		endDate = &parsed
	}

	participants, err := resolveParticipants(tripID, req.Participants)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var trip models.Trip
	database.DB.First(&trip, tripID)

	currency := req.Currency
	if currency == "" {
		currency = trip.Currency
	}

	interval := req.Interval
	if interval < 1 {
		interval = 1
	}

	template := models.RecurringExpense{
		TripID:       tripID,
		PaidBy:       userID,
		Description:  req.Description,
		Amount:       req.Amount,
		Currency:     currency,
		Category:     req.Category,
		SplitType:    req.SplitType,
		Participants: participants,
		SplitData:    encodeSplitData(req.SplitData),
		Frequency:    req.Frequency,
		Interval:     interval,
		StartDate:    startDate,
		EndDate:      endDate,
		// The first occurrence is the start date itself; every later one
		// is derived from this field, one period at a time.
		NextOccurrence: startDate,
		IsActive:       true,
	}

	if err := database.DB.Create(&template).Error; err != nil {
		utils.InternalError(c, "Failed to create recurring expense")
		return
	}

	var creator models.User
	database.DB.First(&creator, userID)
	database.DB.Create(&models.Activity{
		TripID:      tripID,
		UserID:      userID,
		Type:        "recurring_created",
		ReferenceID: template.ID,
		Description: fmt.Sprintf("%s scheduled \"%s\" (%s %.2f, %s)", creator.Name, template.Description, template.Currency, template.Amount, template.Frequency),
	})

	utils.SuccessResponse(c, http.StatusCreated, "Recurring expense created", template)
}

// GET /api/trips/:id/recurring
func GetTripRecurring(c *gin.Context) {
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

	var templates []models.RecurringExpense
	database.DB.Where("trip_id = ?", tripID).Order("created_at DESC").Find(&templates)

	utils.SuccessResponse(c, http.StatusOK, "", templates)
}

// PUT /api/recurring/:id
func UpdateRecurring(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid recurring expense ID")
		return
	}

	var template models.RecurringExpense
	if err := database.DB.First(&template, templateID).Error; err != nil {
		utils.NotFound(c, "Recurring expense not found")
		return
	}

	if !isMember(template.TripID, userID) {
		utils.Unauthorized(c, "You are not a member of this trip")
		return
	}

	var req models.UpdateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Amount > 0 {
		updates["amount"] = req.Amount
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			utils.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
			return
		}
		updates["end_date"] = parsed
	}
	// Deactivation is one-way: a template can be switched off but a dead
	// template is never revived.
	if req.IsActive != nil && !*req.IsActive {
		updates["is_active"] = false
	}

	database.DB.Model(&template).Updates(updates)

	database.DB.First(&template, templateID)
	utils.SuccessResponse(c, http.StatusOK, "Recurring expense updated", template)
}

// DELETE /api/recurring/:id deactivates rather than deletes, so generated
// expenses keep a valid back-reference.
func DeleteRecurring(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid recurring expense ID")
		return
	}

	var template models.RecurringExpense
	if err := database.DB.First(&template, templateID).Error; err != nil {
		utils.NotFound(c, "Recurring expense not found")
		return
	}

	if !isMember(template.TripID, userID) {
		utils.Unauthorized(c, "You are not a member of this trip")
		return
	}

	database.DB.Model(&template).Update("is_active", false)

	utils.SuccessResponse(c, http.StatusOK, "Recurring expense deactivated", nil)
}

// POST /api/recurring/process - manual trigger for the scheduler sweep,
// useful for ops and local development.
func ProcessRecurring(c *gin.Context) {
	generated, err := services.ProcessDueRecurringOnce(time.Now())
	if err != nil {
		utils.InternalError(c, "Failed to process recurring expenses")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"generated": generated})
}
