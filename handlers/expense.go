package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"tripsplit-backend/database"
	"tripsplit-backend/ledger"
	"tripsplit-backend/models"
	"tripsplit-backend/services"
	"tripsplit-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POST /api/trips/:id/expenses
func CreateExpense(c *gin.Context) {
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

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var trip models.Trip
	if err := database.DB.First(&trip, tripID).Error; err != nil {
		utils.NotFound(c, "Trip not found")
		return
	}

	participants, err := resolveParticipants(tripID, req.Participants)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	// Parse expense date
	expenseDate := time.Now()
	if req.ExpenseDate != "" {
		if parsed, err := time.Parse("2006-01-02", req.ExpenseDate); err == nil {
			expenseDate = parsed
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = trip.Currency
	}

	expense := models.Expense{
		TripID:       tripID,
		PaidBy:       userID,
		Description:  req.Description,
		Amount:       req.Amount,
		Currency:     currency,
		Category:     req.Category,
		SplitType:    req.SplitType,
		Participants: participants,
		SplitData:    encodeSplitData(req.SplitData),
		Notes:        req.Notes,
		ExpenseDate:  expenseDate,
	}

	if err := database.DB.Create(&expense).Error; err != nil {
		utils.InternalError(c, "Failed to create expense")
		return
	}

	invalidateTripBalances(c, tripID)

	// Log activity
	var payer models.User
	database.DB.First(&payer, userID)

	database.DB.Create(&models.Activity{
		TripID:      tripID,
		UserID:      userID,
		Type:        "expense_added",
		ReferenceID: expense.ID,
		Description: fmt.Sprintf("%s added \"%s\" (%s %.2f)", payer.Name, expense.Description, expense.Currency, expense.Amount),
	})

	// Send notifications asynchronously
	go services.GetNotificationService().NotifyExpenseAdded(expense, ledger.ComputeShares(expense), payer, trip)

	response := buildExpenseResponse(expense.ID)
	utils.SuccessResponse(c, http.StatusCreated, "Expense added", response)
}

// GET /api/trips/:id/expenses
func GetTripExpenses(c *gin.Context) {
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

	var pagination utils.PaginationQuery
	c.ShouldBindQuery(&pagination)

	var expenses []models.Expense
	database.DB.Where("trip_id = ?", tripID).
		Order("expense_date DESC, created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.PageSize()).
		Find(&expenses)

	var responses []models.ExpenseResponse
	for _, e := range expenses {
		responses = append(responses, buildExpenseResponse(e.ID))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// GET /api/expenses/:id
func GetExpense(c *gin.Context) {
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID")
		return
	}

	response := buildExpenseResponse(expenseID)
	if response.ID == uuid.Nil {
		utils.NotFound(c, "Expense not found")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", response)
}

// PUT /api/expenses/:id
func UpdateExpense(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID")
		return
	}

	var expense models.Expense
	if err := database.DB.First(&expense, expenseID).Error; err != nil {
		utils.NotFound(c, "Expense not found")
		return
	}

	if !isMember(expense.TripID, userID) {
		utils.Unauthorized(c, "You are not a member of this trip")
		return
	}

	var req models.UpdateExpenseRequest
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
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}
	if req.SplitType != "" {
		updates["split_type"] = req.SplitType
	}
	if len(req.Participants) > 0 {
		participants, err := resolveParticipants(expense.TripID, req.Participants)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		updates["participants"] = participants
	}
	if len(req.SplitData) > 0 {
		updates["split_data"] = encodeSplitData(req.SplitData)
	}

	database.DB.Model(&expense).Updates(updates)

	invalidateTripBalances(c, expense.TripID)

	// Log activity
	var editor models.User
	database.DB.First(&editor, userID)

	database.DB.Create(&models.Activity{
		TripID:      expense.TripID,
		UserID:      userID,
		Type:        "expense_updated",
		ReferenceID: expense.ID,
		Description: fmt.Sprintf("%s updated \"%s\"", editor.Name, expense.Description),
	})

	// Shares are never stored, so the next read picks up the new split
	// without any recalculation step here.
	response := buildExpenseResponse(expense.ID)
	utils.SuccessResponse(c, http.StatusOK, "Expense updated", response)
}

// DELETE /api/expenses/:id
func DeleteExpense(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid expense ID")
		return
	}

	var expense models.Expense
	if err := database.DB.First(&expense, expenseID).Error; err != nil {
		utils.NotFound(c, "Expense not found")
		return
	}

	if !isMember(expense.TripID, userID) {
		utils.Unauthorized(c, "You are not a member of this trip")
		return
	}

	// Log before deleting
	var deleter models.User
	database.DB.First(&deleter, userID)

	database.DB.Create(&models.Activity{
		TripID:      expense.TripID,
		UserID:      userID,
		Type:        "expense_deleted",
		Description: fmt.Sprintf("%s deleted \"%s\" (%s %.2f)", deleter.Name, expense.Description, expense.Currency, expense.Amount),
	})

	database.DB.Delete(&expense)

	invalidateTripBalances(c, expense.TripID)

	utils.SuccessResponse(c, http.StatusOK, "Expense deleted", nil)
}

// resolveParticipants maps the requested participant IDs onto trip members,
// preserving request order. Empty input means all members. A participant
// that is not a member of the trip is a hard error, never silently dropped.
func resolveParticipants(tripID uuid.UUID, requested []string) (models.UUIDSlice, error) {
	memberIDs := tripMemberIDs(tripID)
	if len(requested) == 0 {
		return models.UUIDSlice(memberIDs), nil
	}

	memberSet := make(map[uuid.UUID]bool, len(memberIDs))
	for _, id := range memberIDs {
		memberSet[id] = true
	}

	participants := make(models.UUIDSlice, 0, len(requested))
	for _, raw := range requested {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid participant ID: %s", raw)
		}
		if !memberSet[id] {
			return nil, fmt.Errorf("user %s is not a member of this trip", raw)
		}
		participants = append(participants, id)
	}
	return participants, nil
}

// encodeSplitData serializes the request's split values into the opaque
// jsonb payload. The ledger decodes it back on every share computation.
func encodeSplitData(data map[string]float64) models.SplitData {
	if len(data) == 0 {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return models.SplitData(b)
}

// Build expense response with payer name and computed shares
func buildExpenseResponse(expenseID uuid.UUID) models.ExpenseResponse {
	var expense models.Expense
	if err := database.DB.First(&expense, expenseID).Error; err != nil {
		return models.ExpenseResponse{}
	}

	var payer models.User
	database.DB.First(&payer, expense.PaidBy)

	shares := ledger.ComputeShares(expense)

	var shareResponses []models.ShareResponse
	for _, id := range expense.Participants {
		owed, ok := shares[id]
		if !ok {
			continue
		}
		var user models.User
		database.DB.First(&user, id)
		shareResponses = append(shareResponses, models.ShareResponse{
			UserID:     id,
			UserName:   user.Name,
			OwedAmount: owed,
		})
	}

	return models.ExpenseResponse{
		ID:          expense.ID,
		TripID:      expense.TripID,
		PaidBy:      expense.PaidBy,
		PayerName:   payer.Name,
		Description: expense.Description,
		Amount:      expense.Amount,
		Currency:    expense.Currency,
		Category:    expense.Category,
		SplitType:   expense.SplitType,
		Notes:       expense.Notes,
		ExpenseDate: expense.ExpenseDate,
		Shares:      shareResponses,
		CreatedAt:   expense.CreatedAt,
	}
}
