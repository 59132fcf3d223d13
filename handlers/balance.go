package handlers

import (
	"encoding/json"
	"net/http"
	"time"
	"tripsplit-backend/database"
	"tripsplit-backend/ledger"
	"tripsplit-backend/models"
	"tripsplit-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const balanceCacheTTL = time.Minute

func tripBalancesCacheKey(tripID, userID uuid.UUID) string {
	return "balances:trip:" + tripID.String() + ":" + userID.String()
}

// invalidateTripBalances drops cached balance summaries for every member of
// the trip after an expense or settlement write.
func invalidateTripBalances(c *gin.Context, tripID uuid.UUID) {
	var keys []string
	for _, id := range tripMemberIDs(tripID) {
		keys = append(keys, tripBalancesCacheKey(tripID, id))
	}
	database.CacheDelete(c.Request.Context(), keys...)
}

// GET /api/trips/:id/balances
func GetTripBalances(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid trip ID")
		return
	}

	var trip models.Trip
	if err := database.DB.First(&trip, tripID).Error; err != nil {
		utils.NotFound(c, "Trip not found")
		return
	}

	if !isMember(tripID, userID) {
		utils.Unauthorized(c, "You are not a member of this trip")
		return
	}

	cacheKey := tripBalancesCacheKey(tripID, userID)
	if cached := database.CacheGet(c.Request.Context(), cacheKey); cached != nil {
		c.Data(http.StatusOK, "application/json", cached)
		return
	}

	var expenses []models.Expense
	database.DB.Where("trip_id = ?", tripID).Find(&expenses)

	var settlements []models.Settlement
	database.DB.Where("trip_id = ?", tripID).Find(&settlements)

	aggregate := ledger.TripBalances(userID, expenses, settlements)
	payments := ledger.SimplifyDebts(aggregate.MemberBalances, lookupUserName)

	memberBalances := make([]models.MemberBalance, 0, len(aggregate.MemberBalances))
	for _, id := range tripMemberIDs(tripID) {
		memberBalances = append(memberBalances, models.MemberBalance{
			UserID:  id,
			Name:    lookupUserName(id),
			Balance: utils.RoundToTwo(aggregate.MemberBalances[id]),
		})
	}

	totalSpent := tripTotalSpent(tripID)
	var budgetUsed float64
	if trip.Budget > 0 {
		budgetUsed = utils.RoundToTwo(totalSpent / trip.Budget * 100)
	}

	summary := models.TripBalanceSummary{
		TripID:               tripID,
		TripName:             trip.Name,
		Currency:             trip.Currency,
		UserPaid:             aggregate.UserPaid,
		UserShare:            aggregate.UserShare,
		UserBalance:          aggregate.UserBalance,
		MemberBalances:       memberBalances,
		SuggestedPayments:    toSuggestedPayments(payments, trip.Currency),
		TotalSpent:           utils.RoundToTwo(totalSpent),
		BudgetUsedPercentage: budgetUsed,
	}

	body, err := json.Marshal(utils.APIResponse{Success: true, Data: summary})
	if err != nil {
		utils.InternalError(c, "Failed to encode balances")
		return
	}
	database.CacheSet(c.Request.Context(), cacheKey, body, balanceCacheTTL)

	c.Data(http.StatusOK, "application/json", body)
}

// GET /api/balances - overall balances across all trips for current user
func GetOverallBalances(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var memberships []models.TripMember
	database.DB.Where("user_id = ?", userID).Find(&memberships)

	trips := make([]ledger.TripRecords, 0, len(memberships))
	for _, m := range memberships {
		var records ledger.TripRecords
		database.DB.Where("trip_id = ?", m.TripID).Find(&records.Expenses)
		database.DB.Where("trip_id = ?", m.TripID).Find(&records.Settlements)
		trips = append(trips, records)
	}

	aggregate := ledger.UserBalances(userID, trips)

	var friends []models.FriendBalance
	for friendID, amount := range aggregate.FriendBalances {
		var user models.User
		database.DB.First(&user, friendID)

		friends = append(friends, models.FriendBalance{
			UserID:    friendID,
			Name:      user.Name,
			Email:     user.Email,
			AvatarURL: user.AvatarURL,
			Amount:    amount,
			Currency:  user.Currency,
		})
	}

	summary := models.OverallBalanceSummary{
		ToReceive:    aggregate.ToReceive,
		ToGive:       aggregate.ToGive,
		TotalBalance: aggregate.TotalBalance,
		Friends:      friends,
	}

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}

// lookupUserName is the directory lookup handed to the simplifier; the
// ledger memoizes it per invocation so each user is fetched at most once.
func lookupUserName(id uuid.UUID) string {
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return ""
	}
	return user.Name
}

func toSuggestedPayments(txns []ledger.Transaction, currency string) []models.SuggestedPayment {
	payments := make([]models.SuggestedPayment, 0, len(txns))
	for _, txn := range txns {
		payments = append(payments, models.SuggestedPayment{
			From:     txn.From,
			FromName: txn.FromName,
			To:       txn.To,
			ToName:   txn.ToName,
			Amount:   txn.Amount,
			Currency: currency,
		})
	}
	return payments
}
