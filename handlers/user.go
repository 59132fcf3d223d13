package handlers

import (
	"net/http"
	"strings"
	"tripsplit-backend/database"
	"tripsplit-backend/models"
	"tripsplit-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProfileResponse is the user record plus its trip footprint.
type ProfileResponse struct {
	models.UserResponse
	TripCount      int64 `json:"trip_count"`
	TripsOrganized int64 `json:"trips_organized"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
	Currency  string `json:"currency"`
}

type UpdateFCMTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type SearchUsersRequest struct {
	Query string `json:"query" binding:"required,min=2"`
}

// GET /api/users/me
func GetProfile(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	var tripCount, organized int64
	database.DB.Model(&models.TripMember{}).Where("user_id = ?", userID).Count(&tripCount)
	database.DB.Model(&models.TripMember{}).Where("user_id = ? AND role = ?", userID, "organizer").Count(&organized)

	utils.SuccessResponse(c, http.StatusOK, "", ProfileResponse{
		UserResponse:   user.ToResponse(),
		TripCount:      tripCount,
		TripsOrganized: organized,
	})
}

// PUT /api/users/me
func UpdateProfile(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.AvatarURL != "" {
		updates["avatar_url"] = req.AvatarURL
	}
	if req.Currency != "" {
		// The preferred currency feeds trip and expense defaults, so a
		// malformed code is rejected here rather than stored.
		code, ok := utils.NormalizeCurrency(req.Currency)
		if !ok {
			utils.BadRequest(c, "Invalid currency code")
			return
		}
		updates["currency"] = code
	}

	if len(updates) > 0 {
		database.DB.Model(&user).Updates(updates)
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile updated", user.ToResponse())
}

// PUT /api/users/me/fcm-token
func UpdateFCMToken(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req UpdateFCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	res := database.DB.Model(&models.User{}).Where("id = ?", userID).Update("fcm_token", req.Token)
	if res.Error != nil || res.RowsAffected == 0 {
		utils.NotFound(c, "User not found")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "FCM token updated", nil)
}

// POST /api/users/search
//
// An exact email match is always returned, so an organizer can look up
// someone to invite. Fuzzy name/email/phone matches are limited to people
// the caller has already travelled with; the directory is not browsable.
func SearchUsers(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req SearchUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	query := strings.TrimSpace(req.Query)

	var exact []models.User
	database.DB.Where("LOWER(email) = ?", strings.ToLower(query)).Limit(1).Find(&exact)

	var companions []models.User
	if ids := coTravellerIDs(userID); len(ids) > 0 {
		pattern := "%" + query + "%"
		database.DB.Where("id IN ?", ids).
			Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", pattern, pattern, pattern).
			Limit(20).
			Find(&companions)
	}

	utils.SuccessResponse(c, http.StatusOK, "", mergeSearchResults(exact, companions))
}

// coTravellerIDs returns every user sharing at least one trip with userID.
func coTravellerIDs(userID uuid.UUID) []uuid.UUID {
	memberTrips := database.DB.Model(&models.TripMember{}).
		Select("trip_id").
		Where("user_id = ?", userID)

	var ids []uuid.UUID
	database.DB.Model(&models.TripMember{}).
		Distinct("user_id").
		Where("user_id <> ?", userID).
		Where("trip_id IN (?)", memberTrips).
		Pluck("user_id", &ids)
	return ids
}

// mergeSearchResults folds the exact-email hit and the co-traveller matches
// into one list, deduplicated by ID with the exact match first.
func mergeSearchResults(exact, companions []models.User) []models.UserResponse {
	seen := make(map[uuid.UUID]bool, len(exact)+len(companions))
	results := make([]models.UserResponse, 0, len(exact)+len(companions))
	for _, u := range exact {
		if !seen[u.ID] {
			seen[u.ID] = true
			results = append(results, u.ToResponse())
		}
	}
	for _, u := range companions {
		if !seen[u.ID] {
			seen[u.ID] = true
			results = append(results, u.ToResponse())
		}
	}
	return results
}
