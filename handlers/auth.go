package handlers

import (
	"net/http"
	"strings"
	"tripsplit-backend/database"
	"tripsplit-backend/models"
	"tripsplit-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	Currency string `json:"currency"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
	// Trips the new user was pulled into via pending invitations.
	TripsJoined int `json:"trips_joined,omitempty"`
}

// POST /auth/register
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing int64
	database.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing)
	if existing > 0 {
		utils.Conflict(c, "Email already registered")
		return
	}

	currency, ok := utils.NormalizeCurrency(req.Currency)
	if !ok {
		utils.BadRequest(c, "Invalid currency code")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.InternalError(c, "Failed to hash password")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hashedPassword),
		Currency:     currency,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		utils.InternalError(c, "Failed to create user")
		return
	}

	// Pending invitations for this email/phone are accepted right away, so
	// the first trip list the client fetches is already populated.
	tripsJoined := acceptPendingInvitations(user)

	token, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		utils.InternalError(c, "Failed to generate token")
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Registration successful", AuthResponse{
		Token:       token,
		User:        user.ToResponse(),
		TripsJoined: tripsJoined,
	})
}

// POST /auth/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		utils.InternalError(c, "Failed to generate token")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Login successful", AuthResponse{
		Token: token,
		User:  user.ToResponse(),
	})
}

// acceptPendingInvitations turns every invitation addressed to the new user's
// email or phone into a trip membership. Returns how many trips were joined.
func acceptPendingInvitations(user models.User) int {
	var invitations []models.Invitation
	database.DB.Where("(email = ? OR phone = ?) AND status = ?", user.Email, user.Phone, "pending").Find(&invitations)

	joined := 0
	for _, inv := range invitations {
		if err := database.DB.Create(&models.TripMember{
			TripID: inv.TripID,
			UserID: user.ID,
			Role:   "member",
		}).Error; err != nil {
			continue
		}
		joined++

		database.DB.Model(&inv).Update("status", "accepted")

		var trip models.Trip
		database.DB.First(&trip, inv.TripID)
		database.DB.Create(&models.Activity{
			TripID:      inv.TripID,
			UserID:      user.ID,
			Type:        "member_joined",
			Description: user.Name + " joined " + trip.Name,
		})
	}
	return joined
}
