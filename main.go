package main

import (
	"log"
	"tripsplit-backend/config"
	"tripsplit-backend/database"
	"tripsplit-backend/handlers"
	"tripsplit-backend/middleware"
	"tripsplit-backend/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.Load()

	// Connect to database
	database.Connect()

	// Connect to Redis (optional, won't crash if unavailable)
	database.ConnectRedis()

	// Initialize push/email clients once at startup
	services.GetNotificationService()

	// Background sweep that materializes due recurring expenses
	go services.StartRecurringScheduler()

	// Setup router
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": config.AppConfig.AppName,
		})
	})

	// ==========================================
	// AUTH ROUTES (public)
	// ==========================================
	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
	}

	// ==========================================
	// API ROUTES (authenticated)
	// ==========================================
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		// User
		api.GET("/users/me", handlers.GetProfile)
		api.PUT("/users/me", handlers.UpdateProfile)
		api.PUT("/users/me/fcm-token", handlers.UpdateFCMToken)
		api.POST("/users/search", handlers.SearchUsers)

		// Trips
		api.POST("/trips", handlers.CreateTrip)
		api.GET("/trips", handlers.GetTrips)
		api.GET("/trips/:id", handlers.GetTrip)
		api.PUT("/trips/:id", handlers.UpdateTrip)
		api.POST("/trips/:id/members", handlers.AddMember)
		api.DELETE("/trips/:id/members/:uid", handlers.RemoveMember)
		api.POST("/trips/:id/invite", handlers.InviteToTripHandler)

		// Expenses
		api.POST("/trips/:id/expenses", handlers.CreateExpense)
		api.GET("/trips/:id/expenses", handlers.GetTripExpenses)
		api.GET("/expenses/:id", handlers.GetExpense)
		api.PUT("/expenses/:id", handlers.UpdateExpense)
		api.DELETE("/expenses/:id", handlers.DeleteExpense)

		// Balances
		api.GET("/trips/:id/balances", handlers.GetTripBalances)
		api.GET("/balances", handlers.GetOverallBalances)

		// Settlements
		api.POST("/trips/:id/settle", handlers.CreateSettlement)
		api.GET("/trips/:id/settlements", handlers.GetTripSettlements)
		api.POST("/settlements/:id/complete", handlers.CompleteSettlement)
		api.POST("/settlements/:id/cancel", handlers.CancelSettlement)

		// Recurring expenses
		api.POST("/trips/:id/recurring", handlers.CreateRecurring)
		api.GET("/trips/:id/recurring", handlers.GetTripRecurring)
		api.PUT("/recurring/:id", handlers.UpdateRecurring)
		api.DELETE("/recurring/:id", handlers.DeleteRecurring)
		api.POST("/recurring/process", handlers.ProcessRecurring)

		// Activity
		api.GET("/activity", handlers.GetActivity)
		api.GET("/trips/:id/activity", handlers.GetTripActivity)
	}

	// Start server
	port := config.AppConfig.Port
	log.Printf("🚀 %s server starting on port %s", config.AppConfig.AppName, port)

	addr := "0.0.0.0:" + port
	log.Printf("🚀 Listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
