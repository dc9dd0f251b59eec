package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/campuspool/carpool/internal/api/handlers"
	"github.com/campuspool/carpool/internal/api/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, nrApp *newrelic.Application, jwtSecret []byte) {
	// Add New Relic middleware if enabled
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")

	// Public auth endpoints
	auth := api.Group("/auth")
	{
		auth.POST("/send-otp", h.SendOTP)
		auth.POST("/verify-otp", h.VerifyOTP)
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	// Everything below requires a valid token
	authed := api.Group("", middleware.Authenticate(jwtSecret))
	{
		authed.GET("/ws", h.HandleWebSocket)
		authed.GET("/notifications", h.ListNotifications)

		rides := authed.Group("/rides")
		{
			rides.GET("/:id/locations", h.RideLocations)
			rides.GET("/:id/messages", h.ListMessages)
			rides.POST("/:id/messages", h.SendMessage)
		}

		driver := authed.Group("/driver", middleware.RequireRole("driver"))
		{
			driver.POST("/vehicles", h.AddVehicle)
			driver.GET("/vehicles", h.ListVehicles)
			driver.POST("/rides", h.CreateRide)
			driver.GET("/rides", h.DriverRides)
			driver.GET("/rides/:id/passengers", h.AcceptedPassengers)
			driver.POST("/requests/:id/accept", h.AcceptRequest)
			driver.POST("/requests/:id/reject", h.RejectRequest)
		}

		passenger := authed.Group("/passenger", middleware.RequireRole("passenger"))
		{
			passenger.GET("/rides", h.AvailableRides)
			passenger.GET("/rides/search", h.SearchRides)
			passenger.GET("/rides/accepted", h.AcceptedRides)
			passenger.POST("/requests", h.RequestRide)
		}
	}
}
