package trips

import (
	"busline/internal/shared/config"
	"busline/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTripRoutes configures all trip-related routes
func SetupTripRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	trips := rg.Group("/trips")
	{
		// Public search and lookup
		trips.GET("/search", controller.SearchTrips) // GET /api/v1/trips/search?origin=&destination=&date=
		trips.GET("/:tripId", controller.GetTrip)    // GET /api/v1/trips/:tripId

		// Staff operations
		staff := trips.Group("")
		staff.Use(middleware.JWTAuth(cfg), middleware.RequireRoles("OPERATOR", "ADMIN"))
		{
			staff.POST("", controller.ScheduleTrip)              // POST /api/v1/trips
			staff.GET("/upcoming", controller.UpcomingTrips)     // GET  /api/v1/trips/upcoming
			staff.POST("/:tripId/cancel", controller.CancelTrip) // POST /api/v1/trips/:tripId/cancel
		}
	}
}
