package analytics

import (
	"busline/internal/shared/config"
	"busline/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAnalyticsRoutes configures the admin-only analytics read side
func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	analytics := rg.Group("/analytics")
	analytics.Use(middleware.JWTAuth(cfg))
	analytics.Use(middleware.RequireAdmin())
	{
		analytics.GET("/routes", controller.GetRouteAnalytics)         // GET /api/v1/analytics/routes
		analytics.GET("/bookings", controller.GetBookingOverview)      // GET /api/v1/analytics/bookings
		analytics.GET("/bookings/peak-hours", controller.GetPeakHours) // GET /api/v1/analytics/bookings/peak-hours
		analytics.GET("/trips/:tripId", controller.GetTripAnalytics)   // GET /api/v1/analytics/trips/:tripId
	}
}
