package bookings

import (
	"busline/internal/shared/config"
	"busline/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public seat ledger
	rg.GET("/trips/:tripId/seats", controller.GetSeatAvailability) // GET /api/v1/trips/:tripId/seats

	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth(cfg))
	{
		bookings.POST("", controller.CreateBooking)                   // POST /api/v1/bookings
		bookings.GET("/me", controller.ListMyBookings)                // GET  /api/v1/bookings/me
		bookings.GET("/:bookingId", controller.GetBooking)            // GET  /api/v1/bookings/:bookingId
		bookings.POST("/:bookingId/cancel", controller.CancelBooking) // POST /api/v1/bookings/:bookingId/cancel
	}
}
