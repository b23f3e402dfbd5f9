package tickets

import (
	"busline/internal/shared/config"
	"busline/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTicketRoutes configures all ticket-related routes
func SetupTicketRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	tickets := rg.Group("/tickets")
	tickets.Use(middleware.JWTAuth(cfg))
	{
		tickets.GET("/booking/:bookingId", controller.GetTicket)               // GET /api/v1/tickets/booking/:bookingId
		tickets.GET("/booking/:bookingId/download", controller.DownloadTicket) // GET /api/v1/tickets/booking/:bookingId/download

		// Boarding validation is restricted to staff
		staff := tickets.Group("")
		staff.Use(middleware.RequireRoles("OPERATOR", "ADMIN"))
		{
			staff.POST("/:ticketNumber/validate", controller.ValidateTicket) // POST /api/v1/tickets/:ticketNumber/validate
		}
	}
}
