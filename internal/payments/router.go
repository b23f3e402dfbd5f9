package payments

import (
	"busline/internal/shared/config"
	"busline/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes configures all payment-related routes
func SetupPaymentRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	payments := rg.Group("/payments")
	payments.Use(middleware.JWTAuth(cfg))
	{
		payments.POST("", controller.ProcessPayment)               // POST /api/v1/payments
		payments.GET("/booking/:bookingId", controller.GetPayment) // GET  /api/v1/payments/booking/:bookingId
	}
}
