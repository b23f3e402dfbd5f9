package auth

import (
	"busline/internal/shared/config"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes configures all auth-related routes
func SetupAuthRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", controller.Register) // POST /api/v1/auth/register
		auth.POST("/login", controller.Login)       // POST /api/v1/auth/login
		auth.POST("/refresh", controller.Refresh)   // POST /api/v1/auth/refresh
	}
}
