package fleet

import (
	"busline/internal/shared/config"
	"busline/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupFleetRoutes configures bus, route, and terminal reference-data routes
func SetupFleetRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	buses := rg.Group("/buses")
	buses.Use(middleware.JWTAuth(cfg), middleware.RequireRoles("OPERATOR", "ADMIN"))
	{
		buses.POST("", controller.RegisterBus)       // POST /api/v1/buses
		buses.GET("/mine", controller.ListMyBuses)   // GET  /api/v1/buses/mine
		buses.GET("/:busId", controller.GetBus)      // GET  /api/v1/buses/:busId
	}

	routes := rg.Group("/routes")
	{
		routes.GET("", controller.ListRoutes) // GET /api/v1/routes
		routes.POST("", middleware.JWTAuth(cfg), middleware.RequireAdmin(), controller.CreateRoute)
	}

	terminals := rg.Group("/terminals")
	{
		terminals.GET("", controller.ListTerminals) // GET /api/v1/terminals
		terminals.POST("", middleware.JWTAuth(cfg), middleware.RequireAdmin(), controller.CreateTerminal)
	}
}
