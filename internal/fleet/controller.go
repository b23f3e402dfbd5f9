package fleet

import (
	"net/http"

	"busline/internal/shared/middleware"
	"busline/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	RegisterBus(c *gin.Context)
	GetBus(c *gin.Context)
	ListMyBuses(c *gin.Context)
	CreateRoute(c *gin.Context)
	ListRoutes(c *gin.Context)
	CreateTerminal(c *gin.Context)
	ListTerminals(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) RegisterBus(c *gin.Context) {
	var req CreateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authenticated", nil, nil)
		return
	}

	bus, err := ctrl.service.RegisterBus(c.Request.Context(), principal, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Bus registered successfully", bus, nil)
}

func (ctrl *controller) GetBus(c *gin.Context) {
	busID, err := uuid.Parse(c.Param("busId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid bus ID", nil, err.Error())
		return
	}

	bus, err := ctrl.service.GetBus(c.Request.Context(), busID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bus retrieved successfully", bus, nil)
}

func (ctrl *controller) ListMyBuses(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authenticated", nil, nil)
		return
	}

	buses, err := ctrl.service.ListOperatorBuses(c.Request.Context(), principal.UserID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Buses retrieved successfully", buses, nil)
}

func (ctrl *controller) CreateRoute(c *gin.Context) {
	var req CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	route, err := ctrl.service.CreateRoute(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Route created successfully", route, nil)
}

func (ctrl *controller) ListRoutes(c *gin.Context) {
	routes, err := ctrl.service.ListRoutes(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Routes retrieved successfully", routes, nil)
}

func (ctrl *controller) CreateTerminal(c *gin.Context) {
	var req CreateTerminalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	terminal, err := ctrl.service.CreateTerminal(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Terminal created successfully", terminal, nil)
}

func (ctrl *controller) ListTerminals(c *gin.Context) {
	terminals, err := ctrl.service.ListTerminals(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Terminals retrieved successfully", terminals, nil)
}
