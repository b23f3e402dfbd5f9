package trips

import (
	"net/http"

	"busline/internal/shared/middleware"
	"busline/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	ScheduleTrip(c *gin.Context)
	GetTrip(c *gin.Context)
	SearchTrips(c *gin.Context)
	UpcomingTrips(c *gin.Context)
	CancelTrip(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) ScheduleTrip(c *gin.Context) {
	var req ScheduleTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authenticated", nil, nil)
		return
	}

	trip, err := ctrl.service.ScheduleTrip(c.Request.Context(), principal, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Trip scheduled successfully", trip, nil)
}

func (ctrl *controller) GetTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("tripId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid trip ID", nil, err.Error())
		return
	}

	trip, err := ctrl.service.GetTrip(c.Request.Context(), tripID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Trip retrieved successfully", trip, nil)
}

func (ctrl *controller) SearchTrips(c *gin.Context) {
	var query SearchTripsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid search parameters", nil, err.Error())
		return
	}

	results, err := ctrl.service.SearchTrips(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Trips retrieved successfully", results, nil)
}

func (ctrl *controller) UpcomingTrips(c *gin.Context) {
	results, err := ctrl.service.UpcomingTrips(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Upcoming trips retrieved successfully", results, nil)
}

func (ctrl *controller) CancelTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("tripId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid trip ID", nil, err.Error())
		return
	}

	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authenticated", nil, nil)
		return
	}

	trip, err := ctrl.service.CancelTrip(c.Request.Context(), principal, tripID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Trip cancelled successfully", trip, nil)
}
