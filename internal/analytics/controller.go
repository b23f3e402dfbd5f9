package analytics

import (
	"net/http"

	"busline/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	GetRouteAnalytics(c *gin.Context)
	GetBookingOverview(c *gin.Context)
	GetTripAnalytics(c *gin.Context)
	GetPeakHours(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetRouteAnalytics(c *gin.Context) {
	results, err := ctrl.service.GetRouteAnalytics(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Route analytics retrieved successfully", results, nil)
}

func (ctrl *controller) GetBookingOverview(c *gin.Context) {
	overview, err := ctrl.service.GetBookingOverview(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking analytics retrieved successfully", overview, nil)
}

func (ctrl *controller) GetTripAnalytics(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("tripId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid trip ID", nil, err.Error())
		return
	}

	result, err := ctrl.service.GetTripAnalytics(c.Request.Context(), tripID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Trip analytics retrieved successfully", result, nil)
}

func (ctrl *controller) GetPeakHours(c *gin.Context) {
	hours, err := ctrl.service.GetPeakHours(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Peak hour analytics retrieved successfully", hours, nil)
}
