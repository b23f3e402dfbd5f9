package tickets

import (
	"net/http"

	"busline/internal/shared/middleware"
	"busline/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	GetTicket(c *gin.Context)
	DownloadTicket(c *gin.Context)
	ValidateTicket(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetTicket(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authenticated", nil, nil)
		return
	}

	ticket, err := ctrl.service.GetTicketForBooking(c.Request.Context(), principal, bookingID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket retrieved successfully", ticket, nil)
}

func (ctrl *controller) DownloadTicket(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authenticated", nil, nil)
		return
	}

	pdf, fileName, err := ctrl.service.DownloadTicketPDF(c.Request.Context(), principal, bookingID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (ctrl *controller) ValidateTicket(c *gin.Context) {
	number := c.Param("ticketNumber")
	if number == "" {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Ticket number is required", nil, nil)
		return
	}

	ticket, err := ctrl.service.ValidateTicket(c.Request.Context(), number)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket validated successfully", ticket, nil)
}
