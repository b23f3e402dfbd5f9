package response

import (
	"errors"
	"net/http"

	"busline/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errs interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errs,
	})
}

// RespondError maps a service error onto the HTTP status it deserves.
// Seat conflicts additionally report the conflicting seat numbers so the
// client can re-offer seat selection.
func RespondError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	var details interface{}

	var seatConflict apperrors.SeatConflictError
	switch {
	case apperrors.IsNotFound(err):
		code = http.StatusNotFound
	case apperrors.IsValidation(err):
		code = http.StatusBadRequest
	case apperrors.IsInvalidState(err):
		code = http.StatusUnprocessableEntity
	case errors.As(err, &seatConflict):
		code = http.StatusConflict
		details = gin.H{"conflicting_seats": seatConflict.Seats}
	case apperrors.IsCapacityConflict(err):
		code = http.StatusConflict
	case apperrors.IsForbidden(err):
		code = http.StatusForbidden
	}

	RespondJSON(c, "error", code, err.Error(), nil, details)
}
