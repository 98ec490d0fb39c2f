package handlers

import (
	"errors"
	"net/http"

	providerRepo "solvit/database/repository/provider"
	"solvit/models"
	"solvit/services/schedule"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var validation *schedule.ValidationError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, models.ErrInvalidTimeRange),
		errors.Is(err, models.ErrInvalidBooking),
		errors.Is(err, models.ErrOverlappingSlots),
		errors.Is(err, models.ErrInvalidExceptionKind):
		return http.StatusBadRequest
	case errors.Is(err, providerRepo.ErrProviderNotFound),
		errors.Is(err, schedule.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrSlotUnavailable),
		errors.Is(err, providerRepo.ErrVersionConflict),
		errors.Is(err, providerRepo.ErrProviderExists),
		errors.Is(err, schedule.ErrLockTimeout):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err in the handlers' {"error", "message"} shape. summary
// is the human-readable failure shown as "error".
func respondError(c *gin.Context, summary string, err error) {
	logger := getLogger(c)
	status := statusFor(err)

	body := gin.H{"error": summary, "message": err.Error()}
	var unavailable *models.SlotUnavailableError
	if errors.As(err, &unavailable) {
		body["reason"] = unavailable.Reason
		if unavailable.Conflict != nil {
			body["conflict"] = unavailable.Conflict
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error(summary, zap.Error(err))
	} else {
		logger.Info(summary, zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, body)
}
