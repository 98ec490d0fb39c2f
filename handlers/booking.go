package handlers

import (
	"net/http"

	"solvit/models"
	"solvit/services/schedule"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Service schedule.Service
}

func NewBookingHandler(svc schedule.Service) *BookingHandler {
	return &BookingHandler{Service: svc}
}

// BookHandler accepts an appointment when it fits the provider's availability.
func (h *BookingHandler) BookHandler(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	res, err := h.Service.Book(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "Booking rejected", err)
		return
	}
	getLogger(c).Info("Booking accepted",
		zap.String("providerID", res.Provider.ID),
		zap.String("requestID", res.Booking.RequestID()))

	c.JSON(http.StatusCreated, gin.H{
		"message":         res.Message,
		"providerId":      res.Provider.ID,
		"scheduleVersion": res.Provider.ScheduleVersion,
		"booking":         res.Booking,
	})
}

func (h *BookingHandler) ReleaseBookingHandler(c *gin.Context) {
	res, err := h.Service.ReleaseBooking(c.Request.Context(), c.Param("id"), c.Param("requestId"))
	if err != nil {
		respondError(c, "Failed to release booking", err)
		return
	}
	respondResult(c, res)
}
