package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	RegisterProviderHandler gin.HandlerFunc

	// Schedule queries
	GetScheduleHandler    gin.HandlerFunc
	StreamScheduleHandler gin.HandlerFunc
	AvailabilityHandler   gin.HandlerFunc
	SlotsHandler          gin.HandlerFunc

	// Schedule editor (provider only)
	SetRegularHoursHandler   gin.HandlerFunc
	ClearRegularHoursHandler gin.HandlerFunc
	PutExceptionHandler      gin.HandlerFunc
	DeleteExceptionHandler   gin.HandlerFunc

	// Booking endpoints
	BookHandler           gin.HandlerFunc
	ReleaseBookingHandler gin.HandlerFunc

	// Health
	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires the schedule and booking handlers.
func NewHandlerBundle(sh *ScheduleHandler, bh *BookingHandler, health gin.HandlerFunc) *HandlerBundle {
	return &HandlerBundle{
		RegisterProviderHandler:  sh.RegisterProviderHandler,
		GetScheduleHandler:       sh.GetScheduleHandler,
		StreamScheduleHandler:    sh.StreamScheduleHandler,
		AvailabilityHandler:      sh.AvailabilityHandler,
		SlotsHandler:             sh.SlotsHandler,
		SetRegularHoursHandler:   sh.SetRegularHoursHandler,
		ClearRegularHoursHandler: sh.ClearRegularHoursHandler,
		PutExceptionHandler:      sh.PutExceptionHandler,
		DeleteExceptionHandler:   sh.DeleteExceptionHandler,
		BookHandler:              bh.BookHandler,
		ReleaseBookingHandler:    bh.ReleaseBookingHandler,
		HealthHandler:            health,
	}
}
