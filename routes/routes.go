package routes

import (
	"time"

	"solvit/handlers"
	"solvit/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterScheduleRoutes registers the schedule queries and the provider-only editor.
func RegisterScheduleRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers/:id")
	{
		// Public queries used by the seeker booking flow.
		api.GET("/schedule", hb.GetScheduleHandler)
		api.GET("/schedule/stream", hb.StreamScheduleHandler)
		api.GET("/availability", hb.AvailabilityHandler)
		api.GET("/slots", hb.SlotsHandler)

		// Editing requires the provider's own token.
		protected := api.Group("")
		protected.Use(middleware.JWTAuthProviderMiddleware())
		protected.POST("", hb.RegisterProviderHandler)
		protected.PUT("/schedule/regular/:day", hb.SetRegularHoursHandler)
		protected.DELETE("/schedule/regular/:day", hb.ClearRegularHoursHandler)
		protected.PUT("/schedule/exceptions/:date", hb.PutExceptionHandler)
		protected.DELETE("/schedule/exceptions/:date", hb.DeleteExceptionHandler)
	}
}

// RegisterBookingRoutes sets up the booking endpoints. Seekers book through
// the public route; releasing an appointment needs the provider's token.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/providers/:id/bookings")
	{
		bookingGroup.POST("", hb.BookHandler)
		bookingGroup.DELETE("/:requestId", middleware.JWTAuthProviderMiddleware(), hb.ReleaseBookingHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterScheduleRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
