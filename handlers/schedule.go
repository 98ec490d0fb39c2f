package handlers

import (
	"io"
	"net/http"
	"time"

	"solvit/models"
	"solvit/services/schedule"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ScheduleHandler struct {
	Service schedule.Service
}

func NewScheduleHandler(svc schedule.Service) *ScheduleHandler {
	return &ScheduleHandler{Service: svc}
}

type slotsRequest struct {
	TimeSlots []models.TimeSlot `json:"timeSlots"`
}

type exceptionRequest struct {
	Kind      string            `json:"kind" binding:"required"`
	TimeSlots []models.TimeSlot `json:"timeSlots"`
}

// RegisterProviderHandler creates the caller's provider record with an empty
// schedule. The profile body is optional.
func (h *ScheduleHandler) RegisterProviderHandler(c *gin.Context) {
	var profile models.Profile
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&profile); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
			return
		}
	}

	prov, err := h.Service.RegisterProvider(c.Request.Context(), c.Param("id"), profile)
	if err != nil {
		respondError(c, "Failed to register provider", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Provider registered", "provider": prov})
}

func (h *ScheduleHandler) GetScheduleHandler(c *gin.Context) {
	prov, err := h.Service.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to fetch schedule", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"providerId":      prov.ID,
		"scheduleVersion": prov.ScheduleVersion,
		"schedule":        prov.Schedule,
	})
}

// StreamScheduleHandler sends the provider's schedule as server-sent events:
// the current state first, then every change until the client goes away.
func (h *ScheduleHandler) StreamScheduleHandler(c *gin.Context) {
	providerID := c.Param("id")
	updates, cancel := h.Service.Subscribe(providerID)
	defer cancel()

	prov, err := h.Service.GetSchedule(c.Request.Context(), providerID)
	if err != nil {
		respondError(c, "Failed to fetch schedule", err)
		return
	}

	getLogger(c).Debug("Schedule stream opened", zap.String("providerID", providerID))
	c.SSEvent("schedule", prov)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case p, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("schedule", p)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *ScheduleHandler) AvailabilityHandler(c *gin.Context) {
	raw := c.Query("at")
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid 'at' query parameter", "message": "expected an RFC3339 timestamp"})
		return
	}

	available, err := h.Service.IsAvailable(c.Request.Context(), c.Param("id"), at)
	if err != nil {
		respondError(c, "Failed to resolve availability", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"at": at, "available": available})
}

// SlotsHandler returns the date's available windows and what is left of them
// after accepted appointments.
func (h *ScheduleHandler) SlotsHandler(c *gin.Context) {
	date, err := models.ParseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid 'date' query parameter", "message": err.Error()})
		return
	}
	ctx := c.Request.Context()
	providerID := c.Param("id")

	slots, err := h.Service.AvailableSlots(ctx, providerID, date)
	if err != nil {
		respondError(c, "Failed to fetch slots", err)
		return
	}
	free, err := h.Service.FreeIntervals(ctx, providerID, date)
	if err != nil {
		respondError(c, "Failed to fetch slots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "availableSlots": slots, "freeIntervals": free})
}

func (h *ScheduleHandler) SetRegularHoursHandler(c *gin.Context) {
	day, err := models.ParseDay(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid day", "message": err.Error()})
		return
	}
	var req slotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	res, err := h.Service.SetRegularHours(c.Request.Context(), c.Param("id"), day, req.TimeSlots)
	if err != nil {
		respondError(c, "Failed to update regular hours", err)
		return
	}
	respondResult(c, res)
}

func (h *ScheduleHandler) ClearRegularHoursHandler(c *gin.Context) {
	day, err := models.ParseDay(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid day", "message": err.Error()})
		return
	}

	res, err := h.Service.ClearRegularHours(c.Request.Context(), c.Param("id"), day)
	if err != nil {
		respondError(c, "Failed to clear regular hours", err)
		return
	}
	respondResult(c, res)
}

func (h *ScheduleHandler) PutExceptionHandler(c *gin.Context) {
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date", "message": err.Error()})
		return
	}
	var req exceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}
	kind, err := models.ParseExceptionKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid exception kind", "message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	providerID := c.Param("id")
	var res *schedule.Result
	if kind == models.OffTime {
		res, err = h.Service.AddOffTimeException(ctx, providerID, date, req.TimeSlots)
	} else {
		res, err = h.Service.AddExtraTimeException(ctx, providerID, date, req.TimeSlots)
	}
	if err != nil {
		respondError(c, "Failed to save exception", err)
		return
	}
	respondResult(c, res)
}

func (h *ScheduleHandler) DeleteExceptionHandler(c *gin.Context) {
	date, err := models.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date", "message": err.Error()})
		return
	}

	res, err := h.Service.DeleteException(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		respondError(c, "Failed to delete exception", err)
		return
	}
	respondResult(c, res)
}

func respondResult(c *gin.Context, res *schedule.Result) {
	body := gin.H{
		"message":         res.Message,
		"providerId":      res.Provider.ID,
		"scheduleVersion": res.Provider.ScheduleVersion,
		"schedule":        res.Provider.Schedule,
	}
	if res.Booking != nil {
		body["booking"] = res.Booking
	}
	c.JSON(http.StatusOK, body)
}
