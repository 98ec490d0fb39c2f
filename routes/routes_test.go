package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	providerRepo "solvit/database/repository/provider"
	"solvit/handlers"
	"solvit/models"
	"solvit/services/events"
	"solvit/services/schedule"
	"solvit/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	repo := providerRepo.NewMemoryProviderRepo()
	p := models.NewProvider("prov-1", models.Profile{ProviderName: "Ada"}, time.Now())
	p.Schedule = p.Schedule.WithRegularHours(time.Monday, []models.TimeSlot{models.MustTimeSlot(9, 0, 17, 0)})
	require.NoError(t, repo.Create(context.Background(), p))

	svc, err := schedule.NewDefaultScheduleService(repo, schedule.NewLocalLocker(), events.NoopPublisher{}, zap.NewNop(), schedule.Options{})
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r, handlers.NewHandlerBundle(
		handlers.NewScheduleHandler(svc),
		handlers.NewBookingHandler(svc),
		handlers.HealthHandler,
	))
	return r
}

func TestReleaseBookingRequiresProviderToken(t *testing.T) {
	r := newRouter(t)

	body := `{"requestId":"req-1","startTime":"2024-12-23T10:00:00Z","durationMinutes":60}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/providers/prov-1/bookings", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	own, err := utils.GenerateToken("prov-1", time.Hour)
	require.NoError(t, err)
	other, err := utils.GenerateToken("prov-2", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "anonymous", want: http.StatusUnauthorized},
		{name: "other provider", token: other, want: http.StatusForbidden},
		{name: "owning provider", token: own, want: http.StatusOK},
		{name: "already released", token: own, want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/providers/prov-1/bookings/req-1", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
