package schedule

import (
	"context"
	"fmt"
	"time"

	providerRepo "solvit/database/repository/provider"
	"solvit/models"
	"solvit/services/events"

	"go.uber.org/zap"
)

// Service edits provider schedules and books appointments against them.
type Service interface {
	// RegisterProvider creates the provider record with an empty schedule.
	RegisterProvider(ctx context.Context, providerID string, profile models.Profile) (*models.Provider, error)

	// Queries
	GetSchedule(ctx context.Context, providerID string) (*models.Provider, error)
	IsAvailable(ctx context.Context, providerID string, at time.Time) (bool, error)
	AvailableSlots(ctx context.Context, providerID string, date models.Date) ([]models.TimeSlot, error)
	FreeIntervals(ctx context.Context, providerID string, date models.Date) ([]models.Interval, error)

	// Editor
	SetRegularHours(ctx context.Context, providerID string, day time.Weekday, slots []models.TimeSlot) (*Result, error)
	ClearRegularHours(ctx context.Context, providerID string, day time.Weekday) (*Result, error)
	AddOffTimeException(ctx context.Context, providerID string, date models.Date, slots []models.TimeSlot) (*Result, error)
	AddExtraTimeException(ctx context.Context, providerID string, date models.Date, slots []models.TimeSlot) (*Result, error)
	DeleteException(ctx context.Context, providerID string, date models.Date) (*Result, error)

	// Bookings
	Book(ctx context.Context, providerID string, req models.BookingRequest) (*Result, error)
	ReleaseBooking(ctx context.Context, providerID, requestID string) (*Result, error)
	PruneElapsed(ctx context.Context, providerID string, cutoff time.Time) (int, error)

	// Subscribe streams the provider after every successful write.
	Subscribe(providerID string) (<-chan *models.Provider, func())
}

// Result is the outcome of a successful write.
type Result struct {
	Provider *models.Provider
	Booking  *models.AcceptedTimeSlot
	Message  string
}

type Options struct {
	RejectOverlaps        bool
	MaxRetries            int
	DefaultBookingMinutes int
	Location              *time.Location
	Now                   func() time.Time
}

// DefaultScheduleService is the production implementation.
type DefaultScheduleService struct {
	Repo   providerRepo.ProviderRepository
	Locker BookingLocker
	Events events.Publisher
	Feed   *ProviderFeed
	Logger *zap.Logger
	opts   Options
}

func NewDefaultScheduleService(
	repo providerRepo.ProviderRepository,
	locker BookingLocker,
	publisher events.Publisher,
	logger *zap.Logger,
	opts Options,
) (*DefaultScheduleService, error) {
	if repo == nil || locker == nil || publisher == nil || logger == nil {
		return nil, fmt.Errorf("schedule service initialization error: one or more dependencies are nil")
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.DefaultBookingMinutes <= 0 {
		opts.DefaultBookingMinutes = models.DefaultBookingMinutes
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &DefaultScheduleService{
		Repo:   repo,
		Locker: locker,
		Events: publisher,
		Feed:   NewProviderFeed(),
		Logger: logger,
		opts:   opts,
	}, nil
}

func (s *DefaultScheduleService) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

func (s *DefaultScheduleService) Subscribe(providerID string) (<-chan *models.Provider, func()) {
	return s.Feed.Subscribe(providerID)
}

// afterWrite fans the stored provider out to subscribers and Kafka. Event
// delivery is best effort; the write has already happened.
func (s *DefaultScheduleService) afterWrite(ctx context.Context, prov *models.Provider, ev events.Event) {
	s.Feed.Publish(prov.Clone())
	if err := s.Events.Publish(ctx, ev); err != nil {
		s.Logger.Error("Failed to publish schedule event",
			zap.String("providerID", prov.ID), zap.String("eventType", ev.Type), zap.Error(err))
	}
}
