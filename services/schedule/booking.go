package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	providerRepo "solvit/database/repository/provider"
	"solvit/models"
	"solvit/services/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func lockKey(providerID string) string {
	return "schedule:booking-lock:" + providerID
}

// Book accepts req if it fits the provider's availability and overlaps no
// accepted appointment. Bookings of one provider are serialized by the
// booking lock and the write is conditional on the schedule version that was
// checked.
func (s *DefaultScheduleService) Book(ctx context.Context, providerID string, req models.BookingRequest) (*Result, error) {
	req.RequestID = strings.TrimSpace(req.RequestID)
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = s.opts.DefaultBookingMinutes
	}
	req.StartTime = req.StartTime.In(s.opts.Location)
	if _, err := models.NewAcceptedTimeSlot(req.RequestID, req.StartTime, req.DurationMinutes); err != nil {
		return nil, newValidationError(err)
	}

	var booked models.AcceptedTimeSlot
	prov, err := s.writeLocked(ctx, providerID, "booking.accept", func(sch models.Schedule) (models.Schedule, bool, error) {
		next, slot, err := sch.Book(req)
		if err != nil {
			return sch, false, err
		}
		booked = slot
		return next, true, nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, prov, events.NewEvent(events.TypeBookingAccepted, prov.ID, booked))
	return &Result{
		Provider: prov,
		Booking:  &booked,
		Message:  fmt.Sprintf("Booking %s accepted for %s", booked.RequestID(), booked.Interval()),
	}, nil
}

// ReleaseBooking removes the appointment held by requestID, for example when
// it is cancelled or completed.
func (s *DefaultScheduleService) ReleaseBooking(ctx context.Context, providerID, requestID string) (*Result, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, newValidationError(fmt.Errorf("%w: request id is required", models.ErrInvalidBooking))
	}

	var released models.AcceptedTimeSlot
	prov, err := s.writeLocked(ctx, providerID, "booking.release", func(sch models.Schedule) (models.Schedule, bool, error) {
		slot, ok := sch.AcceptedFor(requestID)
		if !ok {
			return sch, false, fmt.Errorf("request %s: %w", requestID, ErrBookingNotFound)
		}
		released = slot
		next, _ := sch.WithoutAcceptedTimeSlot(requestID)
		return next, true, nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, prov, events.NewEvent(events.TypeBookingReleased, prov.ID, released))
	return &Result{
		Provider: prov,
		Booking:  &released,
		Message:  fmt.Sprintf("Booking %s released", requestID),
	}, nil
}

// PruneElapsed drops accepted appointments of the provider that ended before
// cutoff and returns how many were removed.
func (s *DefaultScheduleService) PruneElapsed(ctx context.Context, providerID string, cutoff time.Time) (int, error) {
	removed := 0
	prov, err := s.writeLocked(ctx, providerID, "booking.prune", func(sch models.Schedule) (models.Schedule, bool, error) {
		next, n := sch.PruneAcceptedBefore(cutoff)
		removed = n
		return next, n > 0, nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.afterWrite(ctx, prov, events.NewEvent(events.TypeScheduleUpdated, prov.ID, map[string]interface{}{
			"change":          "booking.prune",
			"removed":         removed,
			"scheduleVersion": prov.ScheduleVersion,
		}))
	}
	return removed, nil
}

// writeLocked holds the provider's booking lock while it applies change
// through writeVersioned.
func (s *DefaultScheduleService) writeLocked(
	ctx context.Context,
	providerID, change string,
	apply func(models.Schedule) (models.Schedule, bool, error),
) (*models.Provider, error) {
	release, err := s.Locker.Acquire(ctx, lockKey(providerID))
	if err != nil {
		s.Logger.Warn("Failed to acquire booking lock",
			zap.String("providerID", providerID), zap.String("change", change), zap.Error(err))
		return nil, err
	}
	defer release()

	prov, _, err := s.writeVersioned(ctx, providerID, change, apply)
	return prov, err
}

// writeVersioned applies change to the stored schedule and writes the result
// conditionally on the version it read. A version conflict means another
// writer got in between; change is re-applied to the fresh copy up to
// MaxRetries times, so nothing that writer stored is lost. change reports
// false when there is nothing to write, and so does the returned bool.
func (s *DefaultScheduleService) writeVersioned(
	ctx context.Context,
	providerID, change string,
	apply func(models.Schedule) (models.Schedule, bool, error),
) (*models.Provider, bool, error) {
	logger := s.Logger.With(zap.String("providerID", providerID), zap.String("change", change))

	for attempt := 0; ; attempt++ {
		prov, err := s.Repo.GetByID(ctx, providerID)
		if err != nil {
			return nil, false, err
		}

		next, changed, err := apply(prov.Schedule)
		if err != nil {
			logger.Info("Schedule change rejected", zap.Error(err))
			return nil, false, err
		}
		if !changed {
			return prov, false, nil
		}

		expected := prov.ScheduleVersion
		prov.Schedule = next
		prov.UpdatedAt = s.now()
		err = s.Repo.UpdateIfVersion(ctx, prov, expected)
		if err == nil {
			logger.Info("Schedule updated", zap.Int("scheduleVersion", prov.ScheduleVersion))
			return prov, true, nil
		}
		if !errors.Is(err, providerRepo.ErrVersionConflict) {
			logger.Error("Failed to persist schedule", zap.Error(err))
			return nil, false, fmt.Errorf("failed to update schedule: %w", err)
		}
		if attempt >= s.opts.MaxRetries {
			logger.Warn("Giving up after version conflicts", zap.Int("attempts", attempt+1))
			return nil, false, err
		}
		logger.Debug("Version conflict, retrying", zap.Int("attempt", attempt+1), zap.Int("expected", expected))
	}
}
