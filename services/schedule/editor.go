package schedule

import (
	"context"
	"fmt"
	"time"

	"solvit/models"
	"solvit/services/events"

	"go.uber.org/zap"
)

func (s *DefaultScheduleService) RegisterProvider(ctx context.Context, providerID string, profile models.Profile) (*models.Provider, error) {
	if providerID == "" {
		return nil, newValidationError(fmt.Errorf("provider id is required"))
	}
	prov := models.NewProvider(providerID, profile, s.now())
	if err := s.Repo.Create(ctx, prov); err != nil {
		return nil, err
	}
	s.Logger.Info("Provider registered", zap.String("providerID", providerID))
	return prov, nil
}

func (s *DefaultScheduleService) GetSchedule(ctx context.Context, providerID string) (*models.Provider, error) {
	return s.Repo.GetByID(ctx, providerID)
}

func (s *DefaultScheduleService) IsAvailable(ctx context.Context, providerID string, at time.Time) (bool, error) {
	prov, err := s.Repo.GetByID(ctx, providerID)
	if err != nil {
		return false, err
	}
	return prov.Schedule.IsAvailable(at.In(s.opts.Location)), nil
}

func (s *DefaultScheduleService) AvailableSlots(ctx context.Context, providerID string, date models.Date) ([]models.TimeSlot, error) {
	prov, err := s.Repo.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return prov.Schedule.AvailableSlots(date), nil
}

func (s *DefaultScheduleService) FreeIntervals(ctx context.Context, providerID string, date models.Date) ([]models.Interval, error) {
	prov, err := s.Repo.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return prov.Schedule.FreeIntervals(date, s.opts.Location), nil
}

// SetRegularHours replaces the weekly hours of day.
func (s *DefaultScheduleService) SetRegularHours(ctx context.Context, providerID string, day time.Weekday, slots []models.TimeSlot) (*Result, error) {
	if err := s.validate(slots); err != nil {
		return nil, err
	}
	prov, err := s.edit(ctx, providerID, "regularHours.set", func(sch models.Schedule) (models.Schedule, bool) {
		return sch.WithRegularHours(day, slots), true
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Provider: prov,
		Message:  fmt.Sprintf("Regular hours for %s updated", models.DayName(day)),
	}, nil
}

// ClearRegularHours removes day from the weekly hours entirely.
func (s *DefaultScheduleService) ClearRegularHours(ctx context.Context, providerID string, day time.Weekday) (*Result, error) {
	prov, err := s.edit(ctx, providerID, "regularHours.clear", func(sch models.Schedule) (models.Schedule, bool) {
		return sch.WithoutRegularHours(day), true
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Provider: prov,
		Message:  fmt.Sprintf("Regular hours for %s cleared", models.DayName(day)),
	}, nil
}

func (s *DefaultScheduleService) AddOffTimeException(ctx context.Context, providerID string, date models.Date, slots []models.TimeSlot) (*Result, error) {
	return s.addException(ctx, providerID, date, models.OffTime, slots)
}

func (s *DefaultScheduleService) AddExtraTimeException(ctx context.Context, providerID string, date models.Date, slots []models.TimeSlot) (*Result, error) {
	return s.addException(ctx, providerID, date, models.ExtraTime, slots)
}

// addException upserts the exception for date; an earlier one for the same
// date is replaced.
func (s *DefaultScheduleService) addException(ctx context.Context, providerID string, date models.Date, kind models.ExceptionKind, slots []models.TimeSlot) (*Result, error) {
	if err := s.validate(slots); err != nil {
		return nil, err
	}
	ex, err := models.NewScheduleException(date, kind, slots)
	if err != nil {
		return nil, newValidationError(err)
	}

	replaced := false
	prov, err := s.edit(ctx, providerID, "exception.upsert", func(sch models.Schedule) (models.Schedule, bool) {
		_, replaced = sch.ExceptionFor(date)
		return sch.WithException(ex), true
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%s added for %s", kind.Label(), date)
	if replaced {
		msg = fmt.Sprintf("%s for %s replaced the previous exception", kind.Label(), date)
	}
	return &Result{Provider: prov, Message: msg}, nil
}

// DeleteException removes the exception for date. Deleting a date without an
// exception still succeeds.
func (s *DefaultScheduleService) DeleteException(ctx context.Context, providerID string, date models.Date) (*Result, error) {
	removed := false
	prov, err := s.edit(ctx, providerID, "exception.delete", func(sch models.Schedule) (models.Schedule, bool) {
		var next models.Schedule
		next, removed = sch.WithoutException(date)
		return next, removed
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Exception for %s removed", date)
	if !removed {
		msg = fmt.Sprintf("No exception registered for %s", date)
	}
	return &Result{Provider: prov, Message: msg}, nil
}

func (s *DefaultScheduleService) validate(slots []models.TimeSlot) error {
	if err := models.ValidateSlots(slots, s.opts.RejectOverlaps); err != nil {
		return newValidationError(err)
	}
	return nil
}

// edit rewrites the provider's schedule with apply. Editors do not take the
// booking lock, but the write is version checked like a booking: on a
// conflict apply runs again on the fresh document, so the edited fields end
// up last-write-wins while bookings stored in between are kept.
func (s *DefaultScheduleService) edit(ctx context.Context, providerID, change string, apply func(models.Schedule) (models.Schedule, bool)) (*models.Provider, error) {
	prov, written, err := s.writeVersioned(ctx, providerID, change, func(sch models.Schedule) (models.Schedule, bool, error) {
		next, changed := apply(sch)
		return next, changed, nil
	})
	if err != nil {
		return nil, err
	}
	if !written {
		return prov, nil
	}

	s.afterWrite(ctx, prov, events.NewEvent(events.TypeScheduleUpdated, prov.ID, map[string]interface{}{
		"change":          change,
		"scheduleVersion": prov.ScheduleVersion,
		"schedule":        prov.Schedule,
	}))
	return prov, nil
}
