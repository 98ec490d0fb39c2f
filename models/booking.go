package models

import (
	"fmt"
	"time"
)

// BookingRequest is a seeker's attempt to reserve part of a provider's day.
type BookingRequest struct {
	RequestID       string    `json:"requestId"`
	StartTime       time.Time `json:"startTime" binding:"required"`
	DurationMinutes int       `json:"durationMinutes"`
}

// CheckBooking decides whether req can be accepted against the schedule. The
// requested interval must fit wholly inside one of the date's available
// windows and must not overlap an accepted appointment of that date.
func (s Schedule) CheckBooking(req BookingRequest) (AcceptedTimeSlot, error) {
	slot, err := NewAcceptedTimeSlot(req.RequestID, req.StartTime, req.DurationMinutes)
	if err != nil {
		return AcceptedTimeSlot{}, err
	}

	date := slot.Date()
	from := offsetInDay(slot.StartTime())
	to := from + slot.Duration()
	if to > 24*time.Hour {
		return AcceptedTimeSlot{}, fmt.Errorf("%w: appointment on %s must end by midnight", ErrInvalidBooking, date)
	}

	if _, exists := s.AcceptedFor(slot.RequestID()); exists {
		return AcceptedTimeSlot{}, &SlotUnavailableError{
			Reason:  ReasonDuplicateRequest,
			Message: fmt.Sprintf("request %s already holds an appointment", slot.RequestID()),
		}
	}

	windows := s.AvailableSlots(date)
	if len(windows) == 0 {
		return AcceptedTimeSlot{}, &SlotUnavailableError{
			Reason:  ReasonNoAvailability,
			Message: fmt.Sprintf("provider has no availability on %s", date),
		}
	}
	if !anyCovers(windows, from, to) {
		return AcceptedTimeSlot{}, &SlotUnavailableError{
			Reason: ReasonOutsideHours,
			Message: fmt.Sprintf("%s-%s on %s is outside the provider's availability",
				clockOf(from), clockOf(to), date),
		}
	}

	wanted := slot.Interval()
	for _, existing := range s.AcceptedOn(date) {
		if existing.Interval().Overlaps(wanted) {
			conflict := existing.Interval()
			return AcceptedTimeSlot{}, &SlotUnavailableError{
				Reason:   ReasonOverlapsBooking,
				Message:  fmt.Sprintf("requested time overlaps request %s", existing.RequestID()),
				Conflict: &conflict,
			}
		}
	}
	return slot, nil
}

// Book checks req and returns the schedule with the new appointment appended.
func (s Schedule) Book(req BookingRequest) (Schedule, AcceptedTimeSlot, error) {
	slot, err := s.CheckBooking(req)
	if err != nil {
		return s, AcceptedTimeSlot{}, err
	}
	return s.WithAcceptedTimeSlot(slot), slot, nil
}

func anyCovers(windows []TimeSlot, from, to time.Duration) bool {
	for _, w := range windows {
		if w.Covers(from, to) {
			return true
		}
	}
	return false
}

func clockOf(offset time.Duration) string {
	return Clock(int(offset/time.Hour), int(offset%time.Hour/time.Minute)).String()
}
