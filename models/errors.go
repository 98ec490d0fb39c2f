package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimeRange is matched by every malformed time slot.
	ErrInvalidTimeRange = errors.New("invalid time range")
	// ErrInvalidBooking is returned for booking requests that can never be accepted.
	ErrInvalidBooking = errors.New("invalid booking request")
	// ErrSlotUnavailable is matched by every booking conflict.
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrOverlappingSlots is returned in strict mode when a day's slots overlap.
	ErrOverlappingSlots = errors.New("overlapping time slots")
	// ErrInvalidExceptionKind is returned for an unknown exception type.
	ErrInvalidExceptionKind = errors.New("invalid exception kind")
)

// TimeRangeError describes a time slot whose end is not strictly after its start,
// or whose fields fall outside a single day.
type TimeRangeError struct {
	Code    string
	Message string
}

func (e *TimeRangeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *TimeRangeError) Unwrap() error { return ErrInvalidTimeRange }

func newTimeRangeError(format string, args ...interface{}) error {
	return &TimeRangeError{
		Code:    "invalidTimeRange",
		Message: fmt.Sprintf(format, args...),
	}
}

// UnavailableReason names why a booking was rejected.
type UnavailableReason string

const (
	ReasonNoAvailability   UnavailableReason = "noAvailability"
	ReasonOutsideHours     UnavailableReason = "outsideAvailability"
	ReasonOverlapsBooking  UnavailableReason = "overlapsBooking"
	ReasonDuplicateRequest UnavailableReason = "duplicateRequest"
)

// SlotUnavailableError is returned when a booking conflicts with the provider's
// availability or with an accepted appointment. Conflict is set for overlaps.
type SlotUnavailableError struct {
	Reason   UnavailableReason
	Message  string
	Conflict *Interval
}

func (e *SlotUnavailableError) Error() string {
	if e.Conflict != nil {
		return fmt.Sprintf("%s: %s (conflicts with %s)", e.Reason, e.Message, e.Conflict)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *SlotUnavailableError) Unwrap() error { return ErrSlotUnavailable }
