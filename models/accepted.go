package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultBookingMinutes is the duration of an appointment when none is given.
const DefaultBookingMinutes = 60

// Interval is a half-open span of absolute time [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps uses half-open semantics: [a,b) and [c,d) overlap iff a < d && c < b.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}

// AcceptedTimeSlot is a confirmed appointment consuming part of a provider's day.
type AcceptedTimeSlot struct {
	requestID       string
	start           time.Time
	durationMinutes int
}

// NewAcceptedTimeSlot builds an appointment. A zero duration means
// DefaultBookingMinutes; negative durations and empty request ids are rejected.
func NewAcceptedTimeSlot(requestID string, start time.Time, durationMinutes int) (AcceptedTimeSlot, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return AcceptedTimeSlot{}, fmt.Errorf("%w: request id is required", ErrInvalidBooking)
	}
	if start.IsZero() {
		return AcceptedTimeSlot{}, fmt.Errorf("%w: start time is required", ErrInvalidBooking)
	}
	if durationMinutes < 0 {
		return AcceptedTimeSlot{}, fmt.Errorf("%w: duration must be positive, got %d minutes", ErrInvalidBooking, durationMinutes)
	}
	if durationMinutes == 0 {
		durationMinutes = DefaultBookingMinutes
	}
	return AcceptedTimeSlot{requestID: requestID, start: start, durationMinutes: durationMinutes}, nil
}

func (a AcceptedTimeSlot) RequestID() string       { return a.requestID }
func (a AcceptedTimeSlot) StartTime() time.Time    { return a.start }
func (a AcceptedTimeSlot) DurationMinutes() int    { return a.durationMinutes }
func (a AcceptedTimeSlot) Duration() time.Duration { return time.Duration(a.durationMinutes) * time.Minute }
func (a AcceptedTimeSlot) EndTime() time.Time      { return a.start.Add(a.Duration()) }

// Date is the calendar date the appointment starts on.
func (a AcceptedTimeSlot) Date() Date { return DateOf(a.start) }

func (a AcceptedTimeSlot) Interval() Interval {
	return Interval{Start: a.start, End: a.EndTime()}
}

type acceptedTimeSlotJSON struct {
	RequestID string    `json:"requestId"`
	StartTime time.Time `json:"startTime"`
	Duration  int       `json:"duration"`
}

func (a AcceptedTimeSlot) MarshalJSON() ([]byte, error) {
	return json.Marshal(acceptedTimeSlotJSON{
		RequestID: a.requestID,
		StartTime: a.start,
		Duration:  a.durationMinutes,
	})
}
