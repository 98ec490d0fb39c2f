package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExceptionKind labels a per-date override. The kind is informational: both
// kinds replace the day's regular hours with the exception's slots.
type ExceptionKind string

const (
	OffTime   ExceptionKind = "OFF_TIME"
	ExtraTime ExceptionKind = "EXTRA_TIME"
)

func ParseExceptionKind(s string) (ExceptionKind, error) {
	switch k := ExceptionKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case OffTime, ExtraTime:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidExceptionKind, s)
}

func (k ExceptionKind) Valid() bool { return k == OffTime || k == ExtraTime }

// Label is the display text for the kind.
func (k ExceptionKind) Label() string {
	switch k {
	case OffTime:
		return "Time off"
	case ExtraTime:
		return "Extra availability"
	}
	return string(k)
}

// ScheduleException overrides a provider's availability for one date.
type ScheduleException struct {
	date  Date
	slots []TimeSlot
	kind  ExceptionKind
}

// NewScheduleException validates kind and every slot. An empty slot list is
// allowed and means the provider is unavailable all day.
func NewScheduleException(date Date, kind ExceptionKind, slots []TimeSlot) (ScheduleException, error) {
	if date.IsZero() {
		return ScheduleException{}, fmt.Errorf("exception date is required")
	}
	if !kind.Valid() {
		return ScheduleException{}, fmt.Errorf("%w: %q", ErrInvalidExceptionKind, kind)
	}
	if err := ValidateSlots(slots, false); err != nil {
		return ScheduleException{}, err
	}
	return ScheduleException{date: date, slots: copySlots(slots), kind: kind}, nil
}

func (e ScheduleException) Date() Date            { return e.date }
func (e ScheduleException) Kind() ExceptionKind   { return e.kind }
func (e ScheduleException) TimeSlots() []TimeSlot { return copySlots(e.slots) }

type scheduleExceptionJSON struct {
	Date      Date          `json:"date"`
	Type      ExceptionKind `json:"type"`
	Label     string        `json:"label"`
	TimeSlots []TimeSlot    `json:"timeSlots"`
}

func (e ScheduleException) MarshalJSON() ([]byte, error) {
	return json.Marshal(scheduleExceptionJSON{
		Date:      e.date,
		Type:      e.kind,
		Label:     e.kind.Label(),
		TimeSlots: copySlots(e.slots),
	})
}
