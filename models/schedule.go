package models

import (
	"encoding/json"
	"sort"
	"time"
)

// Schedule is a provider's availability: weekly regular hours, per-date
// exceptions and accepted appointments. It is an immutable value; the With*
// helpers return a modified copy and never touch the receiver.
type Schedule struct {
	regularHours map[time.Weekday][]TimeSlot
	exceptions   []ScheduleException
	accepted     []AcceptedTimeSlot
}

// EmptySchedule is the schedule a provider starts with.
func EmptySchedule() Schedule {
	return Schedule{regularHours: map[time.Weekday][]TimeSlot{}}
}

// NewSchedule copies its inputs. When several exceptions share a date the
// last one wins, so the result holds at most one exception per date.
func NewSchedule(regular map[time.Weekday][]TimeSlot, exceptions []ScheduleException, accepted []AcceptedTimeSlot) Schedule {
	s := EmptySchedule()
	for day, slots := range regular {
		s.regularHours[day] = copySlots(slots)
	}
	for _, ex := range exceptions {
		s.exceptions = upsertException(s.exceptions, ex)
	}
	s.accepted = append([]AcceptedTimeSlot(nil), accepted...)
	return s
}

func (s Schedule) clone() Schedule {
	out := Schedule{
		regularHours: make(map[time.Weekday][]TimeSlot, len(s.regularHours)),
		exceptions:   append([]ScheduleException(nil), s.exceptions...),
		accepted:     append([]AcceptedTimeSlot(nil), s.accepted...),
	}
	for day, slots := range s.regularHours {
		out.regularHours[day] = copySlots(slots)
	}
	return out
}

// RegularHours returns a copy of the weekly hours.
func (s Schedule) RegularHours() map[time.Weekday][]TimeSlot {
	return s.clone().regularHours
}

// HoursFor returns the day's regular slots and whether the day has an entry.
func (s Schedule) HoursFor(day time.Weekday) ([]TimeSlot, bool) {
	slots, ok := s.regularHours[day]
	if !ok {
		return nil, false
	}
	return copySlots(slots), true
}

// Exceptions returns the exceptions ordered by date.
func (s Schedule) Exceptions() []ScheduleException {
	out := append([]ScheduleException(nil), s.exceptions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].date.Before(out[j].date) })
	return out
}

// ExceptionFor returns the exception registered for date, if any.
func (s Schedule) ExceptionFor(date Date) (ScheduleException, bool) {
	for _, ex := range s.exceptions {
		if ex.date == date {
			return ex, true
		}
	}
	return ScheduleException{}, false
}

func (s Schedule) AcceptedTimeSlots() []AcceptedTimeSlot {
	return append([]AcceptedTimeSlot(nil), s.accepted...)
}

// AcceptedOn returns the appointments starting on date, earliest first.
func (s Schedule) AcceptedOn(date Date) []AcceptedTimeSlot {
	var out []AcceptedTimeSlot
	for _, a := range s.accepted {
		if a.Date() == date {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].start.Before(out[j].start) })
	return out
}

// AcceptedFor looks up an appointment by its request id.
func (s Schedule) AcceptedFor(requestID string) (AcceptedTimeSlot, bool) {
	for _, a := range s.accepted {
		if a.requestID == requestID {
			return a, true
		}
	}
	return AcceptedTimeSlot{}, false
}

// WithRegularHours replaces the whole slot list of day.
func (s Schedule) WithRegularHours(day time.Weekday, slots []TimeSlot) Schedule {
	out := s.clone()
	out.regularHours[day] = copySlots(slots)
	return out
}

// WithoutRegularHours removes the day's entry; the provider no longer works that weekday.
func (s Schedule) WithoutRegularHours(day time.Weekday) Schedule {
	out := s.clone()
	delete(out.regularHours, day)
	return out
}

// WithException upserts ex by date, replacing any exception for the same date.
func (s Schedule) WithException(ex ScheduleException) Schedule {
	out := s.clone()
	out.exceptions = upsertException(out.exceptions, ex)
	return out
}

// WithoutException removes the exception for date. The bool reports whether one existed.
func (s Schedule) WithoutException(date Date) (Schedule, bool) {
	out := s.clone()
	kept := out.exceptions[:0]
	removed := false
	for _, ex := range out.exceptions {
		if ex.date == date {
			removed = true
			continue
		}
		kept = append(kept, ex)
	}
	out.exceptions = kept
	return out, removed
}

func (s Schedule) WithAcceptedTimeSlot(a AcceptedTimeSlot) Schedule {
	out := s.clone()
	out.accepted = append(out.accepted, a)
	return out
}

// WithoutAcceptedTimeSlot drops the appointment held by requestID.
func (s Schedule) WithoutAcceptedTimeSlot(requestID string) (Schedule, bool) {
	out := s.clone()
	kept := out.accepted[:0]
	removed := false
	for _, a := range out.accepted {
		if a.requestID == requestID {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	out.accepted = kept
	return out, removed
}

// PruneAcceptedBefore drops appointments that ended before cutoff and returns
// how many were removed.
func (s Schedule) PruneAcceptedBefore(cutoff time.Time) (Schedule, int) {
	out := s.clone()
	kept := out.accepted[:0]
	for _, a := range out.accepted {
		if a.EndTime().Before(cutoff) {
			continue
		}
		kept = append(kept, a)
	}
	removed := len(out.accepted) - len(kept)
	out.accepted = kept
	return out, removed
}

func upsertException(list []ScheduleException, ex ScheduleException) []ScheduleException {
	for i := range list {
		if list[i].date == ex.date {
			list[i] = ex
			return list
		}
	}
	return append(list, ex)
}

type scheduleJSON struct {
	RegularHours      map[string][]TimeSlot `json:"regularHours"`
	Exceptions        []ScheduleException   `json:"exceptions"`
	AcceptedTimeSlots []AcceptedTimeSlot    `json:"acceptedTimeSlots"`
}

func (s Schedule) MarshalJSON() ([]byte, error) {
	out := scheduleJSON{
		RegularHours:      make(map[string][]TimeSlot, len(s.regularHours)),
		Exceptions:        s.Exceptions(),
		AcceptedTimeSlots: s.AcceptedTimeSlots(),
	}
	for day, slots := range s.regularHours {
		out.RegularHours[DayName(day)] = copySlots(slots)
	}
	if out.Exceptions == nil {
		out.Exceptions = []ScheduleException{}
	}
	if out.AcceptedTimeSlots == nil {
		out.AcceptedTimeSlots = []AcceptedTimeSlot{}
	}
	return json.Marshal(out)
}
