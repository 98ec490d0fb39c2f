package models

import (
	"sort"
	"time"
)

// AvailableSlots returns the windows in which the provider works on date.
// An exception for the date wins outright, whatever its kind; otherwise the
// weekday's regular hours apply. The result is never nil.
func (s Schedule) AvailableSlots(date Date) []TimeSlot {
	if ex, ok := s.ExceptionFor(date); ok {
		return ex.TimeSlots()
	}
	slots, ok := s.regularHours[date.Weekday()]
	if !ok {
		return []TimeSlot{}
	}
	return copySlots(slots)
}

// IsAvailable reports whether the provider is bookable at the given instant.
// The wall-clock time must fall strictly inside one of the date's slots, so
// the exact start and end of a slot are not available.
func (s Schedule) IsAvailable(at time.Time) bool {
	offset := offsetInDay(at)
	for _, slot := range s.AvailableSlots(DateOf(at)) {
		if slot.Contains(offset) {
			return true
		}
	}
	return false
}

// FreeIntervals returns the parts of the date's available windows that no
// accepted appointment occupies, in loc, earliest first. Windows are placed
// by wall clock, the same way bookings are checked.
func (s Schedule) FreeIntervals(date Date, loc *time.Location) []Interval {
	var busy []Interval
	for _, a := range s.AcceptedOn(date) {
		busy = append(busy, a.Interval())
	}

	free := []Interval{}
	for _, slot := range sortedSlots(s.AvailableSlots(date)) {
		window := Interval{Start: date.At(slot.Start(), loc), End: date.At(slot.End(), loc)}
		free = append(free, subtract(window, busy)...)
	}
	sort.SliceStable(free, func(i, j int) bool { return free[i].Start.Before(free[j].Start) })
	return free
}

// subtract removes every busy interval from window. busy must be sorted by start.
func subtract(window Interval, busy []Interval) []Interval {
	var out []Interval
	cursor := window.Start
	for _, b := range busy {
		if !b.Overlaps(Interval{Start: cursor, End: window.End}) {
			continue
		}
		if b.Start.After(cursor) {
			out = append(out, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
		if !cursor.Before(window.End) {
			return out
		}
	}
	if cursor.Before(window.End) {
		out = append(out, Interval{Start: cursor, End: window.End})
	}
	return out
}
