package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// TimeOfDay is a wall-clock time within a single day.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Clock builds a TimeOfDay. It does not validate; TimeSlot construction does.
func Clock(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

// ParseTimeOfDay parses "HH:MM" (24h).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	return t, nil
}

// Offset is the time elapsed since midnight.
func (t TimeOfDay) Offset() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
}

func (t TimeOfDay) IsAfter(o TimeOfDay) bool  { return t.Offset() > o.Offset() }
func (t TimeOfDay) IsBefore(o TimeOfDay) bool { return t.Offset() < o.Offset() }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeSlot is an immutable interval of a single day, the atomic unit of
// availability. Build one with NewTimeSlot or TimeSlotBetween; the zero value
// is not a valid slot.
type TimeSlot struct {
	startHour   int
	startMinute int
	endHour     int
	endMinute   int
}

// NewTimeSlot returns the slot [startHour:startMinute, endHour:endMinute).
// It fails with ErrInvalidTimeRange unless the end is strictly after the start.
// Hours run 0..23 and minutes 0..59; 24:00 is accepted as an end of day.
func NewTimeSlot(startHour, startMinute, endHour, endMinute int) (TimeSlot, error) {
	ts := TimeSlot{
		startHour:   startHour,
		startMinute: startMinute,
		endHour:     endHour,
		endMinute:   endMinute,
	}
	if err := ts.Validate(); err != nil {
		return TimeSlot{}, err
	}
	return ts, nil
}

// TimeSlotBetween builds a slot from two times of day.
func TimeSlotBetween(start, end TimeOfDay) (TimeSlot, error) {
	return NewTimeSlot(start.Hour, start.Minute, end.Hour, end.Minute)
}

// MustTimeSlot is NewTimeSlot for literals known to be valid. It panics otherwise.
func MustTimeSlot(startHour, startMinute, endHour, endMinute int) TimeSlot {
	ts, err := NewTimeSlot(startHour, startMinute, endHour, endMinute)
	if err != nil {
		panic(err)
	}
	return ts
}

// Validate reports whether the slot is well formed.
func (ts TimeSlot) Validate() error {
	start, end := ts.StartTime(), ts.EndTime()
	if !validClock(start, false) {
		return newTimeRangeError("start %s is not a valid time of day", start)
	}
	if !validClock(end, true) {
		return newTimeRangeError("end %s is not a valid time of day", end)
	}
	if !end.IsAfter(start) {
		return newTimeRangeError("end %s must be after start %s", end, start)
	}
	return nil
}

func validClock(t TimeOfDay, endOfDayAllowed bool) bool {
	if endOfDayAllowed && t.Hour == 24 && t.Minute == 0 {
		return true
	}
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

func (ts TimeSlot) StartHour() int   { return ts.startHour }
func (ts TimeSlot) StartMinute() int { return ts.startMinute }
func (ts TimeSlot) EndHour() int     { return ts.endHour }
func (ts TimeSlot) EndMinute() int   { return ts.endMinute }

func (ts TimeSlot) StartTime() TimeOfDay { return Clock(ts.startHour, ts.startMinute) }
func (ts TimeSlot) EndTime() TimeOfDay   { return Clock(ts.endHour, ts.endMinute) }

// Start is the slot start relative to the start of the day.
func (ts TimeSlot) Start() time.Duration { return ts.StartTime().Offset() }

// End is the slot end relative to the start of the day.
func (ts TimeSlot) End() time.Duration { return ts.EndTime().Offset() }

func (ts TimeSlot) Duration() time.Duration { return ts.End() - ts.Start() }

// Contains reports whether offset lies strictly inside the slot. Both
// boundaries are exclusive: the exact start and the exact end are not inside.
func (ts TimeSlot) Contains(offset time.Duration) bool {
	return offset > ts.Start() && offset < ts.End()
}

// Covers reports whether [from, to) fits within the slot.
func (ts TimeSlot) Covers(from, to time.Duration) bool {
	return from >= ts.Start() && to <= ts.End()
}

// Overlaps reports whether the two half-open slots share any instant.
func (ts TimeSlot) Overlaps(o TimeSlot) bool {
	return ts.Start() < o.End() && o.Start() < ts.End()
}

func (ts TimeSlot) String() string {
	return ts.StartTime().String() + "-" + ts.EndTime().String()
}

// timeSlotJSON mirrors the persisted record.
type timeSlotJSON struct {
	StartHour   int `json:"startHour"`
	StartMinute int `json:"startMinute"`
	EndHour     int `json:"endHour"`
	EndMinute   int `json:"endMinute"`
}

func (ts TimeSlot) MarshalJSON() ([]byte, error) {
	return json.Marshal(timeSlotJSON{
		StartHour:   ts.startHour,
		StartMinute: ts.startMinute,
		EndHour:     ts.endHour,
		EndMinute:   ts.endMinute,
	})
}

// UnmarshalJSON rejects malformed slots so they never reach the editor. Besides
// the persisted four-field form it accepts {"start": "09:00", "end": "17:00"}.
func (ts *TimeSlot) UnmarshalJSON(b []byte) error {
	var raw struct {
		timeSlotJSON
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var (
		parsed TimeSlot
		err    error
	)
	if raw.Start != "" || raw.End != "" {
		parsed, err = parseClockSlot(raw.Start, raw.End)
	} else {
		parsed, err = NewTimeSlot(raw.StartHour, raw.StartMinute, raw.EndHour, raw.EndMinute)
	}
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

func parseClockSlot(start, end string) (TimeSlot, error) {
	from, err := ParseTimeOfDay(start)
	if err != nil {
		return TimeSlot{}, newTimeRangeError("start: %v", err)
	}
	to, err := ParseTimeOfDay(end)
	if err != nil {
		return TimeSlot{}, newTimeRangeError("end: %v", err)
	}
	return TimeSlotBetween(from, to)
}

// ValidateSlots checks every slot and, when rejectOverlaps is set, that no two
// slots of the list overlap.
func ValidateSlots(slots []TimeSlot, rejectOverlaps bool) error {
	for i, ts := range slots {
		if err := ts.Validate(); err != nil {
			return fmt.Errorf("slot %d: %w", i+1, err)
		}
	}
	if !rejectOverlaps {
		return nil
	}
	sorted := sortedSlots(slots)
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Overlaps(sorted[i]) {
			return fmt.Errorf("%w: %s and %s", ErrOverlappingSlots, sorted[i-1], sorted[i])
		}
	}
	return nil
}

func sortedSlots(slots []TimeSlot) []TimeSlot {
	sorted := append([]TimeSlot(nil), slots...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start() < sorted[j].Start()
	})
	return sorted
}

func copySlots(slots []TimeSlot) []TimeSlot {
	out := make([]TimeSlot, len(slots))
	copy(out, slots)
	return out
}
