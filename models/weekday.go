package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekdays lists the days of the week in the order providers edit them.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// DayName returns the persisted upper-case name of wd, e.g. "MONDAY".
func DayName(wd time.Weekday) string {
	return strings.ToUpper(wd.String())
}

// ParseDay accepts a day name in any case ("monday", "MONDAY", "Monday").
func ParseDay(s string) (time.Weekday, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, wd := range Weekdays {
		if DayName(wd) == name {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown day of week %q", s)
}
