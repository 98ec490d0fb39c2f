package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates, e.g. "2024-12-25".
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalises y-m-d the way time.Date does (e.g. Feb 30 becomes Mar 1/2).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Weekday() time.Weekday {
	return d.Midnight(time.UTC).Weekday()
}

// Midnight returns the first instant of d in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// At returns the instant whose wall clock in loc reads offset past midnight
// of d. An offset of 24h is the next midnight. On a DST transition day this
// differs from Midnight(loc).Add(offset).
func (d Date) At(offset time.Duration, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	h := int(offset / time.Hour)
	m := int(offset % time.Hour / time.Minute)
	ns := int(offset % time.Minute)
	return time.Date(d.Year, d.Month, d.Day, h, m, 0, ns, loc)
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Midnight(time.UTC).AddDate(0, 0, n))
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// offsetInDay is the wall-clock time of t measured from t's midnight.
func offsetInDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}
