package service

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Clock fixes "now" and the restaurant's time zone. Dates are carried as UTC
// midnight, times as HH:MM wall clock in Loc.
type Clock struct {
	Now func() time.Time
	Loc *time.Location
}

func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Loc: loc}
}

func (c Clock) local() time.Time { return c.Now().In(c.Loc) }

func (c Clock) Today() time.Time { return dateOf(c.local()) }

// Wall returns the current local wall clock with the zone stripped, matching
// how slots are stored.
func (c Clock) Wall() time.Time {
	t := c.local()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseSlotTime accepts HH:MM or HH:MM:SS and normalizes to HH:MM.
func ParseSlotTime(s string) (string, error) {
	for _, layout := range []string{TimeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
}
