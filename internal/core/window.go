package core

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format accepted in requests and used for
// daily grouping keys.
const DateLayout = "2006-01-02"

// DateWindow is an inclusive range of whole calendar days, expanded to a
// full-day timestamp range: Start at 00:00:00 and End at 23:59:59 UTC.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

var ErrWindowInverted = errors.New("end date must not be before start date")

// ParseDate parses a "YYYY-MM-DD" string into a UTC midnight timestamp.
// Strings that do not correspond to a real calendar date are rejected.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// NewDateWindow builds the inclusive window from two calendar date strings.
func NewDateWindow(startDate, endDate string) (DateWindow, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return DateWindow{}, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return DateWindow{}, err
	}

	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
	if end.Before(start) {
		return DateWindow{}, ErrWindowInverted
	}

	return DateWindow{Start: start, End: end}, nil
}

// Days returns the inclusive count of calendar days covered by the window.
func (w DateWindow) Days() int {
	return int(w.End.Sub(w.Start)/(24*time.Hour)) + 1
}

// Contains reports whether t falls inside the window.
func (w DateWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// StartDate returns the first calendar day as "YYYY-MM-DD".
func (w DateWindow) StartDate() string {
	return w.Start.Format(DateLayout)
}

// EndDate returns the last calendar day as "YYYY-MM-DD".
func (w DateWindow) EndDate() string {
	return w.End.Format(DateLayout)
}
