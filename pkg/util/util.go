package util

import (
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

const (
	// DefaultLead is how far in the future an item without a window starts.
	DefaultLead = time.Hour
	// DefaultDuration is the length of a window with no explicit end.
	DefaultDuration = 30 * time.Minute
)

// DefaultWindow returns the window used for an item created without one.
func DefaultWindow(now time.Time) (start, end time.Time) {
	start = now.Add(DefaultLead)
	return start, start.Add(DefaultDuration)
}

// EventTime converts t to a calendar event time, always expressed in UTC.
func EventTime(t time.Time) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.UTC().Format(time.RFC3339),
		TimeZone: "UTC",
	}
}

// ParseEventTime reads a calendar event time. All-day events carry only a
// date, which is interpreted at midnight in the event's time zone (UTC when
// none is given). A nil or empty value yields nil.
func ParseEventTime(edt *calendar.EventDateTime) (*time.Time, error) {
	if edt == nil {
		return nil, nil
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return nil, fmt.Errorf("could not parse event time '%s': %w", edt.DateTime, err)
		}
		return &t, nil
	}
	if edt.Date != "" {
		loc := time.UTC
		if edt.TimeZone != "" {
			if l, err := time.LoadLocation(edt.TimeZone); err == nil {
				loc = l
			}
		}
		t, err := time.ParseInLocation("2006-01-02", edt.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("could not parse event date '%s': %w", edt.Date, err)
		}
		return &t, nil
	}
	return nil, nil
}
