package model

import "time"

// Entry is a calendar event as the calendar service models it.
type Entry struct {
	ID         string
	Subject    string
	Categories []string
	Start      *time.Time
	End        *time.Time
	Body       string
	ColorID    string
}

// EntryPatch is a partial Entry. Only set fields are sent to the calendar.
type EntryPatch struct {
	Subject    Optional[string]
	Categories Optional[[]string]
	Start      Optional[time.Time]
	End        Optional[time.Time]
	Body       Optional[string]
	ColorID    Optional[string]
}
