package models

import (
	"time"
)

// CalendarEvent is the provider-neutral shape of a calendar event. Events
// live in the provider's calendar, not in our database - this is only a
// transport model between the calendar service and the adapters.
type CalendarEvent struct {
	ID          string           `json:"id,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Location    string           `json:"location,omitempty"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`
	Provider    CalendarProvider `json:"provider,omitempty"`
}
