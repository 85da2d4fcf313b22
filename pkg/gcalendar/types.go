package gcalendar

import "time"

const (
	// DefaultCalendarID is the alias Google uses for the authenticated user's calendar.
	DefaultCalendarID = "primary"

	orderByStartTime = "startTime"
)

// CreateEventRequest is the input for creating a Google Calendar event.
type CreateEventRequest struct {
	CalendarID  string
	Summary     string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Timezone    string // e.g. "Asia/Ho_Chi_Minh"
	Attendees   []string
	// Reminders nil leaves the calendar's defaults in place.
	Reminders []Reminder
}

// Reminder is a reminder override ("email" or "popup").
type Reminder struct {
	Method  string
	Minutes int64
}

// EventTime mirrors the provider's start/end shape: timed events carry DateTime
// (RFC3339), all-day events carry Date (YYYY-MM-DD).
type EventTime struct {
	DateTime string
	Date     string
	TimeZone string
}

// Event is a provider event with its raw start/end left for the caller to interpret.
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	HtmlLink    string
	Status      string
	Start       EventTime
	End         EventTime
}

// ListEventsRequest is the input for listing Google Calendar events.
// Recurring events are always expanded and ordered by start time.
type ListEventsRequest struct {
	CalendarID string
	TimeMin    time.Time
	TimeMax    time.Time
	// MaxResults is the page size; all pages are fetched.
	MaxResults int64
}
