package model

import "time"

// DefaultCalendarID is the provider alias for the user's main calendar.
const DefaultCalendarID = "primary"

// NormalizedEvent is a provider event with both bounds as UTC instants.
type NormalizedEvent struct {
	ID          string
	Start       time.Time
	End         time.Time
	Title       string
	Description string
	Location    string
	AllDay      bool
}

// TimeRange is a wall-clock range in an IANA timezone.
// StartLocal <= EndLocal is the caller's responsibility and is not validated.
type TimeRange struct {
	StartLocal string
	EndLocal   string
	Timezone   string
}

// Attendee is an invited participant.
type Attendee struct {
	Email string
}

// ReminderMethod is how a reminder is delivered.
type ReminderMethod string

const (
	ReminderEmail ReminderMethod = "email"
	ReminderPopup ReminderMethod = "popup"
)

// Reminder fires Minutes before the event start.
type Reminder struct {
	Method  ReminderMethod
	Minutes int64
}

// DefaultReminders are applied when an EventDraft does not set its own.
func DefaultReminders() []Reminder {
	return []Reminder{
		{Method: ReminderEmail, Minutes: 24 * 60},
		{Method: ReminderPopup, Minutes: 10},
	}
}

// EventDraft is the caller's description of an event to create.
// A nil Reminders slice means DefaultReminders; an empty non-nil slice means none.
type EventDraft struct {
	Summary     string
	Description string
	Range       TimeRange
	Attendees   []Attendee
	Reminders   []Reminder
	CalendarID  string
}
