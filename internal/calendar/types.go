package calendar

import "calendar-integration/internal/model"

// EventBookedMessage is returned with every successfully created event.
const EventBookedMessage = "Event successfully booked."

// --- UseCase Inputs ---

type ConnectInput struct {
	// State is echoed back on the consent callback.
	State string
	// Scopes empty means the configured defaults.
	Scopes []string
}

type AuthorizeInput struct {
	UserID string
	Code   string
}

// ListEventsInput.Range.StartLocal must not be after EndLocal. This is not
// validated; an inverted range is passed through to the provider.
type ListEventsInput struct {
	UserID     string
	Range      model.TimeRange
	CalendarID string
}

type CreateEventInput struct {
	UserID string
	Draft  model.EventDraft
}

type RefreshInput struct {
	UserID string
}

// --- UseCase Outputs ---

type ConnectOutput struct {
	URL string
}

type AuthorizeOutput struct {
	Credential model.Credential
}

type ListEventsOutput struct {
	Events []model.NormalizedEvent
}

type CreateEventOutput struct {
	EventID   string
	EventLink string
	Message   string
}

type RefreshOutput struct {
	Credential model.Credential
}
