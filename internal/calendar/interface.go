package calendar

import "context"

// Adapter is the provider-agnostic calendar capability set.
// A second provider is a second implementation of this interface.
//
//go:generate mockery --name Adapter
type Adapter interface {
	// Connect returns the consent URL the user must visit.
	Connect(ctx context.Context, input ConnectInput) (ConnectOutput, error)
	// Authorize exchanges a consent code and stores the resulting credential.
	Authorize(ctx context.Context, input AuthorizeInput) (AuthorizeOutput, error)
	// ListEventsInRange returns the user's events overlapping a local time range, ordered by start.
	ListEventsInRange(ctx context.Context, input ListEventsInput) (ListEventsOutput, error)
	// CreateEvent books an event in the user's calendar.
	CreateEvent(ctx context.Context, input CreateEventInput) (CreateEventOutput, error)
	// RefreshAccessToken forces a refresh of the user's stored credential.
	RefreshAccessToken(ctx context.Context, input RefreshInput) (RefreshOutput, error)
}
