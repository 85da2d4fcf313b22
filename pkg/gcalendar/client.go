package gcalendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client wraps the Google Calendar API service.
type Client struct {
	service *calendar.Service
}

// NewClientFromHTTP creates a Calendar client from a pre-configured HTTP client.
func NewClientFromHTTP(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &Client{service: svc}, nil
}

// ClientFactory builds per-user clients that authenticate with a fixed access token.
// The token is never refreshed by the client; freshness is the caller's job.
type ClientFactory struct {
	// HTTPClient is the base transport; nil means http.DefaultClient.
	HTTPClient *http.Client
	// Endpoint overrides the API base URL, e.g. for a test server.
	Endpoint string
}

// NewClient returns a Client sending accessToken as tokenType ("Bearer" when empty).
func (f ClientFactory) NewClient(ctx context.Context, accessToken, tokenType string) (*Client, error) {
	if accessToken == "" {
		return nil, errors.New("gcalendar: access token is required")
	}

	base := http.DefaultTransport
	if f.HTTPClient != nil && f.HTTPClient.Transport != nil {
		base = f.HTTPClient.Transport
	}
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: tokenType}),
			Base:   base,
		},
	}
	if f.HTTPClient != nil {
		httpClient.Timeout = f.HTTPClient.Timeout
	}

	var opts []option.ClientOption
	if f.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.Endpoint))
	}
	return NewClientFromHTTP(ctx, httpClient, opts...)
}

// ListEvents returns every event overlapping [TimeMin, TimeMax), with recurring
// events expanded into instances and ordered by start time.
func (c *Client) ListEvents(ctx context.Context, req ListEventsRequest) ([]Event, error) {
	calendarID := req.CalendarID
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}

	call := c.service.Events.List(calendarID).
		Context(ctx).
		SingleEvents(true).
		OrderBy(orderByStartTime).
		TimeMin(req.TimeMin.UTC().Format(time.RFC3339)).
		TimeMax(req.TimeMax.UTC().Format(time.RFC3339))
	if req.MaxResults > 0 {
		call = call.MaxResults(req.MaxResults)
	}

	var events []Event
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			events = append(events, newEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	return events, nil
}

// CreateEvent creates a new Google Calendar event.
func (c *Client) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start: &calendar.EventDateTime{
			DateTime: req.StartTime.Format(time.RFC3339),
			TimeZone: req.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: req.EndTime.Format(time.RFC3339),
			TimeZone: req.Timezone,
		},
	}
	for _, email := range req.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}
	if req.Reminders != nil {
		event.Reminders = &calendar.EventReminders{
			UseDefault: false,
			// false is the zero value and would be dropped from the JSON otherwise
			ForceSendFields: []string{"UseDefault"},
		}
		for _, r := range req.Reminders {
			event.Reminders.Overrides = append(event.Reminders.Overrides, &calendar.EventReminder{
				Method:  r.Method,
				Minutes: r.Minutes,
			})
		}
	}

	calendarID := req.CalendarID
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}

	created, err := c.service.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	out := newEvent(created)
	return &out, nil
}

// StatusCode returns the HTTP status of a Google API error anywhere in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func newEvent(e *calendar.Event) Event {
	out := Event{
		ID:          e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		HtmlLink:    e.HtmlLink,
		Status:      e.Status,
	}
	if e.Start != nil {
		out.Start = EventTime{DateTime: e.Start.DateTime, Date: e.Start.Date, TimeZone: e.Start.TimeZone}
	}
	if e.End != nil {
		out.End = EventTime{DateTime: e.End.DateTime, Date: e.End.Date, TimeZone: e.End.TimeZone}
	}
	return out
}
