package http

import (
	"errors"
	"strings"

	"calendar-integration/internal/calendar"
	"calendar-integration/internal/model"
	"calendar-integration/pkg/response"
)

// --- Request DTOs ---

type connectReq struct {
	UserID string   `form:"user_id" binding:"required,max=255"`
	Scopes []string `form:"scope"`
}

func (r connectReq) validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	return nil
}

// ---

type callbackReq struct {
	Code  string `form:"code"`
	State string `form:"state" binding:"required"`
	// Error is set by the provider when the user declined consent.
	Error string `form:"error"`
}

func (r callbackReq) validate() error {
	if r.Error != "" {
		return errors.New("consent was not granted: " + r.Error)
	}
	if r.Code == "" {
		return errors.New("code is required")
	}
	return nil
}

// ---

type authorizeReq struct {
	UserID string `json:"user_id" binding:"required,max=255"`
	Code   string `json:"code"    binding:"required"`
}

func (r authorizeReq) validate() error { return nil }

func (r authorizeReq) toInput() calendar.AuthorizeInput {
	return calendar.AuthorizeInput{UserID: r.UserID, Code: r.Code}
}

// ---

type listEventsReq struct {
	UserID     string `form:"user_id"     binding:"required,max=255"`
	Start      string `form:"start"       binding:"required"`
	End        string `form:"end"         binding:"required"`
	Timezone   string `form:"timezone"    binding:"required"`
	CalendarID string `form:"calendar_id"`
}

func (r listEventsReq) validate() error { return nil }

func (r listEventsReq) toInput() calendar.ListEventsInput {
	return calendar.ListEventsInput{
		UserID:     r.UserID,
		Range:      model.TimeRange{StartLocal: r.Start, EndLocal: r.End, Timezone: r.Timezone},
		CalendarID: r.CalendarID,
	}
}

// ---

type reminderReq struct {
	Method  string `json:"method"  binding:"required,oneof=email popup"`
	Minutes int64  `json:"minutes" binding:"min=0,max=40320"`
}

type createEventReq struct {
	UserID      string   `json:"user_id"     binding:"required,max=255"`
	Summary     string   `json:"summary"     binding:"required,max=1024"`
	Description string   `json:"description" binding:"max=8192"`
	Start       string   `json:"start"       binding:"required"`
	End         string   `json:"end"         binding:"required"`
	Timezone    string   `json:"timezone"    binding:"required"`
	Attendees   []string `json:"attendees"   binding:"omitempty,dive,email"`
	// Reminders omitted means the default reminders; [] means none.
	Reminders  []reminderReq `json:"reminders" binding:"omitempty,max=5,dive"`
	CalendarID string        `json:"calendar_id"`
}

func (r createEventReq) validate() error { return nil }

func (r createEventReq) toInput() calendar.CreateEventInput {
	draft := model.EventDraft{
		Summary:     r.Summary,
		Description: r.Description,
		Range:       model.TimeRange{StartLocal: r.Start, EndLocal: r.End, Timezone: r.Timezone},
		CalendarID:  r.CalendarID,
	}
	for _, email := range r.Attendees {
		draft.Attendees = append(draft.Attendees, model.Attendee{Email: email})
	}
	if r.Reminders != nil {
		draft.Reminders = make([]model.Reminder, 0, len(r.Reminders))
		for _, rem := range r.Reminders {
			draft.Reminders = append(draft.Reminders, model.Reminder{Method: model.ReminderMethod(rem.Method), Minutes: rem.Minutes})
		}
	}
	return calendar.CreateEventInput{UserID: r.UserID, Draft: draft}
}

// ---

type refreshReq struct {
	UserID string `json:"user_id" binding:"required,max=255"`
}

func (r refreshReq) validate() error { return nil }

func (r refreshReq) toInput() calendar.RefreshInput {
	return calendar.RefreshInput{UserID: r.UserID}
}

// --- Response DTOs ---

type connectResp struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// credentialResp describes a stored credential. Token values are never returned.
type credentialResp struct {
	UserID          string           `json:"user_id"`
	Scope           []string         `json:"scope"`
	TokenType       string           `json:"token_type"`
	Expiry          response.Instant `json:"expiry"`
	HasRefreshToken bool             `json:"has_refresh_token"`
	UpdatedAt       response.Instant `json:"updated_at"`
}

type eventResp struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Location    string           `json:"location"`
	Start       response.Instant `json:"start"`
	End         response.Instant `json:"end"`
	AllDay      bool             `json:"all_day"`
}

type listEventsResp struct {
	Events []eventResp `json:"events"`
	Count  int         `json:"count"`
}

type createEventResp struct {
	EventID   string `json:"event_id"`
	EventLink string `json:"event_link"`
	Message   string `json:"message"`
}

func (h *handler) newConnectResp(o calendar.ConnectOutput, state string) connectResp {
	return connectResp{URL: o.URL, State: state}
}

func (h *handler) newCredentialResp(c model.Credential) credentialResp {
	scope := c.Scope
	if scope == nil {
		scope = []string{}
	}
	return credentialResp{
		UserID:          c.UserID,
		Scope:           scope,
		TokenType:       c.TokenType,
		Expiry:          response.Instant(c.Expiry),
		HasRefreshToken: c.HasRefreshToken(),
		UpdatedAt:       response.Instant(c.UpdatedAt),
	}
}

func (h *handler) newListEventsResp(o calendar.ListEventsOutput) listEventsResp {
	events := make([]eventResp, 0, len(o.Events))
	for _, e := range o.Events {
		events = append(events, eventResp{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Location:    e.Location,
			Start:       response.Instant(e.Start),
			End:         response.Instant(e.End),
			AllDay:      e.AllDay,
		})
	}
	return listEventsResp{Events: events, Count: len(events)}
}

func (h *handler) newCreateEventResp(o calendar.CreateEventOutput) createEventResp {
	return createEventResp{EventID: o.EventID, EventLink: o.EventLink, Message: o.Message}
}
