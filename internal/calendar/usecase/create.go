package usecase

import (
	"context"
	"fmt"
	"strings"

	"calendar-integration/internal/calendar"
	"calendar-integration/internal/model"
	"calendar-integration/pkg/gcalendar"
)

// CreateEvent books input.Draft. Default reminders apply when the draft sets none.
func (uc *implUseCase) CreateEvent(ctx context.Context, input calendar.CreateEventInput) (calendar.CreateEventOutput, error) {
	draft := input.Draft
	if strings.TrimSpace(draft.Summary) == "" {
		return calendar.CreateEventOutput{}, fmt.Errorf("%w: summary is required", calendar.ErrInvalidInput)
	}

	// validated before the credential is loaded, as in ListEventsInRange
	start, end, err := uc.normalizeRange(draft.Range)
	if err != nil {
		return calendar.CreateEventOutput{}, err
	}

	client, err := uc.freshClient(ctx, input.UserID)
	if err != nil {
		return calendar.CreateEventOutput{}, err
	}

	calendarID := uc.calendarOrDefault(draft.CalendarID)
	created, err := client.CreateEvent(ctx, gcalendar.CreateEventRequest{
		CalendarID:  calendarID,
		Summary:     draft.Summary,
		Description: draft.Description,
		StartTime:   start,
		EndTime:     end,
		Timezone:    draft.Range.Timezone,
		Attendees:   attendeeEmails(draft.Attendees),
		Reminders:   toReminders(draft.Reminders),
	})
	if err != nil {
		uc.l.Errorf(ctx, "calendar.CreateEvent: user_id=%s err=%v", input.UserID, err)
		return calendar.CreateEventOutput{}, fmt.Errorf("%w: %w", calendar.ErrEventCreationFailed, err)
	}

	uc.l.Infof(ctx, "event created: user_id=%s calendar_id=%s event_id=%s", input.UserID, calendarID, created.ID)
	return calendar.CreateEventOutput{
		EventID:   created.ID,
		EventLink: created.HtmlLink,
		Message:   calendar.EventBookedMessage,
	}, nil
}

func attendeeEmails(attendees []model.Attendee) []string {
	var emails []string
	for _, a := range attendees {
		if email := strings.TrimSpace(a.Email); email != "" {
			emails = append(emails, email)
		}
	}
	return emails
}

// toReminders keeps the nil/empty distinction: nil means defaults, empty means none.
func toReminders(reminders []model.Reminder) []gcalendar.Reminder {
	if reminders == nil {
		reminders = model.DefaultReminders()
	}
	out := make([]gcalendar.Reminder, 0, len(reminders))
	for _, r := range reminders {
		out = append(out, gcalendar.Reminder{Method: string(r.Method), Minutes: r.Minutes})
	}
	return out
}
