package usecase

import (
	"context"
	"fmt"

	"calendar-integration/internal/calendar"
	"calendar-integration/internal/model"
	"calendar-integration/pkg/gcalendar"
)

// ListEventsInRange returns the user's events overlapping input.Range, ordered by
// start time, with recurring events expanded into single instances.
func (uc *implUseCase) ListEventsInRange(ctx context.Context, input calendar.ListEventsInput) (calendar.ListEventsOutput, error) {
	// bad input is rejected before the credential is loaded so it never costs a refresh
	start, end, err := uc.normalizeRange(input.Range)
	if err != nil {
		return calendar.ListEventsOutput{}, err
	}

	client, err := uc.freshClient(ctx, input.UserID)
	if err != nil {
		return calendar.ListEventsOutput{}, err
	}

	raw, err := client.ListEvents(ctx, gcalendar.ListEventsRequest{
		CalendarID: uc.calendarOrDefault(input.CalendarID),
		TimeMin:    start,
		TimeMax:    end,
		MaxResults: uc.pageSize,
	})
	if err != nil {
		uc.l.Errorf(ctx, "calendar.ListEventsInRange: user_id=%s err=%v", input.UserID, err)
		return calendar.ListEventsOutput{}, fmt.Errorf("%w: %w", calendar.ErrListEventsFailed, err)
	}

	events := make([]model.NormalizedEvent, 0, len(raw))
	for _, e := range raw {
		ne, ok := toNormalizedEvent(e)
		if !ok {
			uc.l.Warnf(ctx, "calendar.ListEventsInRange: skipping event %s with unusable start/end", e.ID)
			continue
		}
		events = append(events, ne)
	}

	return calendar.ListEventsOutput{Events: events}, nil
}
