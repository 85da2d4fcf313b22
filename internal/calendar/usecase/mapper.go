package usecase

import (
	"time"

	"calendar-integration/internal/model"
	"calendar-integration/pkg/gcalendar"
)

// toNormalizedEvent maps a provider event. Each bound prefers dateTime over date;
// an all-day date maps to midnight UTC of that date.
func toNormalizedEvent(e gcalendar.Event) (model.NormalizedEvent, bool) {
	start, startAllDay, ok := eventInstant(e.Start)
	if !ok {
		return model.NormalizedEvent{}, false
	}
	end, _, ok := eventInstant(e.End)
	if !ok {
		return model.NormalizedEvent{}, false
	}

	return model.NormalizedEvent{
		ID:          e.ID,
		Start:       start,
		End:         end,
		Title:       e.Summary,
		Description: e.Description,
		Location:    e.Location,
		AllDay:      startAllDay,
	}, true
}

func eventInstant(t gcalendar.EventTime) (time.Time, bool, bool) {
	if t.DateTime != "" {
		if v, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return v.UTC(), false, true
		}
	}
	if t.Date != "" {
		if v, err := time.ParseInLocation(time.DateOnly, t.Date, time.UTC); err == nil {
			return v, true, true
		}
	}
	return time.Time{}, false, false
}
