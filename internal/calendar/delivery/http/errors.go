package http

import (
	"errors"
	"net/http"

	"calendar-integration/internal/calendar"
	"calendar-integration/internal/oauth"
	"calendar-integration/pkg/datemath"
	"calendar-integration/pkg/gcalendar"
	"calendar-integration/pkg/response"
)

// reauthorizeHint tells the client to send the user through /connect again.
var reauthorizeHint = map[string]string{"action": "reauthorize"}

// mapError translates adapter errors into HTTP errors.
func (h *handler) mapError(err error) error {
	switch {
	case errors.Is(err, datemath.ErrInvalidTimezone),
		errors.Is(err, datemath.ErrInvalidTimestamp),
		errors.Is(err, calendar.ErrInvalidInput):
		return response.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, calendar.ErrUserNotRegistered):
		return response.NewHTTPError(http.StatusNotFound, err.Error()).WithData(reauthorizeHint)
	case errors.Is(err, oauth.ErrRefreshTokenMissing),
		errors.Is(err, oauth.ErrRefreshRejected),
		errors.Is(err, oauth.ErrInvalidGrant):
		return response.NewHTTPError(http.StatusUnauthorized, rootMessage(err)).WithData(reauthorizeHint)
	case errors.Is(err, calendar.ErrEventCreationFailed):
		return upstreamError(calendar.ErrEventCreationFailed, err)
	case errors.Is(err, calendar.ErrListEventsFailed):
		return upstreamError(calendar.ErrListEventsFailed, err)
	case errors.Is(err, oauth.ErrRefreshFailed):
		return response.NewHTTPError(http.StatusBadGateway, oauth.ErrRefreshFailed.Error())
	case errors.Is(err, oauth.ErrExchangeFailed):
		return response.NewHTTPError(http.StatusBadGateway, oauth.ErrExchangeFailed.Error())
	default:
		return response.NewHTTPError(http.StatusInternalServerError, response.DefaultErrorMessage)
	}
}

// upstreamError reports a provider rejection as 502, passing the provider's
// status through when there is one.
func upstreamError(sentinel, err error) error {
	httpErr := response.NewHTTPError(http.StatusBadGateway, sentinel.Error())
	if code := gcalendar.StatusCode(err); code != 0 {
		return httpErr.WithData(map[string]int{"upstream_status": code})
	}
	return httpErr
}

// rootMessage keeps provider error bodies out of client-facing messages.
func rootMessage(err error) string {
	for _, sentinel := range []error{oauth.ErrRefreshTokenMissing, oauth.ErrRefreshRejected, oauth.ErrInvalidGrant} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
