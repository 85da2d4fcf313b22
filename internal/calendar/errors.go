package calendar

import "errors"

var (
	ErrUserNotRegistered   = errors.New("user has no calendar credential")
	ErrEventCreationFailed = errors.New("event creation failed")
	ErrListEventsFailed    = errors.New("listing events failed")
	ErrInvalidInput        = errors.New("invalid input")
)
