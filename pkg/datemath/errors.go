package datemath

import "errors"

var (
	ErrInvalidTimezone  = errors.New("invalid timezone")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)
