package response

import (
	"encoding/json"
	"time"
)

// Resp is the standard JSON response body.
type Resp struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Errors    any    `json:"errors,omitempty"`
}

// Date is a calendar date that marshals as DateFormat in UTC.
type Date time.Time

// MarshalJSON implements json.Marshaler for Date.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).UTC().Format(DateFormat))
}

// Instant is an absolute time that marshals as InstantFormat in UTC.
// The zero value marshals as null.
type Instant time.Time

// MarshalJSON implements json.Marshaler for Instant.
func (i Instant) MarshalJSON() ([]byte, error) {
	t := time.Time(i)
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(InstantFormat))
}

// HTTPError is an error with the status and body it should be rendered with.
type HTTPError struct {
	StatusCode int
	Code       int
	Message    string
	Data       any
}

// NewHTTPError returns an HTTPError whose body error code equals its status.
func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{StatusCode: status, Code: status, Message: message}
}

func (e *HTTPError) Error() string { return e.Message }

// WithData attaches a data payload, e.g. a remediation hint.
func (e *HTTPError) WithData(data any) *HTTPError {
	cp := *e
	cp.Data = data
	return &cp
}
