package response

const (
	MessageSuccess      = "Success"
	DefaultErrorMessage = "Something went wrong"

	InternalServerErrorCode = 500
	ValidationErrorCode     = 1

	// DateFormat is the all-day date layout.
	DateFormat = "2006-01-02"
	// InstantFormat is the layout for absolute instants; values are always rendered in UTC.
	InstantFormat = "2006-01-02T15:04:05Z07:00"
)
