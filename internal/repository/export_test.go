package repository

// Export internal helpers for testing.
var (
	NullableString = nullableString
	FormatDateTime = formatDateTime
	ParseDateTime  = parseDateTime
)
