package models

import "time"

// TimestampLayout is ISO-8601 in UTC with millisecond precision, the format
// used for every createdAt field.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
