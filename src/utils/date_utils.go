package utils

import (
	"log"
	"time"
)

// DefaultDateFormat matches the date layout of the dataset CSV files.
const DefaultDateFormat = "2006-01-02"

// ParseDate parses a date string using the default format.
// Logs an error and returns zero time if parsing fails.
func ParseDate(dateStr string) time.Time {
	t, err := time.Parse(DefaultDateFormat, dateStr)
	if err != nil {
		log.Printf("Error parsing date '%s' with format '%s': %v. Returning zero time.", dateStr, DefaultDateFormat, err)
		return time.Time{}
	}
	return t
}

// FormatDate renders a time in the dataset's date layout.
func FormatDate(t time.Time) string {
	return t.Format(DefaultDateFormat)
}

// FormatDateLong renders a date the way the briefing presents it to the
// operator, e.g. "March 15, 2025".
func FormatDateLong(t time.Time) string {
	return t.Format("January 2, 2006")
}
