package domain

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of the calendar date t falls on in its own
// location. All reservation dates are stored in this form.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// Days returns the number of calendar days in [start, end).
// It is negative when end is before start. The count goes through Unix
// seconds because a time.Duration saturates after roughly 292 years.
func Days(start, end time.Time) int {
	return int((Day(end).Unix() - Day(start).Unix()) / secondsPerDay)
}
