package domain

import "time"

// Clock supplies the current instant. Every reconciliation operation reads it
// once so a run sees a single, consistent "today".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in the business timezone.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time in the configured location (UTC when unset).
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant. Used by tests and by the CLI --as-of flag.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.At
}

// DateOf truncates t to its civil date in t's own location, returned as
// midnight UTC so it can be compared and stored as a DATE.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns local midnight of t in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays shifts a civil date by n days.
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// DaysBetween returns the number of whole days from a to b (b - a) for civil dates.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}
