package shared

import (
	"strings"
	"time"
)

// ParseDay accepts YYYY-MM-DD or RFC3339 and returns the calendar day at UTC
// midnight. An empty value yields today in loc.
func ParseDay(value string, loc *time.Location, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		local := now.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		local := parsed.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(time.DateOnly, value)
}
