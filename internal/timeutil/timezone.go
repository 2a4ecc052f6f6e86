package timeutil

import (
	"fmt"
	"time"
)

// LoadTimezone resolves a tz database name for display. "" and "Local" mean
// the host zone.
func LoadTimezone(name string) (*time.Location, error) {
	switch name {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", name, err)
	}
	return loc, nil
}

// FormatIn renders t in loc with a zone abbreviation. History rows are
// stored in UTC; this is for display only.
func FormatIn(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02 15:04:05 MST")
}
