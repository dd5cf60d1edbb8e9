// Package schedule resolves the alert clock timezone.
package schedule

import (
	"fmt"
	"strings"
	"time"
	// Embed tzdata for environments without zoneinfo.
	_ "time/tzdata"
)

const errFmtInvalidTimezone = "invalid timezone: %w"

// Short names operators tend to type for the zones the dashboard serves.
var timezoneAliases = map[string]string{
	"Madrid":    "Europe/Madrid",
	"CET":       "Europe/Madrid",
	"Canarias":  "Atlantic/Canary",
	"Lisboa":    "Europe/Lisbon",
	"Barcelona": "Europe/Madrid",
}

// NormalizeTimezone trims value and maps known aliases to IANA names.
func NormalizeTimezone(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	if canonical, ok := timezoneAliases[value]; ok {
		return canonical
	}

	return value
}

// LoadLocation resolves tz, defaulting to UTC when empty.
func LoadLocation(tz string) (*time.Location, error) {
	name := NormalizeTimezone(tz)
	if name == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf(errFmtInvalidTimezone, err)
	}

	return loc, nil
}
