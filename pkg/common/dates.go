// Package common provides shared utilities and types used across the civic-mcp application.
package common

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// APITime handles timestamp parsing for the upstream JSON APIs.
// transport.opendata.ch emits RFC3339 with a colon-less zone ("2025-08-22T14:03:00+0200"),
// data.gov.sg emits zone-less timestamps ("2025-08-22T10:31:42") alongside full RFC3339.
type APITime struct {
	time.Time
}

// SwissDate handles the day-month-year dates used on swissvotes.ch ("28.09.2025").
type SwissDate struct {
	time.Time
}

const nullString = "null"

// UnmarshalJSON implements json.Unmarshaler for APITime
func (t *APITime) UnmarshalJSON(data []byte) error {
	// Remove quotes
	str := strings.Trim(string(data), `"`)

	if str == nullString || str == "" {
		return nil
	}

	// Try different timestamp formats
	formats := []string{
		time.RFC3339,                // "2025-08-22T14:03:00+02:00"
		"2006-01-02T15:04:05-0700",  // "2025-08-22T14:03:00+0200" (no colon in zone)
		"2006-01-02T15:04:05",       // "2025-08-22T10:31:42" (no timezone)
		"2006-01-02 15:04:05",       // "2025-08-22 10:31:42"
		"2006-01-02",                // "2025-08-22"
		"2006-01-02T15:04:05.000Z",  // With milliseconds
	}

	for _, format := range formats {
		if parsed, err := time.Parse(format, str); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("unable to parse timestamp %q", str)
}

// MarshalJSON implements json.Marshaler for APITime
func (t APITime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(nullString), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// UnmarshalJSON implements json.Unmarshaler for SwissDate
func (d *SwissDate) UnmarshalJSON(data []byte) error {
	// Remove quotes
	str := strings.Trim(string(data), `"`)

	if str == nullString || str == "" {
		return nil
	}

	// Try different date formats
	formats := []string{
		"02.01.2006", // "28.09.2025"
		"2006-01-02", // "2025-09-28"
	}

	for _, format := range formats {
		if parsed, err := time.Parse(format, str); err == nil {
			d.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("unable to parse date %q", str)
}

// MarshalJSON implements json.Marshaler for SwissDate
func (d SwissDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(nullString), nil
	}
	return json.Marshal(d.Format("02.01.2006"))
}

// ParseSwissDate parses a day-month-year date string as used on the vote
// listing ("28.09.2025"). The zero time and an error are returned for
// anything else.
func ParseSwissDate(s string) (time.Time, error) {
	return time.Parse("02.01.2006", strings.TrimSpace(s))
}
