package entities

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// isoLayouts are the ISO-8601 spellings accepted for date fields, tried in order
var isoLayouts = []string{
	dateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
}

// Date represents a calendar day without time of day
type Date struct {
	t time.Time
}

// NewDate creates a Date for the given year, month and day
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day in the timestamp's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate accepts an ISO-format date string or a native time value.
// Anything else, including malformed strings, yields nil.
func ParseDate(v any) *Date {
	val, ok := scalar(v)
	if !ok {
		return nil
	}

	switch typed := val.(type) {
	case Date:
		return &typed
	case time.Time:
		if typed.IsZero() {
			return nil
		}
		d := DateOf(typed)
		return &d
	case []byte:
		return parseDateString(string(typed))
	}

	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.String {
		return parseDateString(rv.String())
	}
	return nil
}

func parseDateString(s string) *Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			d := DateOf(t)
			return &d
		}
	}
	return nil
}

// Time returns midnight UTC of the day
func (d Date) Time() time.Time {
	return d.t
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly later than other
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether both dates name the same day
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// String formats the day as YYYY-MM-DD
func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// MarshalJSON encodes the day as a YYYY-MM-DD string
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed := parseDateString(s)
	if parsed == nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	*d = *parsed
	return nil
}
