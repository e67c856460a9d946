package reminder

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is the wire format for dates: no zone, no fraction.
const TimestampLayout = "2006-01-02T15:04:05"

// inputLayouts are accepted when parsing user input, in order.
var inputLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Timestamp is a zone-less local date-time with second precision.
// It is read and written in the process's local time zone.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds in the local zone.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.In(time.Local).Truncate(time.Second)}
}

// ParseTimestamp parses the wire format. Fractional seconds are accepted
// and dropped; zone-bearing RFC 3339 values are converted to local time.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err == nil {
		return NewTimestamp(t), nil
	}
	if t, rfcErr := time.Parse(time.RFC3339Nano, s); rfcErr == nil {
		return NewTimestamp(t), nil
	}
	return Timestamp{}, fmt.Errorf("invalid date %q (want %s)", s, TimestampLayout)
}

// ParseInput parses a user-typed date such as "2025-01-15 09:00".
// A bare date means midnight.
func ParseInput(s string) (Timestamp, error) {
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return NewTimestamp(t), nil
		}
	}
	return ParseTimestamp(s)
}

// String returns the wire representation, or "" for the zero value.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

// MarshalJSON writes the wire format; the zero value becomes null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.Format(TimestampLayout))), nil
}

// UnmarshalJSON reads the wire format; null leaves the zero value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", data, err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
