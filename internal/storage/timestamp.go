package storage

import (
	"fmt"
	"strings"
	"time"
)

// zoned layouts carry their own offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
}

// naive layouts have no offset and are read as local time. Fractional
// seconds are accepted after the seconds field by time.Parse.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimestamp accepts the timestamp forms found in existing logs.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, f := range zonedLayouts {
		if t, err := time.Parse(f, s); err == nil {
			return t.In(time.Local), nil
		}
	}
	for _, f := range naiveLayouts {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// formatTimestamp is the form every backend writes.
func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
