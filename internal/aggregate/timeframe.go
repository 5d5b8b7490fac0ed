package aggregate

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe is the width of an aggregation bucket.
type Timeframe int

const (
	Week Timeframe = iota
	Month
	Year
)

var timeframeNames = [...]string{"week", "month", "year"}

func (tf Timeframe) String() string {
	if tf < Week || tf > Year {
		return fmt.Sprintf("Timeframe(%d)", int(tf))
	}
	return timeframeNames[tf]
}

// ParseTimeframe accepts week/month/year, their -ly forms and the
// single-letter codes W, M and Y.
func ParseTimeframe(s string) (Timeframe, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "week", "weekly":
		return Week, nil
	case "m", "month", "monthly":
		return Month, nil
	case "y", "year", "yearly", "a", "annual":
		return Year, nil
	}
	return 0, fmt.Errorf("unknown timeframe %q (want week, month or year)", s)
}

// Start returns the beginning of the bucket containing t, in t's location:
// Monday 00:00 for weeks, the 1st for months, 1 January for years.
func (tf Timeframe) Start(t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch tf {
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		// Weekday counts from Sunday; ISO weeks start on Monday.
		back := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-back, 0, 0, 0, 0, loc)
	}
}

// Next returns the start of the bucket following the one beginning at start.
func (tf Timeframe) Next(start time.Time) time.Time {
	switch tf {
	case Month:
		return start.AddDate(0, 1, 0)
	case Year:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 7)
	}
}
