package timex

import (
	"strings"
	"time"
)

// StorageLayout is the layout used for every timestamp written to the store.
// Fixed-width fractional seconds keep lexical and chronological order equal,
// so ORDER BY on the text column sorts by time.
const StorageLayout = "2006-01-02T15:04:05.000000000Z07:00"

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999 -0700",
}

// Layouts without a zone suffix are interpreted as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatTimestamp renders t in UTC using StorageLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(StorageLayout)
}

// ParseTimestamp parses a stored timestamp. A missing zone suffix is treated
// as UTC. The second return value is false when s could not be parsed, in
// which case now is returned instead.
func ParseTimestamp(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return now, false
}

// ParseAny accepts the value shapes a database driver may return for a
// timestamp column (string, []byte or time.Time).
func ParseAny(v any, now time.Time) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return now, false
		}
		return x.UTC(), true
	case string:
		return ParseTimestamp(x, now)
	case []byte:
		return ParseTimestamp(string(x), now)
	default:
		return now, false
	}
}

// CombineDateTime synthesizes a timestamp from separate date (YYYY-MM-DD)
// and time-of-day (HH:MM or HH:MM:SS) fields, both in UTC.
func CombineDateTime(date, clock string, now time.Time) (time.Time, bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		return now, false
	}
	if clock == "" {
		return ParseTimestamp(date, now)
	}
	if strings.Count(clock, ":") == 1 {
		clock += ":00"
	}
	return ParseTimestamp(date+"T"+clock, now)
}

// ElapsedSeconds returns floor(to - from) in whole seconds, never negative.
func ElapsedSeconds(from, to time.Time) int64 {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}
