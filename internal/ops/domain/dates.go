package domain

import (
	"strings"
	"time"
)

// Date layouts used across the dashboard payloads
const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006, 15:04"
)

// timestampLayouts are the accepted spellings for snooze deadlines and
// delivery dates, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	DateLayout,
}

// FormatDate renders a time as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDateTime renders a time as "DD/MM/YYYY, HH:MM".
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// ParseTimestamp parses a caller-supplied timestamp in any accepted
// layout. Returns false when no layout matches.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate parses a caller-supplied date and re-renders it as
// DD/MM/YYYY. Unparsable or empty input falls back to the given time,
// which callers pass as "today".
func NormalizeDate(s string, fallback time.Time) string {
	if t, ok := ParseTimestamp(s); ok {
		return FormatDate(t)
	}
	return FormatDate(fallback)
}

// NormalizeStoredDate renders a caller date as DD/MM/YYYY for storage.
// Empty input becomes today; unparsable input is kept verbatim rather
// than replaced.
func NormalizeStoredDate(s string, now time.Time) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return FormatDate(now)
	}
	if t, ok := ParseTimestamp(trimmed); ok {
		return FormatDate(t)
	}
	return trimmed
}
