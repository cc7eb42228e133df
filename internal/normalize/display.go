package normalize

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateDisplay reformats the date part of an ISO-like value from YYYY-MM-DD to DD-MM-YYYY.
// Values that do not look like a date are returned unchanged.
func DateDisplay(raw string) string {
	if raw == "" {
		return ""
	}

	datePart := raw
	if idx := strings.IndexAny(datePart, "T "); idx >= 0 {
		datePart = datePart[:idx]
	}

	const lenParts = 3
	parts := strings.Split(datePart, "-")
	if len(parts) != lenParts {
		return raw
	}

	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

// Severity classifies how fresh a record is.
type Severity string

const (
	SeverityNeutral Severity = "neutral"
	SeverityFresh   Severity = "fresh"
	SeverityAging   Severity = "aging"
	SeverityStale   Severity = "stale"
)

const (
	freshDays = 7
	agingDays = 15
)

// Age is a human label for elapsed time since an update plus its severity band.
type Age struct {
	Label    string
	Severity Severity
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts time.Time, epoch milliseconds, and ISO-like strings where the date
// and time are separated by 'T' or whitespace. Strings without a zone are read in local time.
func ParseTimestamp(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case int64:
		return time.UnixMilli(v), true
	case int:
		return time.UnixMilli(int64(v)), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v)), true
	case string:
		return parseTimestampString(v)
	default:
		return time.Time{}, false
	}
}

func parseTimestampString(raw string) (time.Time, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}, false
	}

	const dateLen = len("2006-01-02")
	if len(text) > dateLen && (text[dateLen] == ' ' || text[dateLen] == '\t') {
		text = text[:dateLen] + "T" + strings.TrimSpace(text[dateLen:])
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// RelativeAge describes how long ago value was, measured against now.
// Future and unparseable timestamps produce an empty label with neutral severity.
func RelativeAge(value any, now time.Time) Age {
	stamp, ok := ParseTimestamp(value)
	if !ok {
		return Age{Severity: SeverityNeutral}
	}

	elapsed := now.Sub(stamp)
	if elapsed < 0 {
		return Age{Severity: SeverityNeutral}
	}

	const day = 24 * time.Hour
	days := int(elapsed / day)

	severity := SeverityStale
	switch {
	case days <= freshDays:
		severity = SeverityFresh
	case days <= agingDays:
		severity = SeverityAging
	}

	return Age{Label: ageLabel(elapsed), Severity: severity}
}

func ageLabel(elapsed time.Duration) string {
	const day = 24 * time.Hour

	if days := int(elapsed / day); days >= 1 {
		return fmt.Sprintf("Updated %d %s ago", days, plural(days, "day"))
	}
	if hours := int(elapsed / time.Hour); hours >= 1 {
		return fmt.Sprintf("Updated %d %s ago", hours, plural(hours, "hr"))
	}
	if minutes := int(elapsed / time.Minute); minutes >= 1 {
		return fmt.Sprintf("Updated %d %s ago", minutes, plural(minutes, "min"))
	}
	return "Updated just now"
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
