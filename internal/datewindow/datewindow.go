package datewindow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxSpanDays bounds the separation between the two ends of a user entered window.
const MaxSpanDays = 365

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvertedRange = errors.New("from date is after to date")
)

// Date is a calendar day without time of day or timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses "YYYY-MM-DD", ignoring anything after a 'T' or a space.
// The same string always yields the same day regardless of the local timezone.
func ParseDate(raw string) (Date, error) {
	datePart := strings.TrimSpace(raw)
	if idx := strings.IndexAny(datePart, "T "); idx >= 0 {
		datePart = datePart[:idx]
	}

	parts := strings.Split(datePart, "-")
	const lenParts = 3
	if len(parts) != lenParts {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}

	year, errY := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	day, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil || year == 0 || month == 0 || day == 0 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}

	date := FromTime(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
	if date.Year != year || int(date.Month) != month || date.Day != day {
		return Date{}, fmt.Errorf("%w: %q does not exist", ErrInvalidDate, raw)
	}

	return date, nil
}

// MustParseDate is ParseDate that panics; intended for constants and tests.
func MustParseDate(raw string) Date {
	date, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return date
}

// FromTime takes the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the day n days after d (before, for negative n).
func (d Date) AddDays(n int) Date {
	return FromTime(d.midnight().AddDate(0, 0, n))
}

func (d Date) Before(other Date) bool { return d.midnight().Before(other.midnight()) }

func (d Date) After(other Date) bool { return d.midnight().After(other.midnight()) }

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Weekday() time.Weekday { return d.midnight().Weekday() }

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DaysBetween returns the absolute number of days separating a and b.
func DaysBetween(a, b Date) int {
	const hoursPerDay = 24
	days := int(b.midnight().Sub(a.midnight()).Hours() / hoursPerDay)
	if days < 0 {
		return -days
	}
	return days
}

// IsWeekend reports whether d falls on a Saturday or Sunday.
func IsWeekend(d Date) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Window is a closed interval of days.
type Window struct {
	From Date
	To   Date
}

// NewWindow builds a window and rejects from > to.
func NewWindow(from, to Date) (Window, error) {
	if from.After(to) {
		return Window{}, fmt.Errorf("%w: %s > %s", ErrInvertedRange, from, to)
	}
	return Window{From: from, To: to}, nil
}

// Contains reports whether d lies inside the window, both ends included.
func (w Window) Contains(d Date) bool {
	return !d.Before(w.From) && !d.After(w.To)
}

// Days is the number of days covered by the window, both ends included.
func (w Window) Days() int {
	return DaysBetween(w.From, w.To) + 1
}

// Overlaps reports whether the two closed windows share at least one day.
// A missing window never overlaps anything.
func Overlaps(a, b *Window) bool {
	if a == nil || b == nil {
		return false
	}
	return !a.From.After(b.To) && !b.From.After(a.To)
}
