// Package availability decides which employees are visible for a requested time range.
package availability

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Houeta/staff-directory/internal/datewindow"
	"github.com/Houeta/staff-directory/internal/models"
)

// ErrUnknownRange is returned by ParseRange for labels it does not recognize.
var ErrUnknownRange = errors.New("unknown range")

// Range is the time scope a directory query is restricted to.
type Range int

const (
	Any Range = iota
	Today
	ThisWeek
	ThisMonth
)

func (r Range) String() string {
	switch r {
	case Any:
		return "any"
	case Today:
		return "today"
	case ThisWeek:
		return "week"
	case ThisMonth:
		return "month"
	default:
		return fmt.Sprintf("range(%d)", int(r))
	}
}

// ParseRange accepts the labels used on the command line: any/all, today, week, month.
func ParseRange(label string) (Range, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "any", "all":
		return Any, nil
	case "today":
		return Today, nil
	case "week", "this-week", "thisweek":
		return ThisWeek, nil
	case "month", "this-month", "thismonth":
		return ThisMonth, nil
	default:
		return Any, fmt.Errorf("%w: %q", ErrUnknownRange, label)
	}
}

// Matcher tests employees against ranges computed from its calendar.
type Matcher struct {
	cal *datewindow.Calendar
}

// NewMatcher returns a Matcher. A nil calendar reads the system clock.
func NewMatcher(cal *datewindow.Calendar) *Matcher {
	if cal == nil {
		cal = datewindow.NewCalendar(nil)
	}
	return &Matcher{cal: cal}
}

// Window returns the query window for r, or nil for Any.
func (m *Matcher) Window(r Range) *datewindow.Window {
	var w datewindow.Window
	switch r {
	case Today:
		w = m.cal.TodayWindow()
	case ThisWeek:
		w = m.cal.WeekWindow()
	case ThisMonth:
		w = m.cal.MonthWindow()
	default:
		return nil
	}
	return &w
}

// Matches reports whether emp is visible for r.
//
// Occupied employees never match a bounded range. Available employees without a declared
// window match every range. Partially available employees need both ends of their window.
func (m *Matcher) Matches(emp models.Employee, r Range) bool {
	if r == Any {
		return true
	}

	query := m.Window(r)
	if query == nil {
		return false
	}

	switch emp.Status {
	case models.StatusAvailable:
		if emp.From == nil || emp.To == nil {
			return true
		}
		return datewindow.Overlaps(emp.Window(), query)
	case models.StatusPartiallyAvailable:
		return datewindow.Overlaps(emp.Window(), query)
	case models.StatusOccupied, models.StatusUnknown:
		return false
	default:
		return false
	}
}
