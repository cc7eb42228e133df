package mutator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Houeta/staff-directory/internal/datewindow"
	"github.com/Houeta/staff-directory/internal/models"
)

// Validate checks a payload before anything is sent. It returns *ValidationError or nil.
//
// The identity must be present. When the payload declares partial availability the hours
// must be a positive number and the window must be complete, ordered, start and end on
// weekdays and span at most datewindow.MaxSpanDays.
func Validate(id string, payload models.Record) error {
	verr := &ValidationError{}

	if strings.TrimSpace(id) == "" {
		verr.add(models.KeyEmpID, "employee id is required")
	}

	if models.ParseStatus(payload.String(models.KeyAvailability)) == models.StatusPartiallyAvailable {
		validateHours(verr, payload.String(models.KeyHours, models.KeyHoursCC))
		validateWindow(verr,
			payload.String(models.KeyFromDate, models.KeyFromDateCC),
			payload.String(models.KeyToDate, models.KeyToDateCC),
		)
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func validateHours(verr *ValidationError, raw string) {
	if raw == "" {
		verr.add(models.KeyHours, "hours available is required for partial availability")
		return
	}

	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(hours) || math.IsInf(hours, 0) {
		verr.add(models.KeyHours, fmt.Sprintf("hours available must be a number, got %q", raw))
		return
	}
	if hours <= 0 {
		verr.add(models.KeyHours, "hours available must be a positive number")
	}
}

func validateWindow(verr *ValidationError, rawFrom, rawTo string) {
	from, fromOK := requireDate(verr, models.KeyFromDate, "from date", rawFrom)
	to, toOK := requireDate(verr, models.KeyToDate, "to date", rawTo)
	if !fromOK || !toOK {
		return
	}

	if from.After(to) {
		verr.add(models.KeyToDate, "to date must not be before from date")
		return
	}
	if datewindow.DaysBetween(from, to) > datewindow.MaxSpanDays {
		verr.add(models.KeyToDate, fmt.Sprintf("availability window must not exceed %d days", datewindow.MaxSpanDays))
	}
}

func requireDate(verr *ValidationError, key, label, raw string) (datewindow.Date, bool) {
	if raw == "" {
		verr.add(key, label+" is required for partial availability")
		return datewindow.Date{}, false
	}

	date, err := datewindow.ParseDate(raw)
	if err != nil {
		verr.add(key, fmt.Sprintf("%s %q is not a valid date", label, raw))
		return datewindow.Date{}, false
	}
	if datewindow.IsWeekend(date) {
		verr.add(key, fmt.Sprintf("%s %s falls on a weekend", label, date))
		return date, false
	}

	return date, true
}
