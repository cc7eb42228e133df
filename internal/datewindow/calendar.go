package datewindow

import "time"

// Calendar derives "today", "this week" and "this month" from a clock.
type Calendar struct {
	now func() time.Time
}

// NewCalendar returns a calendar reading the supplied clock. A nil clock means time.Now.
func NewCalendar(now func() time.Time) *Calendar {
	if now == nil {
		now = time.Now
	}
	return &Calendar{now: now}
}

// Today is the current local calendar day.
func (c *Calendar) Today() Date {
	return FromTime(c.now())
}

// StartOfWeek is the Monday of the current week.
func (c *Calendar) StartOfWeek() Date {
	const daysInWeek = 7
	today := c.Today()
	sinceMonday := (int(today.Weekday()) + daysInWeek - 1) % daysInWeek
	return today.AddDays(-sinceMonday)
}

// EndOfWeek is the Sunday of the current week.
func (c *Calendar) EndOfWeek() Date {
	const mondayToSunday = 6
	return c.StartOfWeek().AddDays(mondayToSunday)
}

func (c *Calendar) StartOfMonth() Date {
	today := c.Today()
	return Date{Year: today.Year, Month: today.Month, Day: 1}
}

func (c *Calendar) EndOfMonth() Date {
	return FromTime(c.StartOfMonth().midnight().AddDate(0, 1, -1))
}

// TodayWindow is the single day window for today.
func (c *Calendar) TodayWindow() Window {
	today := c.Today()
	return Window{From: today, To: today}
}

// WeekWindow spans Monday through Sunday of the current week.
func (c *Calendar) WeekWindow() Window {
	return Window{From: c.StartOfWeek(), To: c.EndOfWeek()}
}

// MonthWindow spans the first through the last day of the current month.
func (c *Calendar) MonthWindow() Window {
	return Window{From: c.StartOfMonth(), To: c.EndOfMonth()}
}
