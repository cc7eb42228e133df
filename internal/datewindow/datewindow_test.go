package datewindow_test

import (
	"testing"
	"time"

	"github.com/Houeta/staff-directory/internal/datewindow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(value string) func() time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    datewindow.Date
		wantErr bool
	}{
		{name: "plain", raw: "2025-01-10", want: datewindow.Date{Year: 2025, Month: time.January, Day: 10}},
		{name: "iso with time", raw: "2025-03-04T18:30:00.000Z", want: datewindow.Date{Year: 2025, Month: time.March, Day: 4}},
		{name: "space separated time", raw: "2024-12-31 23:59:59", want: datewindow.Date{Year: 2024, Month: time.December, Day: 31}},
		{name: "surrounding spaces", raw: " 2025-06-01 ", want: datewindow.Date{Year: 2025, Month: time.June, Day: 1}},
		{name: "empty", raw: "", wantErr: true},
		{name: "wrong separator", raw: "2025/01/10", wantErr: true},
		{name: "not numbers", raw: "yyyy-mm-dd", wantErr: true},
		{name: "impossible day", raw: "2025-02-30", wantErr: true},
		{name: "zero month", raw: "2025-00-10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := datewindow.ParseDate(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, datewindow.ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWindow(t *testing.T) {
	t.Parallel()

	from := datewindow.MustParseDate("2025-01-10")
	to := datewindow.MustParseDate("2025-01-12")

	win, err := datewindow.NewWindow(from, to)
	require.NoError(t, err)
	assert.Equal(t, 3, win.Days())
	assert.True(t, win.Contains(datewindow.MustParseDate("2025-01-11")))
	assert.False(t, win.Contains(datewindow.MustParseDate("2025-01-13")))

	_, err = datewindow.NewWindow(to, from)
	require.ErrorIs(t, err, datewindow.ErrInvertedRange)
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	window := func(from, to string) *datewindow.Window {
		return &datewindow.Window{From: datewindow.MustParseDate(from), To: datewindow.MustParseDate(to)}
	}

	tests := []struct {
		name string
		a, b *datewindow.Window
		want bool
	}{
		{name: "shared single day at the edge", a: window("2025-01-01", "2025-01-10"), b: window("2025-01-10", "2025-01-20"), want: true},
		{name: "contained", a: window("2025-01-01", "2025-01-31"), b: window("2025-01-10", "2025-01-11"), want: true},
		{name: "identical", a: window("2025-01-05", "2025-01-05"), b: window("2025-01-05", "2025-01-05"), want: true},
		{name: "disjoint by one day", a: window("2025-01-01", "2025-01-09"), b: window("2025-01-10", "2025-01-20"), want: false},
		{name: "disjoint far apart", a: window("2024-01-01", "2024-02-01"), b: window("2025-01-01", "2025-02-01"), want: false},
		{name: "missing left", a: nil, b: window("2025-01-01", "2025-01-02"), want: false},
		{name: "missing right", a: window("2025-01-01", "2025-01-02"), b: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, datewindow.Overlaps(tt.a, tt.b))
			assert.Equal(t, datewindow.Overlaps(tt.a, tt.b), datewindow.Overlaps(tt.b, tt.a), "overlap must be symmetric")
		})
	}
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	a := datewindow.MustParseDate("2024-02-27")
	b := datewindow.MustParseDate("2024-03-02")

	assert.Equal(t, 4, datewindow.DaysBetween(a, b))
	assert.Equal(t, 4, datewindow.DaysBetween(b, a))
	assert.Equal(t, 0, datewindow.DaysBetween(a, a))
	assert.Equal(t, 365, datewindow.DaysBetween(
		datewindow.MustParseDate("2025-01-01"), datewindow.MustParseDate("2026-01-01")))
}

func TestIsWeekend(t *testing.T) {
	t.Parallel()

	assert.True(t, datewindow.IsWeekend(datewindow.MustParseDate("2025-01-11")))  // Saturday
	assert.True(t, datewindow.IsWeekend(datewindow.MustParseDate("2025-01-12")))  // Sunday
	assert.False(t, datewindow.IsWeekend(datewindow.MustParseDate("2025-01-13"))) // Monday
	assert.False(t, datewindow.IsWeekend(datewindow.MustParseDate("2025-01-10"))) // Friday
}

func TestCalendar(t *testing.T) {
	t.Parallel()

	t.Run("midweek", func(t *testing.T) {
		t.Parallel()

		cal := datewindow.NewCalendar(fixedClock("2025-01-15 09:30")) // Wednesday

		assert.Equal(t, datewindow.MustParseDate("2025-01-15"), cal.Today())
		assert.Equal(t, datewindow.MustParseDate("2025-01-13"), cal.StartOfWeek())
		assert.Equal(t, datewindow.MustParseDate("2025-01-19"), cal.EndOfWeek())
		assert.Equal(t, datewindow.MustParseDate("2025-01-01"), cal.StartOfMonth())
		assert.Equal(t, datewindow.MustParseDate("2025-01-31"), cal.EndOfMonth())
	})

	t.Run("sunday belongs to the week that started on monday", func(t *testing.T) {
		t.Parallel()

		cal := datewindow.NewCalendar(fixedClock("2025-01-19 23:00"))

		assert.Equal(t, datewindow.MustParseDate("2025-01-13"), cal.StartOfWeek())
		assert.Equal(t, datewindow.MustParseDate("2025-01-19"), cal.EndOfWeek())
	})

	t.Run("week crossing a month boundary", func(t *testing.T) {
		t.Parallel()

		cal := datewindow.NewCalendar(fixedClock("2025-03-01 12:00")) // Saturday

		win := cal.WeekWindow()
		assert.Equal(t, datewindow.MustParseDate("2025-02-24"), win.From)
		assert.Equal(t, datewindow.MustParseDate("2025-03-02"), win.To)
	})

	t.Run("leap february", func(t *testing.T) {
		t.Parallel()

		cal := datewindow.NewCalendar(fixedClock("2024-02-10 08:00"))

		win := cal.MonthWindow()
		assert.Equal(t, datewindow.MustParseDate("2024-02-01"), win.From)
		assert.Equal(t, datewindow.MustParseDate("2024-02-29"), win.To)
	})

	t.Run("today window", func(t *testing.T) {
		t.Parallel()

		cal := datewindow.NewCalendar(fixedClock("2025-01-11 00:00"))

		win := cal.TodayWindow()
		assert.Equal(t, win.From, win.To)
		assert.Equal(t, 1, win.Days())
	})
}
